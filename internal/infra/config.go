package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"trading_go/internal/domain"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the bootstrap looks for the configuration file.
const DefaultConfigPath = "configs/config.yaml"

// Config holds every application setting.
// After LoadConfig reads the YAML file, .env and environment variables
// override the deployment-specific values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
		WriteTimeoutSec int    `yaml:"write_timeout_sec"`
		Mode            string `yaml:"mode"`       // gin mode: debug, release, test
		PprofAddr       string `yaml:"pprof_addr"` // empty disables profiling
	} `yaml:"server"`

	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`

	Engine struct {
		InboxSize int    `yaml:"inbox_size"`
		DumpFile  string `yaml:"dump_file"`
	} `yaml:"engine"`

	Portfolio struct {
		Currency string `yaml:"currency"`
	} `yaml:"portfolio"`

	Logging struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"` // empty disables the log file
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`

	Instruments []domain.Instrument `yaml:"instruments"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "Trading System API"
	cfg.App.Version = "1.0.0"

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 5000
	cfg.Server.ReadTimeoutSec = 10
	cfg.Server.WriteTimeoutSec = 10
	cfg.Server.Mode = "release"

	cfg.Storage.DSN = ":memory:"

	cfg.Engine.InboxSize = 1024
	cfg.Engine.DumpFile = "panic_dump.json"

	cfg.Portfolio.Currency = money.USD

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	cfg.Logging.File = "app.log"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 28
	cfg.Logging.Compress = true

	cfg.Instruments = domain.DefaultInstruments()
	return &cfg
}

// LoadConfig reads and parses the configuration file.
// A missing file is not an error: the defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if len(cfg.Instruments) == 0 {
		cfg.Instruments = domain.DefaultInstruments()
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Err: fmt.Errorf("out of range: %d", c.Server.Port)}
	}
	if c.Server.ReadTimeoutSec <= 0 || c.Server.WriteTimeoutSec <= 0 {
		return &ConfigError{Field: "server.timeouts", Err: errors.New("must be positive")}
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return &ConfigError{Field: "server.mode", Err: fmt.Errorf("unknown mode %q", c.Server.Mode)}
	}

	if c.Engine.InboxSize <= 0 {
		return &ConfigError{Field: "engine.inbox_size", Err: errors.New("must be positive")}
	}

	if money.GetCurrency(c.Portfolio.Currency) == nil {
		return &ConfigError{Field: "portfolio.currency", Err: fmt.Errorf("unknown currency %q", c.Portfolio.Currency)}
	}

	if _, err := domain.NewCatalog(c.Instruments); err != nil {
		return &ConfigError{Field: "instruments", Err: err}
	}

	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// overrideWithEnv replaces values with environment variables when present.
func overrideWithEnv(cfg *Config) error {
	if port := os.Getenv("TRADING_SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return &ConfigError{Field: "TRADING_SERVER_PORT", Err: err}
		}
		cfg.Server.Port = p
	}
	if level := os.Getenv("TRADING_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if dsn := os.Getenv("TRADING_STORAGE_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if mode := os.Getenv("TRADING_GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
