package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"trading_go/internal/api"
	"trading_go/internal/domain"
	"trading_go/internal/engine"
	"trading_go/internal/infra"
	"trading_go/internal/infra/feed"
	"trading_go/internal/infra/storage"
	"trading_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Metrics   *infra.Metrics
	Registry  *prometheus.Registry
	Hub       *feed.Hub
	Engine    *engine.Engine
	Portfolio *service.PortfolioService
	Router    *gin.Engine
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the configuration and wires every component.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping "+cfg.App.Name+"...", slog.String("version", cfg.App.Version))

	// 3. Instrument catalog
	catalog, err := domain.NewCatalog(cfg.Instruments)
	if err != nil {
		return err
	}
	slog.Info("✅ Instrument catalog loaded", slog.Int("instruments", catalog.Len()))

	// 4. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("dsn", cfg.Storage.DSN))

	// 5. Metrics and trade feed
	b.Metrics = infra.NewMetrics()
	b.Registry = prometheus.NewRegistry()
	b.Registry.MustRegister(
		b.Metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	b.Hub = feed.NewHub(api.EncodeTrade, b.Metrics)

	// 6. Engine and reporting
	b.Engine = engine.New(cfg.Engine.InboxSize, catalog, store,
		engine.WithMetrics(b.Metrics),
		engine.WithPublisher(b.Hub),
		engine.WithDumpFile(cfg.Engine.DumpFile),
	)
	b.Portfolio, err = service.NewPortfolioService(b.Engine, catalog, cfg.Portfolio.Currency)
	if err != nil {
		return err
	}

	// 7. HTTP
	gin.SetMode(cfg.Server.Mode)
	handler := api.NewHandler(b.Engine, b.Portfolio, b.Hub.ServeWS, cfg.App.Name).WithHealthCheck(b.Storage)
	b.Router = api.NewRouter(handler, b.Registry)
	slog.Info("✅ HTTP routes registered")

	return nil
}

// Run starts the engine and the HTTP server and blocks until ctx is done
// or the server fails. The server is shut down gracefully.
func (b *Bootstrap) Run(ctx context.Context) error {
	if b.Engine == nil {
		return errors.New("bootstrap not initialized")
	}

	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()

	// Start Engine in its own goroutine (The Hotpath Loop)
	go b.Engine.Run(engineCtx)

	srv := &http.Server{
		Addr:         b.Config.Address(),
		Handler:      b.Router,
		ReadTimeout:  time.Duration(b.Config.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(b.Config.Server.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("🌐 HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("✨ Trading system fully operational. Press Ctrl+C to exit.")

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	b.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	// Requests have drained; the engine can stop now.
	stopEngine()
	return nil
}

// Close releases the storage.
func (b *Bootstrap) Close() error {
	if b.Storage == nil {
		return nil
	}
	return b.Storage.Close()
}
