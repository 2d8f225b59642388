package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trading_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN keeps the database in process memory.
const MemoryDSN = ":memory:"

// Storage records orders and trades in SQLite.
type Storage struct {
	db *gorm.DB
}

var _ domain.ExecutionRepository = (*Storage)(nil)

// NewStorage opens a SQLite storage instance.
// An empty dsn selects an in-memory database.
func NewStorage(dsn string) (*Storage, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	if !isMemory(dsn) {
		// Ensure directory exists
		dbDir := filepath.Dir(filePart(dsn))
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps an in-memory database alive and
	// serializes writers on file databases.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto Migration
	if err := db.AutoMigrate(&OrderRecord{}, &TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

func isMemory(dsn string) bool {
	return dsn == MemoryDSN || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

func filePart(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return dsn
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ======================================================================================
// Execution Operations
// ======================================================================================

// SaveExecution records an executed order and its trade in one transaction.
func (s *Storage) SaveExecution(ctx context.Context, order *domain.Order, trade *domain.Trade) error {
	if trade.OrderID != order.ID {
		return fmt.Errorf("trade %s references order %s, not %s", trade.ID, trade.OrderID, order.ID)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toOrderRecord(order)).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := tx.Create(toTradeRecord(trade)).Error; err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		return nil
	})
}

// GetOrder retrieves an order by id
func (s *Storage) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var rec OrderRecord
	err := s.db.WithContext(ctx).First(&rec, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return toOrder(&rec)
}

// ListOrders retrieves all orders in insertion order
func (s *Storage) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	var recs []OrderRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		o, err := toOrder(&recs[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListTrades retrieves all trades in insertion order
func (s *Storage) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	var recs []TradeRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}

	trades := make([]*domain.Trade, 0, len(recs))
	for i := range recs {
		t, err := toTrade(&recs[i])
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}
