package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrStopped is returned for commands that were never processed because Run exited.
var ErrStopped = errors.New("engine stopped")

// Execution is the result of a successfully placed order.
type Execution struct {
	Order domain.Order
	Trade domain.Trade
}

type command struct {
	name string
	exec func() error
	done chan error
}

// Engine is the single-threaded order processor.
// Only the Run goroutine touches the ledger and the repository, so every
// validate, holdings check and mutate sequence is serialized.
type Engine struct {
	inbox   chan command
	stopped chan struct{}

	catalog *domain.Catalog
	ledger  *domain.Ledger
	repo    domain.ExecutionRepository

	publisher domain.TradePublisher
	metrics   *infra.Metrics
	newID     func() string
	clock     func() time.Time
	dumpFile  string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPublisher sets the sink notified of every recorded trade.
func WithPublisher(p domain.TradePublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics sets the metrics instance.
func WithMetrics(m *infra.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator overrides the order and trade id source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithDumpFile sets where state is written after a recovered panic.
// An empty name disables the dump.
func WithDumpFile(name string) Option {
	return func(e *Engine) { e.dumpFile = name }
}

// New creates an engine. Run must be started before any command is submitted.
func New(inboxSize int, catalog *domain.Catalog, repo domain.ExecutionRepository, opts ...Option) *Engine {
	e := &Engine{
		inbox:    make(chan command, inboxSize),
		stopped:  make(chan struct{}),
		catalog:  catalog,
		ledger:   domain.NewLedger(),
		repo:     repo,
		metrics:  infra.NewMetrics(),
		newID:    uuid.NewString,
		clock:    func() time.Time { return time.Now().UTC() },
		dumpFile: "panic_dump.json",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts the main command loop. This MUST be run in a single goroutine.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Engine started (Single-Thread Hotpath)")
	defer close(e.stopped)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopping...")
			return
		case cmd := <-e.inbox:
			e.handle(cmd)
		}
	}
}

func (e *Engine) handle(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.String("command", cmd.name), slog.Any("panic", r))
			e.metrics.RecordError()
			e.DumpState(e.dumpFile)
			cmd.done <- fmt.Errorf("%w: %s panicked", domain.ErrInternal, cmd.name)
		}
	}()

	cmd.done <- cmd.exec()
}

// submit hands fn to the Run goroutine and waits for its result.
func (e *Engine) submit(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := command{name: name, exec: fn, done: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	case e.inbox <- cmd:
	}

	// Once accepted the command runs to completion.
	select {
	case err := <-cmd.done:
		return err
	case <-e.stopped:
		select {
		case err := <-cmd.done:
			return err
		default:
			return ErrStopped
		}
	}
}

// PlaceOrder validates, executes and records an order.
// A rejected order returns a *domain.ValidationError and changes nothing.
func (e *Engine) PlaceOrder(ctx context.Context, req domain.OrderRequest) (Execution, error) {
	var exec Execution
	err := e.submit(ctx, "place_order", func() error {
		var err error
		exec, err = e.placeOrder(ctx, req)
		return err
	})
	return exec, err
}

func (e *Engine) placeOrder(ctx context.Context, req domain.OrderRequest) (Execution, error) {
	start := time.Now()

	// 1. Validation against the current holdings
	ticket, errs := domain.ValidateOrder(req, e.catalog, e.ledger)
	if len(errs) > 0 {
		e.metrics.RecordRejection()
		return Execution{}, domain.NewValidationError(errs)
	}

	// 2. Lifecycle NEW -> PLACED -> EXECUTED
	now := e.clock()
	order := domain.NewOrder(e.newID(), ticket, now)
	if err := order.Place(); err != nil {
		return Execution{}, err
	}
	price, err := e.executionPrice(order)
	if err != nil {
		return Execution{}, err
	}
	if err := order.Execute(price, now); err != nil {
		return Execution{}, err
	}
	trade, err := domain.NewTrade(e.newID(), order)
	if err != nil {
		return Execution{}, err
	}

	// 3. Ledger change is computed first and committed only after the store accepts
	next, closed, err := e.ledger.Preview(order.Symbol, order.Side, order.Quantity, price)
	if err != nil {
		return Execution{}, fmt.Errorf("apply %s to ledger: %w", order.ID, err)
	}
	// The caller may go away once the command is accepted; the write must not.
	if err := e.repo.SaveExecution(context.WithoutCancel(ctx), order, trade); err != nil {
		e.metrics.RecordError()
		return Execution{}, fmt.Errorf("record execution %s: %w", order.ID, err)
	}
	e.ledger.Commit(next, closed)

	e.metrics.RecordOrder(time.Since(start))
	e.metrics.RecordTrade()
	slog.Info("ORDER_EXECUTED",
		slog.String("order_id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", order.Side.String()),
		slog.String("style", order.Style.String()),
		slog.Int64("quantity", order.Quantity),
		slog.String("price", price.String()),
	)

	if e.publisher != nil {
		e.publisher.PublishTrade(*trade)
	}

	return Execution{Order: *order, Trade: *trade}, nil
}

// executionPrice is the reference price for MARKET and the submitted price for LIMIT.
func (e *Engine) executionPrice(o *domain.Order) (decimal.Decimal, error) {
	switch o.Style {
	case domain.StyleMarket:
		inst, ok := e.catalog.Lookup(o.Symbol)
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %s", domain.ErrInvalidSymbol, o.Symbol)
		}
		return inst.LastTradedPrice, nil
	case domain.StyleLimit:
		if !o.LimitPrice.Valid {
			return decimal.Decimal{}, fmt.Errorf("order %s: LIMIT without price", o.ID)
		}
		return o.LimitPrice.Decimal, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("order %s: unsupported style %v", o.ID, o.Style)
	}
}

// GetOrder returns the order with id or domain.ErrOrderNotFound.
func (e *Engine) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := e.submit(ctx, "get_order", func() error {
		o, err := e.repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		order = o
		return nil
	})
	return order, err
}

// Orders returns every order in placement order.
func (e *Engine) Orders(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := e.submit(ctx, "list_orders", func() error {
		var err error
		orders, err = e.repo.ListOrders(ctx)
		return err
	})
	return orders, err
}

// Trades returns every trade in execution order.
func (e *Engine) Trades(ctx context.Context) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	err := e.submit(ctx, "list_trades", func() error {
		var err error
		trades, err = e.repo.ListTrades(ctx)
		return err
	})
	return trades, err
}

// Positions returns a snapshot of the open positions sorted by symbol.
func (e *Engine) Positions(ctx context.Context) ([]domain.Position, error) {
	var positions []domain.Position
	err := e.submit(ctx, "positions", func() error {
		positions = e.ledger.Snapshot()
		return nil
	})
	return positions, err
}

// Instruments returns the tradable instruments. The catalog is immutable.
func (e *Engine) Instruments() []domain.Instrument {
	return e.catalog.All()
}

// DumpState writes the ledger to a file (for post-mortem).
// Only call from the Run goroutine.
func (e *Engine) DumpState(filename string) {
	if filename == "" {
		return
	}
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		DumpedAt  time.Time         `json:"dumped_at"`
		Positions []domain.Position `json:"positions"`
	}{
		DumpedAt:  e.clock(),
		Positions: e.ledger.Snapshot(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
