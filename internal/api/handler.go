package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/engine"
	"trading_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderService is the part of the engine the HTTP layer calls.
type OrderService interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (engine.Execution, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	Orders(ctx context.Context) ([]*domain.Order, error)
	Trades(ctx context.Context) ([]*domain.Trade, error)
	Instruments() []domain.Instrument
}

// PortfolioReporter values the current positions.
type PortfolioReporter interface {
	Report(ctx context.Context) (service.Report, error)
}

// Handler serves the trading API.
type Handler struct {
	orders    OrderService
	portfolio PortfolioReporter
	stream    http.HandlerFunc // nil disables /trades/stream
	store     Pinger           // nil skips the storage check in /health
	service   string
	now       func() time.Time
}

// NewHandler creates the API handler. stream may be nil.
func NewHandler(orders OrderService, portfolio PortfolioReporter, stream http.HandlerFunc, serviceName string) *Handler {
	return &Handler{
		orders:    orders,
		portfolio: portfolio,
		stream:    stream,
		service:   serviceName,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WithHealthCheck makes /health fail while p cannot be reached.
func (h *Handler) WithHealthCheck(p Pinger) *Handler {
	h.store = p
	return h
}

// NewRouter builds the gin engine with middleware, API routes and /metrics.
// A nil gatherer disables /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	r.Use(Recovery())

	h.RegisterRoutes(r)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})
	return r
}

// RegisterRoutes mounts the /api/v1 routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api/v1")
	{
		api.GET("/instruments", h.ListInstruments)
		api.POST("/orders", h.PlaceOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:orderId", h.GetOrder)
		api.GET("/trades", h.ListTrades)
		api.GET("/portfolio", h.GetPortfolio)
		api.GET("/health", h.Health)
		if h.stream != nil {
			api.GET("/trades/stream", gin.WrapF(h.stream))
		}
	}
}

// ListInstruments returns the tradable instruments.
func (h *Handler) ListInstruments(c *gin.Context) {
	instruments := h.orders.Instruments()
	data := make([]InstrumentDTO, 0, len(instruments))
	for _, i := range instruments {
		data = append(data, newInstrumentDTO(i))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
}

// PlaceOrder validates and executes an order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"errors":  []string{"Invalid JSON payload: " + err.Error()},
		})
		return
	}

	exec, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed and executed successfully",
		"data": gin.H{
			"order": newOrderDTO(&exec.Order),
			"trade": newTradeDTO(&exec.Trade),
		},
	})
}

// ListOrders returns every order.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.Orders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		data = append(data, newOrderDTO(o))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
}

// GetOrder returns one order by id.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": newOrderDTO(order)})
}

// ListTrades returns every trade.
func (h *Handler) ListTrades(c *gin.Context) {
	trades, err := h.orders.Trades(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := make([]TradeDTO, 0, len(trades))
	for _, t := range trades {
		data = append(data, newTradeDTO(t))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
}

// GetPortfolio returns the valued holdings and their summary.
func (h *Handler) GetPortfolio(c *gin.Context) {
	report, err := h.portfolio.Report(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := newPortfolioDTO(report)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data.Holdings)})
}

// Health reports liveness and storage reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			slog.Error("Health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   h.service,
				"timestamp": h.now().Format(time.RFC3339Nano),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.service,
		"timestamp": h.now().Format(time.RFC3339Nano),
	})
}

// fail maps core errors to status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": verr.Errors})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
	default:
		slog.Error("Request failed",
			slog.String("request_id", c.GetString(RequestIDKey)),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
