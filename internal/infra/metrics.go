package infra

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine and API counters.
// Uses atomic operations for thread-safety and implements prometheus.Collector
// so the same values are served on /metrics.
type Metrics struct {
	// Counters
	ordersPlaced   atomic.Uint64
	ordersRejected atomic.Uint64
	tradesExecuted atomic.Uint64
	errorsTotal    atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeStreams atomic.Int32
}

// NewMetrics returns a zeroed metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordOrder records an accepted order with its processing latency.
func (m *Metrics) RecordOrder(latency time.Duration) {
	m.ordersPlaced.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordRejection records an order that failed validation.
func (m *Metrics) RecordRejection() {
	m.ordersRejected.Add(1)
}

// RecordTrade records an executed trade.
func (m *Metrics) RecordTrade() {
	m.tradesExecuted.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementStreams increments active trade stream subscribers by 1.
func (m *Metrics) IncrementStreams() {
	m.activeStreams.Add(1)
}

// DecrementStreams decrements active trade stream subscribers by 1.
func (m *Metrics) DecrementStreams() {
	m.activeStreams.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersPlaced   uint64
	OrdersRejected uint64
	TradesExecuted uint64
	ErrorsTotal    uint64
	AvgLatencyNs   int64
	ActiveStreams  int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersPlaced:   m.ordersPlaced.Load(),
		OrdersRejected: m.ordersRejected.Load(),
		TradesExecuted: m.tradesExecuted.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		AvgLatencyNs:   avgLatency,
		ActiveStreams:  m.activeStreams.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersPlaced.Store(0)
	m.ordersRejected.Store(0)
	m.tradesExecuted.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeStreams.Store(0)
}

var (
	descOrdersPlaced = prometheus.NewDesc(
		"trading_orders_placed_total", "Orders accepted and executed.", nil, nil)
	descOrdersRejected = prometheus.NewDesc(
		"trading_orders_rejected_total", "Orders rejected by validation.", nil, nil)
	descTradesExecuted = prometheus.NewDesc(
		"trading_trades_executed_total", "Trades recorded.", nil, nil)
	descErrors = prometheus.NewDesc(
		"trading_errors_total", "Internal errors.", nil, nil)
	descAvgLatency = prometheus.NewDesc(
		"trading_order_latency_avg_seconds", "Average order processing latency.", nil, nil)
	descStreams = prometheus.NewDesc(
		"trading_trade_streams_active", "Connected trade stream subscribers.", nil, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descOrdersPlaced
	ch <- descOrdersRejected
	ch <- descTradesExecuted
	ch <- descErrors
	ch <- descAvgLatency
	ch <- descStreams
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	s := m.Snapshot()
	ch <- prometheus.MustNewConstMetric(descOrdersPlaced, prometheus.CounterValue, float64(s.OrdersPlaced))
	ch <- prometheus.MustNewConstMetric(descOrdersRejected, prometheus.CounterValue, float64(s.OrdersRejected))
	ch <- prometheus.MustNewConstMetric(descTradesExecuted, prometheus.CounterValue, float64(s.TradesExecuted))
	ch <- prometheus.MustNewConstMetric(descErrors, prometheus.CounterValue, float64(s.ErrorsTotal))
	ch <- prometheus.MustNewConstMetric(descAvgLatency, prometheus.GaugeValue, time.Duration(s.AvgLatencyNs).Seconds())
	ch <- prometheus.MustNewConstMetric(descStreams, prometheus.GaugeValue, float64(s.ActiveStreams))
}
