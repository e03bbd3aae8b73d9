package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors on a private registry so tests can build
// as many instances as they like.
type Metrics struct {
	Registry       *prometheus.Registry
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	Settlements    *prometheus.CounterVec
	CreditsSettled prometheus.Counter
	TradeRequests  prometheus.Counter
	AdsCreated     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of response latency (seconds) for HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_settlements_total",
			Help: "Settlement attempts by outcome",
		}, []string{"outcome"}),
		CreditsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trade_credits_settled_total",
			Help: "Credits moved between companies by settlements",
		}),
		TradeRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trade_requests_submitted_total",
			Help: "Fulfilment requests accepted into the queue",
		}),
		AdsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_ads_created_total",
			Help: "Trade advertisements posted by type",
		}, []string{"type"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration, m.Settlements, m.CreditsSettled, m.TradeRequests, m.AdsCreated,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// SettlementOutcome records one settlement attempt. A nil receiver is a no-op.
func (m *Metrics) SettlementOutcome(outcome string, credits int64) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(outcome).Inc()
	if credits > 0 {
		m.CreditsSettled.Add(float64(credits))
	}
}

// RequestSubmitted counts a queued fulfilment request. A nil receiver is a no-op.
func (m *Metrics) RequestSubmitted() {
	if m == nil {
		return
	}
	m.TradeRequests.Inc()
}

// AdCreated counts a new advertisement. A nil receiver is a no-op.
func (m *Metrics) AdCreated(tradeType string) {
	if m == nil {
		return
	}
	m.AdsCreated.WithLabelValues(tradeType).Inc()
}
