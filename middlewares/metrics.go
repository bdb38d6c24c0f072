package middlewares

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	OrdersTotal         *prometheus.CounterVec
	OrderValue          *prometheus.CounterVec
	LiveFeeds           *prometheus.GaugeVec
}

// NewMetrics creates the collectors on their own registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders placed, by status",
		}, []string{"status"}),
		OrderValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_value_total",
			Help:      "Sum of order totals, by status",
		}, []string{"status"}),
		LiveFeeds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_feeds",
			Help:      "Open websocket feeds",
		}, []string{"feed"}),
	}
	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.OrdersTotal, m.OrderValue, m.LiveFeeds)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Instrument records every request under its route pattern so that ids in
// the path do not explode label cardinality.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(ctx.Request.Method, path, ctx.Writer.Status(), time.Since(start))
	}
}

// OrderPlaced counts a stored order.
func (m *Metrics) OrderPlaced(_ context.Context, o models.Order) {
	m.OrdersTotal.WithLabelValues(string(o.Status)).Inc()
	m.OrderValue.WithLabelValues(string(o.Status)).Add(o.Total)
}

func (m *Metrics) FeedOpened(feed string) { m.LiveFeeds.WithLabelValues(feed).Inc() }

func (m *Metrics) FeedClosed(feed string) { m.LiveFeeds.WithLabelValues(feed).Dec() }
