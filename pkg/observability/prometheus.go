package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface with Prometheus metrics
// registered on a caller-supplied registry.
type PrometheusHooks struct {
	layoutTotal    *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram

	renderTotal    *prometheus.CounterVec
	renderDuration prometheus.Histogram

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheusHooks registers the lineage metrics on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		layoutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_layout_total",
			Help: "Total layouts built by result",
		}, []string{"result"}),
		layoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_layout_duration_seconds",
			Help:    "Layout build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		layoutNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_layout_nodes",
			Help:    "Number of node instances per layout",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
		}),
		renderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_render_total",
			Help: "Total render runs by result",
		}, []string{"result"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_render_duration_seconds",
			Help:    "Render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "lineage_http_requests_in_flight",
			Help: "Requests currently being served",
		}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_http_requests_total",
			Help: "Served requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineage_http_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	h.layoutTotal.WithLabelValues(result(err)).Inc()
	h.layoutDuration.Observe(d.Seconds())
	if err == nil {
		h.layoutNodes.Observe(float64(nodeCount))
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.renderTotal.WithLabelValues(result(err)).Inc()
	h.renderDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.httpInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpInFlight.Dec()
	h.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
