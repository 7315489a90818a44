package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	Namespace        string    // Prometheus namespace (default: hudu_mcp)
	HistogramBuckets []float64 // Latency buckets in milliseconds

	// Labels to add to all metrics
	ConstLabels prometheus.Labels
}

// MetricsProvider records server and gateway metrics
type MetricsProvider interface {
	// RecordRequest records one dispatched JSON-RPC message
	RecordRequest(ctx context.Context, method, status string, duration time.Duration)
	RecordBatch(ctx context.Context, size int, duration time.Duration)
	RecordToolCall(ctx context.Context, tool, status string, duration time.Duration)
	RecordGatewayRequest(ctx context.Context, collection, method, status string, duration time.Duration)
	RecordSSEConnection(delta int)

	// Handler exposes the metrics in Prometheus text format
	Handler() http.Handler
}

// PrometheusMetricsProvider implements MetricsProvider on a private registry
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	batchSize       prometheus.Histogram
	batchDuration   prometheus.Histogram

	toolCallDuration *prometheus.HistogramVec
	toolCallTotal    *prometheus.CounterVec

	gatewayDuration *prometheus.HistogramVec

	sseConnections prometheus.Gauge
}

// NewMetricsProvider creates a Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	if config.Namespace == "" {
		config.Namespace = "hudu_mcp"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}
	}

	constLabels := prometheus.Labels{}
	for k, v := range config.ConstLabels {
		constLabels[k] = v
	}
	if config.ServiceName != "" {
		constLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		constLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		constLabels["environment"] = config.Environment
	}
	config.ConstLabels = constLabels

	p := &PrometheusMetricsProvider{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	p.initializeMetrics()

	if err := p.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return p, nil
}

func (p *PrometheusMetricsProvider) initializeMetrics() {
	p.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Name:        "request_duration_milliseconds",
			Help:        "Duration of dispatched JSON-RPC messages in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"method", "status"},
	)

	p.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Name:        "request_total",
			Help:        "Total number of dispatched JSON-RPC messages",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"method", "status"},
	)

	p.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Name:        "batch_request_size",
			Help:        "Number of messages in batch requests",
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100},
			ConstLabels: p.config.ConstLabels,
		},
	)

	p.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Name:        "batch_request_duration_milliseconds",
			Help:        "Duration of batch requests in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
	)

	p.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Name:        "tool_call_duration_milliseconds",
			Help:        "Duration of tool calls in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.toolCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Name:        "tool_call_total",
			Help:        "Total number of tool calls",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "hudu",
			Subsystem:   "gateway",
			Name:        "request_duration_milliseconds",
			Help:        "Duration of Hudu API requests in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"collection", "method", "status"},
	)

	p.sseConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Name:        "sse_active_connections",
			Help:        "Number of open SSE keep-alive streams",
			ConstLabels: p.config.ConstLabels,
		},
	)
}

func (p *PrometheusMetricsProvider) registerMetrics() error {
	collectors := []prometheus.Collector{
		p.requestDuration,
		p.requestTotal,
		p.batchSize,
		p.batchDuration,
		p.toolCallDuration,
		p.toolCallTotal,
		p.gatewayDuration,
		p.sseConnections,
	}

	for _, collector := range collectors {
		if err := p.registry.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordRequest records a dispatched message
func (p *PrometheusMetricsProvider) RecordRequest(ctx context.Context, method, status string, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, status).Observe(milliseconds(duration))
	p.requestTotal.WithLabelValues(method, status).Inc()
}

// RecordBatch records a batch request
func (p *PrometheusMetricsProvider) RecordBatch(ctx context.Context, size int, duration time.Duration) {
	p.batchSize.Observe(float64(size))
	p.batchDuration.Observe(milliseconds(duration))
}

// RecordToolCall records a tools/call execution
func (p *PrometheusMetricsProvider) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	p.toolCallDuration.WithLabelValues(tool, status).Observe(milliseconds(duration))
	p.toolCallTotal.WithLabelValues(tool, status).Inc()
}

// RecordGatewayRequest records one outbound Hudu API request
func (p *PrometheusMetricsProvider) RecordGatewayRequest(ctx context.Context, collection, method, status string, duration time.Duration) {
	p.gatewayDuration.WithLabelValues(collection, method, status).Observe(milliseconds(duration))
}

// RecordSSEConnection adjusts the open SSE stream gauge
func (p *PrometheusMetricsProvider) RecordSSEConnection(delta int) {
	p.sseConnections.Add(float64(delta))
}

// Handler implements MetricsProvider
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry
func (p *PrometheusMetricsProvider) Registry() *prometheus.Registry {
	return p.registry
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) RecordRequest(context.Context, string, string, time.Duration) {}
func (NopMetrics) RecordBatch(context.Context, int, time.Duration) {}
func (NopMetrics) RecordToolCall(context.Context, string, string, time.Duration) {}
func (NopMetrics) RecordGatewayRequest(context.Context, string, string, string, time.Duration) {}
func (NopMetrics) RecordSSEConnection(int) {}

// Handler serves 404 since nothing is collected
func (NopMetrics) Handler() http.Handler { return http.NotFoundHandler() }
