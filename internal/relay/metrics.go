package relay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records relay instruments and serves them in Prometheus format.
// A nil *Metrics records nothing.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	cacheHits metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("parrot/relay")

	requests, err := meter.Int64Counter("relay_translate_requests",
		metric.WithDescription("Translation requests by outcome."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("relay_provider_duration",
		metric.WithDescription("Time spent waiting for the translation provider."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64Counter("relay_cache_lookups",
		metric.WithDescription("Translation cache lookups by result."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider:  provider,
		handler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requests:  requests,
		duration:  duration,
		cacheHits: cacheHits,
	}, nil
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

func (m *Metrics) request(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) providerDuration(ctx context.Context, provider string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *Metrics) cacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
