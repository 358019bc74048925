package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamcast/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	Resource
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		Resource: Resource{
			ServiceName: serviceName,
			Version:     "dev",
			Environment: "development",
		},
		Endpoint: "localhost:4318",
		Insecure: true,
		Interval: 15 * time.Second,
	}
}

// InitMeter installs an OTLP-exporting meter provider as the global one.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.Resource)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// StreamMetrics holds the instruments of a streaming endpoint.
type StreamMetrics struct {
	clientsActive  metric.Int64UpDownCounter
	clientsTotal   metric.Int64Counter
	eventsTotal    metric.Int64Counter
	lagTotal       metric.Int64Counter
	streamDuration metric.Float64Histogram
}

// NewStreamMetrics creates the stream instruments on meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	clientsActive, err := meter.Int64UpDownCounter("stream.clients.active",
		metric.WithDescription("Currently connected stream clients"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.clients.active: %w", err)
	}

	clientsTotal, err := meter.Int64Counter("stream.clients.total",
		metric.WithDescription("Stream clients that connected"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.clients.total: %w", err)
	}

	eventsTotal, err := meter.Int64Counter("stream.events.total",
		metric.WithDescription("Events written to stream clients by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.events.total: %w", err)
	}

	lagTotal, err := meter.Int64Counter("stream.items.lagged",
		metric.WithDescription("Items stream clients missed because they read too slowly"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.items.lagged: %w", err)
	}

	streamDuration, err := meter.Float64Histogram("stream.duration",
		metric.WithDescription("Lifetime of stream connections in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.duration: %w", err)
	}

	return &StreamMetrics{
		clientsActive:  clientsActive,
		clientsTotal:   clientsTotal,
		eventsTotal:    eventsTotal,
		lagTotal:       lagTotal,
		streamDuration: streamDuration,
	}, nil
}

// RecordConnect counts a new client.
func (m *StreamMetrics) RecordConnect(ctx context.Context, stream string) {
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	m.clientsActive.Add(ctx, 1, attrs)
	m.clientsTotal.Add(ctx, 1, attrs)
}

// RecordDisconnect counts a client leaving after duration.
func (m *StreamMetrics) RecordDisconnect(ctx context.Context, stream string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	m.clientsActive.Add(ctx, -1, attrs)
	m.streamDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEvent counts one event of the given type.
func (m *StreamMetrics) RecordEvent(ctx context.Context, stream, event string) {
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stream", stream),
		attribute.String("event", event),
	))
}

// RecordLag counts items a client skipped.
func (m *StreamMetrics) RecordLag(ctx context.Context, stream string, skipped uint64) {
	m.lagTotal.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("stream", stream)))
}
