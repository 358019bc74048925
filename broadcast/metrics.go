package broadcast

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the OpenTelemetry instruments of one broadcast.
// A nil *metrics records nothing.
type metrics struct {
	produced metric.Int64Counter
	served   metric.Int64Counter
	skipped  metric.Int64Counter
	wakeups  metric.Int64Counter
	handles  metric.Int64UpDownCounter

	attrs     metric.MeasurementOption
	fromCache metric.MeasurementOption
	fromHead  metric.MeasurementOption
}

func newMetrics(meter metric.Meter, name string) (*metrics, error) {
	produced, err := meter.Int64Counter("broadcast.items.produced",
		metric.WithDescription("Items pulled from the source"),
	)
	if err != nil {
		return nil, err
	}
	served, err := meter.Int64Counter("broadcast.items.served",
		metric.WithDescription("Items delivered to handles"),
	)
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("broadcast.items.skipped",
		metric.WithDescription("Items a lagging handle missed because they left the cache"),
	)
	if err != nil {
		return nil, err
	}
	wakeups, err := meter.Int64Counter("broadcast.wakeups",
		metric.WithDescription("Parked handles woken after the source advanced"),
	)
	if err != nil {
		return nil, err
	}
	handles, err := meter.Int64UpDownCounter("broadcast.handles.active",
		metric.WithDescription("Open owning handles"),
	)
	if err != nil {
		return nil, err
	}

	base := attribute.String("broadcast", name)
	return &metrics{
		produced:  produced,
		served:    served,
		skipped:   skipped,
		wakeups:   wakeups,
		handles:   handles,
		attrs:     metric.WithAttributes(base),
		fromCache: metric.WithAttributes(base, attribute.String("path", "cache")),
		fromHead:  metric.WithAttributes(base, attribute.String("path", "source")),
	}, nil
}

func (m *metrics) recordProduced(ctx context.Context) {
	if m == nil {
		return
	}
	m.produced.Add(ctx, 1, m.attrs)
	m.served.Add(ctx, 1, m.fromHead)
}

func (m *metrics) recordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.served.Add(ctx, 1, m.fromCache)
}

func (m *metrics) recordSkipped(ctx context.Context, n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.skipped.Add(ctx, int64(n), m.attrs)
}

func (m *metrics) recordWakeups(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.wakeups.Add(ctx, int64(n), m.attrs)
}

func (m *metrics) recordHandles(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.handles.Add(ctx, delta, m.attrs)
}
