package broadcast

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

// sumOf adds the data points of an int64 sum, optionally filtered by one
// attribute.
func sumOf(t *testing.T, data map[string]metricdata.Aggregation, name string, filter ...attribute.KeyValue) int64 {
	t.Helper()
	agg, ok := data[name]
	if !ok {
		return 0
	}
	sum, ok := agg.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, agg)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range filter {
			if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
				match = false
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordsBroadcastActivity(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	h := MustNew(FromSlice([]int{0, 1, 2, 3, 4}), 3,
		WithName("metered"),
		WithMeterProvider(mp),
	)
	lagging := h.Clone()

	collect(t, h)
	items := collect(t, lagging)
	if len(items) != 3 || items[0].Skipped != 2 {
		t.Fatalf("expected lagging handle to skip 2, got %+v", items)
	}

	data := collectMetrics(t, reader)
	if got := sumOf(t, data, "broadcast.items.produced"); got != 5 {
		t.Errorf("produced: expected 5, got %d", got)
	}
	if got := sumOf(t, data, "broadcast.items.served", attribute.String("path", "source")); got != 5 {
		t.Errorf("served from source: expected 5, got %d", got)
	}
	if got := sumOf(t, data, "broadcast.items.served", attribute.String("path", "cache")); got != 3 {
		t.Errorf("served from cache: expected 3, got %d", got)
	}
	if got := sumOf(t, data, "broadcast.items.skipped"); got != 2 {
		t.Errorf("skipped: expected 2, got %d", got)
	}
	if got := sumOf(t, data, "broadcast.handles.active", attribute.String("broadcast", "metered")); got != 2 {
		t.Errorf("handles: expected 2, got %d", got)
	}

	_ = lagging.Close()
	_ = h.Close()
	data = collectMetrics(t, reader)
	if got := sumOf(t, data, "broadcast.handles.active"); got != 0 {
		t.Errorf("handles after close: expected 0, got %d", got)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *metrics
	ctx := context.Background()
	m.recordProduced(ctx)
	m.recordCacheHit(ctx)
	m.recordSkipped(ctx, 3)
	m.recordWakeups(ctx, 2)
	m.recordHandles(ctx, 1)
}

func TestTracing_WaitSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	ch := make(chan int)
	h := MustNew[int](FromChannel("traced", ch), 1,
		WithName("traced"),
		WithTracerProvider(tp),
	)
	defer h.Close()

	go func() {
		deadline := time.Now().Add(testTimeout)
		for h.Stats().Parked == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		ch <- 9
	}()

	if it := mustNext(t, h); it.Value != 9 {
		t.Fatalf("expected 9, got %d", it.Value)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 wait span, got %d", len(spans))
	}
	if spans[0].Name() != "broadcast.wait" {
		t.Errorf("expected span broadcast.wait, got %s", spans[0].Name())
	}
	found := false
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "broadcast" && kv.Value.AsString() == "traced" {
			found = true
		}
	}
	if !found {
		t.Error("expected broadcast attribute on wait span")
	}
}

func TestTracing_NoSpanWhenReady(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	h := MustNew(FromSlice([]int{1, 2}), 2, WithTracerProvider(tp))
	defer h.Close()
	collect(t, h)

	if n := len(rec.Ended()); n != 0 {
		t.Errorf("expected no wait spans for a ready source, got %d", n)
	}
}
