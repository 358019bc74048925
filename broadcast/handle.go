package broadcast

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamcast/errors"
	"github.com/kbukum/streamcast/logger"
)

// Item is one value read from a broadcast.
type Item[T any] struct {
	// Skipped is the number of items this handle missed since its previous
	// read because they were evicted from the cache. Zero means nothing was
	// lost.
	Skipped uint64
	Value   T
}

var consumerIDs atomic.Uint64

// reader is the per-handle read position.
type reader struct {
	pos    uint64
	id     uint64
	waiter chan struct{}
	ended  bool
}

func newReader(pos uint64, ended bool) reader {
	return reader{
		pos:    pos,
		id:     consumerIDs.Add(1),
		waiter: make(chan struct{}, 1),
		ended:  ended,
	}
}

// Handle is an owning reader of a broadcast. The source stays open while
// at least one Handle is open.
//
// A Handle is read from one goroutine at a time. Close may be called from
// any goroutine and unblocks a pending Next.
type Handle[T any] struct {
	core   *core[T]
	reader reader
	closed atomic.Bool
}

var _ Iterator[Item[int]] = (*Handle[int])(nil)

// New wraps source in a broadcast that caches the last capacity items and
// returns its first Handle, positioned before the first item.
// capacity must be at least 1.
func New[T any](source Source[T], capacity int, opts ...Option) (*Handle[T], error) {
	if capacity < 1 {
		return nil, errors.InvalidCapacity(capacity)
	}
	if source == nil {
		return nil, errors.MissingField("source")
	}

	o := buildOptions(opts)
	m, err := newMetrics(o.meterProvider.Meter(instrumentationName), o.name)
	if err != nil {
		o.log.Warn("broadcast metrics disabled", logger.ErrorFields("metrics", err))
		m = nil
	}

	c := &core[T]{
		id:      uuid.NewString(),
		name:    o.name,
		log:     o.log,
		metrics: m,
		tracer:  o.tracerProvider.Tracer(instrumentationName),
		source:  source,
		ring:    newRing[T](capacity),
		waiters: make(map[uint64]chan struct{}),
		strong:  1,
	}
	c.wake = c.wakeParked
	c.metrics.recordHandles(context.Background(), 1)
	c.log.Debug("broadcast created", logger.Fields(
		logger.FieldBroadcast, c.name,
		"id", c.id,
		logger.FieldCapacity, capacity,
	))

	return &Handle[T]{core: c, reader: newReader(0, false)}, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](source Source[T], capacity int, opts ...Option) *Handle[T] {
	h, err := New(source, capacity, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// Next returns the next item. It blocks while the source has nothing new
// and returns (zero, false, nil) once the stream has ended. Ending is
// permanent for this handle. A canceled ctx returns ctx.Err() and leaves
// the handle usable.
func (h *Handle[T]) Next(ctx context.Context) (Item[T], bool, error) {
	return read(ctx, h.core, &h.reader, &h.closed)
}

// Clone returns a new Handle on the same broadcast. The clone starts at the
// current head: it only sees items produced after this call, not items
// still cached from before.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.closed.Load() {
		return closedHandle(h.core)
	}
	seq, ok := h.core.acquire()
	if !ok {
		return closedHandle(h.core)
	}
	return &Handle[T]{core: h.core, reader: newReader(seq, false)}
}

// Downgrade returns a WeakHandle at this handle's position. It does not
// keep the broadcast open.
func (h *Handle[T]) Downgrade() *WeakHandle[T] {
	return &WeakHandle[T]{core: h.core, reader: newReader(h.reader.pos, h.reader.ended)}
}

// Close releases this handle's share of the broadcast. Closing the last
// Handle closes the source and ends every WeakHandle. Close is idempotent.
func (h *Handle[T]) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	h.core.forget(h.reader.id)
	notify(h.reader.waiter)
	return h.core.release()
}

// ID returns the consumer id of this handle.
func (h *Handle[T]) ID() uint64 { return h.reader.id }

// Position returns the sequence number of the next item this handle reads.
func (h *Handle[T]) Position() uint64 { return h.reader.pos }

// IsTerminated reports whether the source has completed or the broadcast
// is closed. Cached items may still be readable by lagging handles.
func (h *Handle[T]) IsTerminated() bool { return h.core.terminated() }

// Err returns the error the source ended with, if any.
func (h *Handle[T]) Err() error { return h.core.failure() }

// Stats returns a snapshot of the broadcast state.
func (h *Handle[T]) Stats() Stats { return h.core.stats() }

func closedHandle[T any](c *core[T]) *Handle[T] {
	h := &Handle[T]{core: c, reader: newReader(0, true)}
	h.closed.Store(true)
	return h
}

// read implements Next for both handle kinds. closed is nil for weak handles.
func read[T any](ctx context.Context, c *core[T], r *reader, closed *atomic.Bool) (Item[T], bool, error) {
	var zero Item[T]
	if r.ended {
		return zero, false, nil
	}

	var span trace.Span
	defer func() {
		if span != nil {
			span.End()
		}
	}()

	for {
		if closed != nil && closed.Load() {
			c.forget(r.id)
			r.ended = true
			return zero, false, nil
		}

		v, pos, out := c.advanceOrServe(ctx, r.pos, r.id, r.waiter)
		switch out {
		case outcomeReady:
			if pos <= r.pos {
				c.violation("read position did not advance", logger.Fields(
					logger.FieldConsumerID, r.id,
					logger.FieldCursor, r.pos,
					logger.FieldSeq, pos,
				))
				r.ended = true
				return zero, false, nil
			}
			skipped := pos - r.pos - 1
			if skipped > 0 {
				c.lagged(ctx, r.id, skipped, r.pos)
			}
			r.pos = pos
			return Item[T]{Skipped: skipped, Value: v}, true, nil

		case outcomeEnd:
			r.ended = true
			r.pos++
			return zero, false, nil

		default:
			if span == nil {
				ctx, span = c.tracer.Start(ctx, "broadcast.wait", trace.WithAttributes(
					attribute.String(logger.FieldBroadcast, c.name),
					attribute.Int64(logger.FieldConsumerID, int64(r.id)),
					attribute.Int64(logger.FieldCursor, int64(r.pos)),
				))
			}
			select {
			case <-r.waiter:
			case <-ctx.Done():
				c.forget(r.id)
				span.RecordError(ctx.Err())
				return zero, false, ctx.Err()
			}
		}
	}
}
