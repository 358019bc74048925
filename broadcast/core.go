package broadcast

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamcast/errors"
	"github.com/kbukum/streamcast/logger"
)

type outcome int

const (
	outcomeReady outcome = iota
	outcomeEnd
	outcomePending
)

// core is the state shared by every handle of one broadcast.
// All fields below mu are only touched while holding it. The waiter
// registry has its own lock so the source can wake parked handles from
// anywhere, including from inside Poll. Lock order is mu, then wmu.
type core[T any] struct {
	id      string
	name    string
	log     *logger.Logger
	metrics *metrics
	tracer  trace.Tracer

	// wake is handed to every Poll. It is the same func value each time.
	wake func()

	mu     sync.Mutex
	source Source[T]
	ring   ring[T]
	seq    uint64
	strong int
	done   bool
	gone   bool
	err    error

	wmu     sync.Mutex
	waiters map[uint64]chan struct{}
}

// advanceOrServe returns the item following cursor, either from the cache
// or by polling the source once. The whole decision runs under one lock so
// that only one handle ever drives the source for a given item.
//
// On outcomeReady the returned position is the cursor the handle must move
// to. On outcomePending waiter stays registered under id and receives a
// token once polling again may make progress.
func (c *core[T]) advanceOrServe(ctx context.Context, cursor, id uint64, waiter chan struct{}) (T, uint64, outcome) {
	var zero T

	c.mu.Lock()
	if c.gone {
		c.mu.Unlock()
		return zero, 0, outcomeEnd
	}

	if c.seq > cursor {
		pos := cursor
		if c.seq-cursor > c.ring.capacity() {
			pos = c.seq - c.ring.capacity()
		}
		v := c.ring.at(pos)
		c.mu.Unlock()

		c.metrics.recordCacheHit(ctx)
		return v, pos + 1, outcomeReady
	}

	if c.done {
		c.mu.Unlock()
		return zero, 0, outcomeEnd
	}

	// Registered before polling: a wake fired during or right after Poll
	// must find the waiter.
	c.park(id, waiter)
	v, status := c.source.Poll(c.wake)
	switch status {
	case StatusReady:
		woken := c.wakeOthers(id)
		c.ring.put(c.seq, v)
		c.seq++
		pos := c.seq
		c.mu.Unlock()

		c.metrics.recordProduced(ctx)
		c.metrics.recordWakeups(ctx, woken)
		return v, pos, outcomeReady

	case StatusPending:
		c.mu.Unlock()
		return zero, 0, outcomePending

	default:
		c.wakeOthers(id)
		c.done = true
		if se, ok := c.source.(sourceErr); ok {
			c.err = se.Err()
		}
		seq, err := c.seq, c.err
		c.mu.Unlock()

		if status != StatusDone {
			c.violation("source returned an unknown poll status", logger.Fields("status", int(status)))
		}

		fields := logger.Fields(logger.FieldBroadcast, c.name, logger.FieldSeq, seq)
		if err != nil {
			c.log.WithError(err).Warn("source ended with error", fields)
		} else {
			c.log.Debug("source completed", fields)
		}
		return zero, 0, outcomeEnd
	}
}

// park registers waiter under id, replacing any earlier entry of id.
func (c *core[T]) park(id uint64, waiter chan struct{}) {
	c.wmu.Lock()
	c.waiters[id] = waiter
	c.wmu.Unlock()
}

// forget removes id from the waiter registry. Handles call it when they stop
// waiting without having been woken.
func (c *core[T]) forget(id uint64) {
	c.wmu.Lock()
	delete(c.waiters, id)
	c.wmu.Unlock()
}

// wakeParked wakes every parked handle. It is the wake func given to the
// source. Entries stay registered until the next advance or until their
// handle forgets them.
func (c *core[T]) wakeParked() {
	c.wmu.Lock()
	for _, w := range c.waiters {
		notify(w)
	}
	c.wmu.Unlock()
}

// wakeOthers drains the waiter registry and wakes every entry except the
// caller, which is already making progress.
func (c *core[T]) wakeOthers(id uint64) int {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	woken := 0
	for waiterID, w := range c.waiters {
		if waiterID != id {
			notify(w)
			woken++
		}
	}
	clear(c.waiters)
	return woken
}

// acquire takes an ownership share. It fails once the core is torn down.
// The returned sequence number is the current head.
func (c *core[T]) acquire() (uint64, bool) {
	c.mu.Lock()
	if c.gone {
		c.mu.Unlock()
		return 0, false
	}
	c.strong++
	seq := c.seq
	c.mu.Unlock()

	c.metrics.recordHandles(context.Background(), 1)
	return seq, true
}

// release gives back an ownership share. The last release tears the core
// down: the cache is dropped, the source closed and every parked handle
// woken so weak handles can observe the end.
func (c *core[T]) release() error {
	c.mu.Lock()
	if c.gone {
		c.mu.Unlock()
		return nil
	}
	c.strong--
	if c.strong > 0 {
		c.mu.Unlock()
		c.metrics.recordHandles(context.Background(), -1)
		return nil
	}

	c.gone = true
	src := c.source
	c.source = nil
	c.ring.clear()
	c.wmu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.wmu.Unlock()
	seq := c.seq
	c.mu.Unlock()

	c.metrics.recordHandles(context.Background(), -1)
	for _, w := range waiters {
		notify(w)
	}

	var err error
	if closer, ok := src.(io.Closer); ok {
		err = closer.Close()
	}
	fields := logger.Fields(logger.FieldBroadcast, c.name, logger.FieldSeq, seq)
	if err != nil {
		c.log.WithError(err).Warn("broadcast closed, source close failed", fields)
		return errors.SourceFailed(c.name, err)
	}
	c.log.Debug("broadcast closed", fields)
	return nil
}

// head returns the current sequence number and whether the core is alive.
func (c *core[T]) head() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq, !c.gone
}

func (c *core[T]) alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.gone
}

func (c *core[T]) terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done || c.gone
}

func (c *core[T]) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return errors.SourceFailed(c.name, c.err)
}

func (c *core[T]) stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached := c.seq
	if cached > c.ring.capacity() {
		cached = c.ring.capacity()
	}
	if c.gone {
		cached = 0
	}
	c.wmu.Lock()
	parked := len(c.waiters)
	c.wmu.Unlock()
	return Stats{
		ID:         c.id,
		Name:       c.name,
		Capacity:   int(c.ring.capacity()),
		Seq:        c.seq,
		Cached:     int(cached),
		Handles:    c.strong,
		Parked:     parked,
		Terminated: c.done || c.gone,
		Closed:     c.gone,
	}
}

func (c *core[T]) lagged(ctx context.Context, consumerID, skipped, cursor uint64) {
	c.metrics.recordSkipped(ctx, skipped)
	c.log.Debug("handle fell behind the cache", logger.Fields(
		logger.FieldBroadcast, c.name,
		logger.FieldConsumerID, consumerID,
		logger.FieldSkipped, skipped,
		logger.FieldCursor, cursor,
	))
}

// violation reports a broken internal invariant. A correct implementation
// never gets here; debug builds panic, others log.
func (c *core[T]) violation(msg string, fields map[string]interface{}) {
	if strictContracts {
		panic(errors.ContractViolation(msg).WithDetail(logger.FieldBroadcast, c.name))
	}
	c.log.Error("contract violation: "+msg, fields, logger.Fields(logger.FieldBroadcast, c.name))
}

// notify delivers a wake token without blocking. A pending token already
// covers the new one.
func notify(w chan struct{}) {
	select {
	case w <- struct{}{}:
	default:
	}
}

// Stats is a point-in-time view of a broadcast.
type Stats struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Seq        uint64 `json:"seq"`
	Cached     int    `json:"cached"`
	Handles    int    `json:"handles"`
	Parked     int    `json:"parked"`
	Terminated bool   `json:"terminated"`
	Closed     bool   `json:"closed"`
}
