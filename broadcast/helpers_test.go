package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/streamcast/logger"
)

const testTimeout = 5 * time.Second

func init() {
	logger.SetGlobalLogger(logger.NewNop())
}

// collect reads it until end of stream.
func collect(t *testing.T, it Iterator[Item[int]]) []Item[int] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	var items []Item[int]
	for {
		item, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("unexpected error after %d items: %v", len(items), err)
		}
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// drain is collect for use off the test goroutine.
func drain(it Iterator[Item[int]]) ([]Item[int], error) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	var items []Item[int]
	for {
		item, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return items, err
		}
		items = append(items, item)
	}
}

func mustNext(t *testing.T, it Iterator[Item[int]]) Item[int] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	item, ok, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("unexpected end of stream")
	}
	return item
}

func expectEnd(t *testing.T, it Iterator[Item[int]]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	item, ok, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected end of stream, got %+v", item)
	}
}

func values(items []Item[int]) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countingSource wraps a source and records how it is driven. Polling after
// StatusDone fails the test.
type countingSource[T any] struct {
	t     *testing.T
	inner Source[T]

	mu     sync.Mutex
	active bool
	polls  int
	ready  int
	done   bool
	closed atomic.Bool
}

func newCountingSource[T any](t *testing.T, inner Source[T]) *countingSource[T] {
	return &countingSource[T]{t: t, inner: inner}
}

func (s *countingSource[T]) Poll(wake func()) (T, Status) {
	s.mu.Lock()
	if s.active {
		s.t.Error("source polled concurrently")
	}
	if s.done {
		s.t.Error("source polled after completion")
	}
	s.active = true
	s.polls++
	s.mu.Unlock()

	v, st := s.inner.Poll(wake)

	s.mu.Lock()
	s.active = false
	switch st {
	case StatusReady:
		s.ready++
	case StatusDone:
		s.done = true
	}
	s.mu.Unlock()
	return v, st
}

func (s *countingSource[T]) Close() error {
	s.closed.Store(true)
	if c, ok := s.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *countingSource[T]) counts() (polls, ready int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls, s.ready
}
