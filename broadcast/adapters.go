package broadcast

import (
	"context"
	"sync"
)

// FromSlice returns a Source that yields items in order and then completes.
// It is always ready and never parks a consumer.
func FromSlice[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

type sliceSource[T any] struct {
	items []T
	index int
}

func (s *sliceSource[T]) Poll(_ func()) (T, Status) {
	if s.index >= len(s.items) {
		var zero T
		return zero, StatusDone
	}
	v := s.items[s.index]
	s.index++
	return v, StatusReady
}

// FromFunc returns a Source backed by a blocking pull function.
//
// next is called on a background goroutine, one call at a time, and only
// when the broadcast asks for an item that is not already waiting. It
// follows the Iterator convention: (zero, false, nil) ends the source and a
// non-nil error ends it too, the error being kept for Err.
func FromFunc[T any](name string, next func(ctx context.Context) (T, bool, error)) *AsyncSource[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncSource[T]{
		name:   name,
		next:   next,
		ctx:    ctx,
		cancel: cancel,
	}
}

// FromIterator returns a Source that pulls from it. The iterator is closed
// together with the source.
func FromIterator[T any](name string, it Iterator[T]) *AsyncSource[T] {
	s := FromFunc(name, it.Next)
	s.closeFn = it.Close
	return s
}

// FromChannel returns a Source that receives from ch until it is closed.
func FromChannel[T any](name string, ch <-chan T) *AsyncSource[T] {
	return FromFunc(name, func(ctx context.Context) (T, bool, error) {
		select {
		case v, ok := <-ch:
			return v, ok, nil
		case <-ctx.Done():
			var zero T
			return zero, false, ctx.Err()
		}
	})
}

// AsyncSource drives a blocking pull function on demand and exposes it as a
// non-blocking Source.
type AsyncSource[T any] struct {
	name    string
	next    func(ctx context.Context) (T, bool, error)
	closeFn func() error
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	inflight bool
	ready    bool
	val      T
	ended    bool
	err      error
	wake     func()
}

var _ Source[int] = (*AsyncSource[int])(nil)

// Name returns the source name given at construction.
func (s *AsyncSource[T]) Name() string { return s.name }

// Poll implements Source. Only the wake func of the latest pending Poll is
// called when the fetch completes; a broadcast passes the same one every
// time and it wakes all parked handles.
func (s *AsyncSource[T]) Poll(wake func()) (T, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.ready {
		v := s.val
		s.val = zero
		s.ready = false
		return v, StatusReady
	}
	if s.ended {
		return zero, StatusDone
	}

	s.wake = wake
	if !s.inflight {
		s.inflight = true
		go s.fetch()
	}
	return zero, StatusPending
}

func (s *AsyncSource[T]) fetch() {
	v, ok, err := s.next(s.ctx)

	s.mu.Lock()
	s.inflight = false
	switch {
	case err != nil:
		s.ended = true
		if s.ctx.Err() == nil {
			s.err = err
		}
	case !ok:
		s.ended = true
	default:
		s.val = v
		s.ready = true
	}
	wake := s.wake
	s.wake = nil
	s.mu.Unlock()

	if wake != nil {
		wake()
	}
}

// Err returns the error that ended the source, if any.
func (s *AsyncSource[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops any pending pull and closes the wrapped iterator.
func (s *AsyncSource[T]) Close() error {
	s.cancel()
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}
