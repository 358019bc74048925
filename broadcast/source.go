package broadcast

import "context"

// Status is the outcome of a single Source poll.
type Status int

const (
	// StatusReady means an item was produced.
	StatusReady Status = iota
	// StatusPending means no item is available yet. The source calls the
	// wake function it was given once polling again can make progress.
	StatusPending
	// StatusDone means the source is exhausted. It is never polled again.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Source is a single-consumer sequence of items.
//
// Poll must not block. A broadcast polls its source from one goroutine at a
// time and never again after StatusDone. If the source also implements
// io.Closer it is closed when the last Handle is closed.
type Source[T any] interface {
	Poll(wake func()) (T, Status)
}

// PollFunc adapts a function to the Source interface.
type PollFunc[T any] func(wake func()) (T, Status)

// Poll calls f(wake).
func (f PollFunc[T]) Poll(wake func()) (T, Status) {
	return f(wake)
}

// Iterator provides pull-based sequential access to a stream of values.
// Handles implement it, and FromIterator turns one into a Source.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// sourceErr is implemented by sources that can end because of an error.
type sourceErr interface {
	Err() error
}
