package broadcast

import "context"

// WeakHandle reads a broadcast without keeping it open. Once every Handle
// is closed, Next reports end of stream forever.
type WeakHandle[T any] struct {
	core   *core[T]
	reader reader
}

var _ Iterator[Item[int]] = (*WeakHandle[int])(nil)

// Next behaves like Handle.Next while the broadcast is open and returns
// (zero, false, nil) without touching the source once it is closed.
func (w *WeakHandle[T]) Next(ctx context.Context) (Item[T], bool, error) {
	return read(ctx, w.core, &w.reader, nil)
}

// Upgrade returns an owning Handle at this handle's position, or false if
// the broadcast is already closed.
func (w *WeakHandle[T]) Upgrade() (*Handle[T], bool) {
	if _, ok := w.core.acquire(); !ok {
		return nil, false
	}
	return &Handle[T]{core: w.core, reader: newReader(w.reader.pos, w.reader.ended)}, true
}

// Clone returns another WeakHandle on the same broadcast, starting at the
// current head. If the broadcast is closed the position does not matter.
func (w *WeakHandle[T]) Clone() *WeakHandle[T] {
	seq, ok := w.core.head()
	if !ok {
		seq = 0
	}
	return &WeakHandle[T]{core: w.core, reader: newReader(seq, false)}
}

// Alive reports whether any Handle of the broadcast is still open.
func (w *WeakHandle[T]) Alive() bool { return w.core.alive() }

// ID returns the consumer id of this handle.
func (w *WeakHandle[T]) ID() uint64 { return w.reader.id }

// Position returns the sequence number of the next item this handle reads.
func (w *WeakHandle[T]) Position() uint64 { return w.reader.pos }

// Close is a no-op; a WeakHandle holds nothing to release.
func (w *WeakHandle[T]) Close() error { return nil }
