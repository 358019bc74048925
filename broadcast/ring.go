package broadcast

// ring is the fixed-size cache of the most recently produced items.
// Slot seq%capacity holds the item with sequence number seq, which is only
// valid while seq > head-capacity.
type ring[T any] struct {
	slots []T
	size  uint64
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{
		slots: make([]T, 0, capacity),
		size:  uint64(capacity),
	}
}

func (r *ring[T]) capacity() uint64 { return r.size }

func (r *ring[T]) at(seq uint64) T {
	return r.slots[seq%r.size]
}

// put stores v as the item with sequence number seq, overwriting the oldest
// occupant once the ring is full. Items must be put in sequence order.
func (r *ring[T]) put(seq uint64, v T) {
	idx := seq % r.size
	if uint64(len(r.slots)) <= idx {
		r.slots = append(r.slots, v)
		return
	}
	r.slots[idx] = v
}

// clear drops every cached item so the values can be collected.
func (r *ring[T]) clear() {
	clear(r.slots)
	r.slots = r.slots[:0]
}
