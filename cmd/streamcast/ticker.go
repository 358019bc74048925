package main

import (
	"context"
	"sync"
	"time"
)

// Tick is one item of the demo stream.
type Tick struct {
	Seq int       `json:"seq"`
	At  time.Time `json:"at"`
}

// ticker produces a Tick every interval until limit ticks were produced
// or it is closed. A zero limit means unbounded.
type ticker struct {
	t     *time.Ticker
	limit int
	seq   int

	once sync.Once
	done chan struct{}
}

func newTicker(interval time.Duration, limit int) *ticker {
	return &ticker{
		t:     time.NewTicker(interval),
		limit: limit,
		done:  make(chan struct{}),
	}
}

func (t *ticker) Next(ctx context.Context) (Tick, bool, error) {
	if t.limit > 0 && t.seq >= t.limit {
		return Tick{}, false, nil
	}
	select {
	case at := <-t.t.C:
		t.seq++
		return Tick{Seq: t.seq, At: at.UTC()}, true, nil
	case <-t.done:
		return Tick{}, false, nil
	case <-ctx.Done():
		return Tick{}, false, ctx.Err()
	}
}

func (t *ticker) Close() error {
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
	})
	return nil
}
