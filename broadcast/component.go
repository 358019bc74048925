package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/streamcast/component"
	"github.com/kbukum/streamcast/errors"
)

// Component manages a broadcast as a lifecycle component. It holds the root
// Handle, hands out clones to subscribers and closes the root on Stop.
// Subscribers still holding handles keep the source open until they close
// them.
type Component[T any] struct {
	root    *Handle[T]
	mu      sync.Mutex
	stopped bool
}

var (
	_ component.Component   = (*Component[int])(nil)
	_ component.Describable = (*Component[int])(nil)
)

// NewComponent wraps root. The component takes over closing root.
func NewComponent[T any](root *Handle[T]) *Component[T] {
	return &Component[T]{root: root}
}

// Name returns the broadcast name.
func (c *Component[T]) Name() string { return "broadcast:" + c.root.core.name }

// Start is a no-op; the source is pulled lazily by subscribers.
func (c *Component[T]) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return errors.Closed(c.Name())
	}
	return nil
}

// Stop closes the root handle.
func (c *Component[T]) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	c.stopped = true
	return c.root.Close()
}

// Subscribe returns a new Handle starting at the current head.
// The caller must close it.
func (c *Component[T]) Subscribe() (*Handle[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil, errors.Closed(c.Name())
	}
	return c.root.Clone(), nil
}

// Stats returns a snapshot of the broadcast state.
func (c *Component[T]) Stats() Stats { return c.root.Stats() }

// Health reports healthy while the source is live, degraded once it has
// completed and unhealthy once the broadcast is closed.
func (c *Component[T]) Health(_ context.Context) component.Health {
	s := c.root.Stats()
	h := component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("seq=%d handles=%d parked=%d", s.Seq, s.Handles, s.Parked),
	}
	switch {
	case s.Closed:
		h.Status = component.StatusUnhealthy
		h.Message = "broadcast closed"
	case s.Terminated:
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("source completed at seq=%d", s.Seq)
		if err := c.root.Err(); err != nil {
			h.Message = err.Error()
		}
	}
	return h
}

// Describe returns summary info for the startup display.
func (c *Component[T]) Describe() component.Description {
	s := c.root.Stats()
	return component.Description{
		Name:    "Broadcast " + s.Name,
		Type:    "broadcast",
		Details: fmt.Sprintf("capacity=%d id=%s", s.Capacity, s.ID),
	}
}
