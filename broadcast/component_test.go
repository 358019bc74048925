package broadcast

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/streamcast/component"
	"github.com/kbukum/streamcast/errors"
)

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	root := MustNew(FromSlice([]int{1, 2}), 4, WithName("numbers"))
	c := NewComponent(root)

	if c.Name() != "broadcast:numbers" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	sub, err := c.Subscribe()
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := values(collect(t, sub)); !equalInts(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if h := c.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded after completion, got %s", h.Status)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if c.Stats().Closed {
		t.Error("open subscriber should keep the broadcast alive")
	}
	_ = sub.Close()
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy once closed, got %s", h.Status)
	}

	if err := c.Stop(ctx); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}
}

func TestComponent_SubscribeAfterStop(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(MustNew(FromSlice([]int{1}), 1))
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if _, err := c.Subscribe(); !errors.HasCode(err, errors.ErrCodeClosed) {
		t.Errorf("expected CLOSED, got %v", err)
	}
	if err := c.Start(ctx); !errors.HasCode(err, errors.ErrCodeClosed) {
		t.Errorf("expected CLOSED on start after stop, got %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	c := NewComponent(MustNew(FromSlice([]int{}), 8, WithName("ticks")))
	defer c.Stop(context.Background())

	d := c.Describe()
	if d.Type != "broadcast" {
		t.Errorf("expected type broadcast, got %s", d.Type)
	}
	if !strings.Contains(d.Details, "capacity=8") {
		t.Errorf("expected capacity in details, got %q", d.Details)
	}
}

func TestComponent_InRegistry(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(MustNew(FromSlice([]int{1}), 1, WithName("reg")))

	r := component.NewRegistry()
	if err := r.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("start all: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("stop all: %v", err)
	}
	if !c.Stats().Closed {
		t.Error("expected broadcast closed after registry stop")
	}
}
