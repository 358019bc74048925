package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/streamcast/component"
	"github.com/kbukum/streamcast/config"
	"github.com/kbukum/streamcast/logger"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	if m.order != nil {
		*m.order = append(*m.order, "start:"+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	if m.order != nil {
		*m.order = append(*m.order, "stop:"+m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	cfg := &config.ServiceConfig{Name: "test-svc", Version: "1.0.0"}
	app, err := NewApp(cfg,
		WithLogger(logger.NewNop()),
		WithSummaryOutput(out),
		WithGracefulTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func healthy(name string) component.Health {
	return component.Health{Name: name, Status: component.StatusHealthy}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Components == nil {
		t.Error("expected non-nil components registry")
	}
	if app.Cfg.Broadcast.Capacity == 0 {
		t.Error("expected config defaults applied")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.ServiceConfig{Name: "svc", Environment: "moon"}
	if _, err := NewApp(cfg, WithLogger(logger.NewNop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApp_StartAndShutdownOrder(t *testing.T) {
	var order []string
	app := newTestApp(t, &bytes.Buffer{})
	a := &mockComponent{name: "a", health: healthy("a"), order: &order}
	b := &mockComponent{name: "b", health: healthy("b"), order: &order}
	if err := app.RegisterComponent(a); err != nil {
		t.Fatal(err)
	}
	if err := app.RegisterComponent(b); err != nil {
		t.Fatal(err)
	}

	var hooks []string
	app.OnStart(func(context.Context) error { hooks = append(hooks, "start"); return nil })
	app.OnReady(func(context.Context) error { hooks = append(hooks, "ready"); return nil })
	app.OnStop(func(context.Context) error { hooks = append(hooks, "stop"); return nil })

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := strings.Join(order, ","); got != "start:a,start:b,stop:b,stop:a" {
		t.Errorf("unexpected lifecycle order %s", got)
	}
	if got := strings.Join(hooks, ","); got != "start,ready,stop" {
		t.Errorf("unexpected hook order %s", got)
	}
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	c := &mockComponent{name: "c", health: healthy("c")}
	_ = app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !c.started || !c.stopped {
		t.Errorf("expected component started and stopped, got started=%v stopped=%v", c.started, c.stopped)
	}
}

func TestApp_StartFailure(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	_ = app.RegisterComponent(&mockComponent{name: "bad", startErr: fmt.Errorf("boom")})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected start failure, got %v", err)
	}
}

func TestApp_ReadyCheck(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	_ = app.RegisterComponent(&mockComponent{name: "ok", health: healthy("ok")})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	_ = app.RegisterComponent(&mockComponent{name: "sick", health: component.Health{
		Name: "sick", Status: component.StatusDegraded, Message: "source completed",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "sick=degraded(source completed)") {
		t.Errorf("expected degraded component reported, got %v", err)
	}
}

func TestApp_StopHookError(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	app.OnStop(func(context.Context) error { return fmt.Errorf("drain failed") })
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(context.Background()); err == nil {
		t.Error("expected stop hook error")
	}
}

func TestSummary_Display(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	_ = app.RegisterComponent(&mockComponent{name: "broadcast:ticks", health: healthy("broadcast:ticks")})
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown(context.Background())

	s := out.String()
	if !strings.Contains(s, "test-svc v1.0.0") {
		t.Errorf("expected service header, got %q", s)
	}
	if !strings.Contains(s, "broadcast:ticks") {
		t.Errorf("expected component line, got %q", s)
	}
	if !strings.Contains(s, "All components healthy (1/1)") {
		t.Errorf("expected health footer, got %q", s)
	}
}

func TestSummary_Empty(t *testing.T) {
	var out bytes.Buffer
	NewSummary("svc", "1").Display(&out, component.NewRegistry())
	if !strings.Contains(out.String(), "No components registered") {
		t.Errorf("unexpected output %q", out.String())
	}
}
