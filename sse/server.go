package sse

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/streamcast/broadcast"
	"github.com/kbukum/streamcast/component"
	"github.com/kbukum/streamcast/errors"
	"github.com/kbukum/streamcast/logger"
	"github.com/kbukum/streamcast/observability"
)

// HealthReporter returns the health of every service component.
// component.Registry implements it.
type HealthReporter interface {
	HealthAll(ctx context.Context) []component.Health
}

type statser interface {
	Stats() broadcast.Stats
}

type serverOptions struct {
	service string
	version string
	health  HealthReporter
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

// WithHealth serves the components of r on /health.
func WithHealth(r HealthReporter) ServerOption {
	return func(o *serverOptions) { o.health = r }
}

// WithService sets the service name and version reported on /health.
func WithService(name, version string) ServerOption {
	return func(o *serverOptions) {
		o.service = name
		o.version = version
	}
}

// Server is the HTTP component serving one broadcast as an event stream.
// It also serves /health and, when the subscriber reports stats, /stats.
type Server[T any] struct {
	cfg     ServerConfig
	opts    serverOptions
	engine  *gin.Engine
	stream  *Handler[T]
	log     *logger.Logger
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	srv     *http.Server
	addr    string
	running bool
}

var (
	_ component.Component   = (*Server[int])(nil)
	_ component.Describable = (*Server[int])(nil)
)

// NewServer builds the server and its routes. Nothing listens until Start.
func NewServer[T any](cfg ServerConfig, sub Subscriber[T], opts ...ServerOption) *Server[T] {
	cfg.ApplyDefaults()
	o := serverOptions{service: "streamcast"}
	for _, opt := range opts {
		opt(&o)
	}

	stream := o.service
	st, hasStats := sub.(statser)
	if hasStats {
		stream = st.Stats().Name
	}

	log := logger.WithComponent("http")
	engine := gin.New()
	engine.Use(Recovery(), RequestID(), RequestLogger(log))

	s := &Server[T]{
		cfg:    cfg,
		opts:   o,
		engine: engine,
		stream: NewHandler[T](stream, sub, cfg.KeepAlive),
		log:    log,
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	engine.GET(cfg.Path, s.stream.Stream)
	engine.GET("/health", s.serveHealth)
	if hasStats {
		engine.GET("/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"broadcast": st.Stats(),
				"clients":   s.stream.Clients(),
			})
		})
	}
	return s
}

// Handler returns the root handler, gin wrapped for HTTP/2 cleartext.
func (s *Server[T]) Handler() http.Handler {
	return h2c.NewHandler(s.engine, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	})
}

// Streams returns the stream handler.
func (s *Server[T]) Streams() *Handler[T] { return s.stream }

// Name returns the component name.
func (s *Server[T]) Name() string { return "sse" }

// Start binds the listen address and serves in the background. It returns
// once the listener is bound.
func (s *Server[T]) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.baseCtx.Err() != nil {
		return errors.Closed(s.Name())
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("sse server failed to bind %s: %w", s.cfg.Addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	s.addr = ln.Addr().String()
	s.running = true

	srv := s.srv
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("SSE server started", logger.Fields("addr", s.addr, "path", s.cfg.Path))
	return nil
}

// Stop ends every open stream and shuts the server down.
func (s *Server[T]) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.running {
		return nil
	}
	s.running = false

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sse server shutdown error: %w", err)
	}
	s.log.Info("SSE server stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server[T]) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.cfg.Addr
}

// Health reports the server and its client count.
func (s *Server[T]) Health(_ context.Context) component.Health {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	h := component.Health{
		Name:    s.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", s.stream.ClientCount()),
	}
	if !running {
		h.Status = component.StatusUnhealthy
		h.Message = "not serving"
	}
	return h
}

// Describe returns summary info for the startup display.
func (s *Server[T]) Describe() component.Description {
	return component.Description{
		Name:    "SSE Server",
		Type:    "server",
		Details: fmt.Sprintf("Addr: %s Path: %s", s.cfg.Addr, s.cfg.Path),
	}
}

func (s *Server[T]) serveHealth(c *gin.Context) {
	sh := observability.NewServiceHealth(s.opts.service, s.opts.version)
	if s.opts.health != nil {
		sh.AddComponents(s.opts.health.HealthAll(c.Request.Context()))
	} else {
		sh.AddComponent(s.Health(c.Request.Context()))
	}

	status := http.StatusOK
	if sh.Status == component.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}
