package sse

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamcast/broadcast"
	"github.com/kbukum/streamcast/errors"
	"github.com/kbukum/streamcast/logger"
	"github.com/kbukum/streamcast/observability"
)

// Subscriber hands out broadcast handles. broadcast.Component implements it.
type Subscriber[T any] interface {
	Subscribe() (*broadcast.Handle[T], error)
}

// Handler streams a broadcast to each request as Server-Sent Events.
type Handler[T any] struct {
	sub       Subscriber[T]
	stream    string
	keepAlive time.Duration
	log       *logger.Logger
	metrics   *observability.StreamMetrics

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHandler creates a handler for the named stream. keepAlive is the
// interval of keep-alive comments; zero uses 30s.
func NewHandler[T any](stream string, sub Subscriber[T], keepAlive time.Duration) *Handler[T] {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	log := logger.WithComponent("sse")
	m, err := observability.NewStreamMetrics(observability.Meter("github.com/kbukum/streamcast/sse"))
	if err != nil {
		log.Warn("stream metrics disabled", logger.ErrorFields("metrics", err))
		m = nil
	}
	return &Handler[T]{
		sub:       sub,
		stream:    stream,
		keepAlive: keepAlive,
		log:       log,
		metrics:   m,
		clients:   make(map[string]*Client),
	}
}

// ClientCount returns the number of connected clients.
func (h *Handler[T]) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Clients returns the connected clients ordered by connect time.
func (h *Handler[T]) Clients() []Client {
	h.mu.RLock()
	out := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, *c)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

type delivery[T any] struct {
	item broadcast.Item[T]
	seq  uint64
}

// Stream is the gin handler of the event stream. It returns when the
// client disconnects or the broadcast ends.
func (h *Handler[T]) Stream(c *gin.Context) {
	handle, err := h.sub.Subscribe()
	if err != nil {
		writeError(c, err)
		return
	}
	defer handle.Close()

	client := NewClient(uuid.NewString(),
		WithMetadata("remote_addr", c.ClientIP()),
		WithMetadata("user_agent", c.Request.UserAgent()),
	)
	h.register(client)
	defer h.unregister(client)

	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanSSEStream, trace.WithAttributes(
		attribute.String(observability.AttrClientID, client.ID),
		attribute.String(observability.AttrBroadcast, h.stream),
	))
	defer span.End()

	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug("write deadline not cleared", logger.Fields(logger.FieldClientID, client.ID, logger.FieldError, err.Error()))
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.send(ctx, c, ginsse.Event{Event: EventTypeConnected, Data: ConnectedEvent{
		ClientID: client.ID,
		Position: handle.Position(),
		Metadata: client.Metadata,
	}})

	h.log.Debug("client connected", logger.Fields(
		logger.FieldClientID, client.ID,
		logger.FieldBroadcast, h.stream,
		logger.FieldCursor, handle.Position(),
	))

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	items := h.pump(pumpCtx, handle)

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	var sent int64
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("client disconnected", logger.Fields(logger.FieldClientID, client.ID, "reason", ctx.Err().Error()))
			span.SetAttributes(attribute.Int64(observability.AttrEvents, sent))
			return

		case d, ok := <-items:
			if !ok {
				if ctx.Err() == nil {
					h.finish(ctx, c, handle)
				}
				span.SetAttributes(attribute.Int64(observability.AttrEvents, sent))
				return
			}
			if d.item.Skipped > 0 {
				h.send(ctx, c, ginsse.Event{Event: EventTypeLagged, Data: LaggedEvent{Skipped: d.item.Skipped}})
				if h.metrics != nil {
					h.metrics.RecordLag(ctx, h.stream, d.item.Skipped)
				}
				span.AddEvent("lagged", trace.WithAttributes(attribute.Int64(observability.AttrSkipped, int64(d.item.Skipped))))
			}
			h.send(ctx, c, ginsse.Event{
				Event: EventTypeMessage,
				Id:    strconv.FormatUint(d.seq, 10),
				Data:  d.item.Value,
			})
			sent++

		case <-keepAlive.C:
			_, _ = fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// pump reads handle on its own goroutine so the stream loop can also serve
// keep-alives and disconnects. The channel closes when reading stops.
func (h *Handler[T]) pump(ctx context.Context, handle *broadcast.Handle[T]) <-chan delivery[T] {
	out := make(chan delivery[T])
	go func() {
		defer close(out)
		for {
			item, ok, err := handle.Next(ctx)
			if err != nil || !ok {
				return
			}
			select {
			case out <- delivery[T]{item: item, seq: handle.Position() - 1}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// finish writes the closing events of a stream that ended on the
// broadcast side.
func (h *Handler[T]) finish(ctx context.Context, c *gin.Context, handle *broadcast.Handle[T]) {
	if err := handle.Err(); err != nil {
		observability.SetSpanError(ctx, err)
		h.send(ctx, c, ginsse.Event{Event: EventTypeError, Data: errorBody(err)})
	}
	h.send(ctx, c, ginsse.Event{Event: EventTypeEnd, Data: EndEvent{Position: handle.Position()}})
}

func (h *Handler[T]) send(ctx context.Context, c *gin.Context, ev ginsse.Event) {
	c.Render(-1, ev)
	c.Writer.Flush()
	if h.metrics != nil {
		h.metrics.RecordEvent(ctx, h.stream, ev.Event)
	}
}

func (h *Handler[T]) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordConnect(context.Background(), h.stream)
	}
	h.log.Debug("client registered", logger.Fields(logger.FieldClientID, c.ID, "clients", n))
}

func (h *Handler[T]) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordDisconnect(context.Background(), h.stream, time.Since(c.ConnectedAt))
	}
}

func errorBody(err error) errors.ErrorResponse {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.ToResponse()
	}
	return errors.Internal(err).ToResponse()
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := errors.AsAppError(err); ok && appErr.HTTPStatus != 0 {
		status = appErr.HTTPStatus
	}
	c.AbortWithStatusJSON(status, errorBody(err))
}
