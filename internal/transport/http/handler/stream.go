package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"mockchat/internal/stream"
)

type StreamHandler struct {
	registry          *stream.Registry
	messages          stream.MessageSource
	typing            stream.TypingSource
	pollInterval      time.Duration
	keepAliveInterval time.Duration
}

func NewStreamHandler(
	registry *stream.Registry,
	messages stream.MessageSource,
	typing stream.TypingSource,
	pollInterval time.Duration,
	keepAliveInterval time.Duration,
) *StreamHandler {
	return &StreamHandler{
		registry:          registry,
		messages:          messages,
		typing:            typing,
		pollInterval:      pollInterval,
		keepAliveInterval: keepAliveInterval,
	}
}

// Subscribe opens a server-sent-events stream for one conversation. The
// session runs on the request goroutine and ends when the client disconnects,
// the server shuts down, or a write to the client fails.
func (h *StreamHandler) Subscribe(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}
	emitter := newSSEEmitter(c.Writer, flusher)

	convKey := strings.TrimSpace(c.Query("conv_key"))
	if convKey == "" {
		_ = emitter.Emit(stream.EventError, stream.ErrorEvent{Type: stream.EventError, Error: "conv_key is required"})
		return
	}

	viewer := strings.TrimSpace(c.Query("viewer"))
	if viewer == "" {
		viewer = c.ClientIP()
	}

	sess := stream.NewSession(stream.SessionConfig{
		ConvKey:           convKey,
		Viewer:            viewer,
		Messages:          h.messages,
		Typing:            h.typing,
		Emitter:           emitter,
		PollInterval:      h.pollInterval,
		KeepAliveInterval: h.keepAliveInterval,
		OnClose: func(s *stream.Session) {
			h.registry.Unregister(s)
		},
	})

	if err := h.registry.Register(sess); err != nil {
		if errors.Is(err, stream.ErrDuplicateSession) {
			_ = emitter.Emit(stream.EventError, stream.ErrorEvent{Type: stream.EventError, Error: "viewer already streaming this conversation"})
			return
		}
		_ = emitter.Emit(stream.EventError, stream.ErrorEvent{Type: stream.EventError, Error: "stream setup failed"})
		return
	}

	if err := sess.Run(c.Request.Context()); err != nil {
		log.Printf("stream session %s/%s ended: %v", convKey, viewer, err)
	}
}

// sseEmitter writes events in the text/event-stream framing. Writes are
// serialized; keep-alive ticks and poll ticks share the one connection.
type sseEmitter struct {
	mu      sync.Mutex
	writer  http.ResponseWriter
	flusher http.Flusher
}

func newSSEEmitter(w http.ResponseWriter, f http.Flusher) *sseEmitter {
	return &sseEmitter{writer: w, flusher: f}
}

func (e *sseEmitter) Emit(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", eventType, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := fmt.Fprintf(e.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write %s event failed: %w", eventType, err)
	}
	e.flusher.Flush()
	return nil
}
