package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"mockchat/internal/model"
)

// Session lifecycle states.
var (
	StateInitializing stateless.State = "initializing"
	StateStreaming    stateless.State = "streaming"
	StateClosed       stateless.State = "closed"
)

var (
	triggerStreaming stateless.Trigger = "streaming"
	triggerClose     stateless.Trigger = "close"
)

// MessageSource is the read side of the message store as the session sees
// it: an append-only log with a monotonically increasing id per conversation.
type MessageSource interface {
	ListByConvKey(convKey string) ([]model.Message, error)
	ListAfterID(convKey string, afterID uint) ([]model.Message, error)
}

// TypingSource yields the typing signals currently within the TTL window.
type TypingSource interface {
	ActiveTyping(ctx context.Context, convKey string) ([]model.TypingSignal, error)
}

// Emitter is the output channel to one client. A returned error means the
// client is unreachable and is fatal to the session.
type Emitter interface {
	Emit(eventType string, payload any) error
}

// SessionConfig wires one delivery session. OnClose, when set, runs exactly
// once as the session enters the closed state.
type SessionConfig struct {
	ConvKey           string
	Viewer            string
	Messages          MessageSource
	Typing            TypingSource
	Emitter           Emitter
	PollInterval      time.Duration
	KeepAliveInterval time.Duration
	OnClose           func(*Session)
}

// Session delivers one conversation to one viewer: a full init batch, then
// delta batches and typing snapshots on a fixed poll cadence, plus periodic
// keep-alive pings. It holds no message state beyond the last-delivered id.
type Session struct {
	convKey           string
	viewer            string
	messages          MessageSource
	typing            TypingSource
	emitter           Emitter
	pollInterval      time.Duration
	keepAliveInterval time.Duration
	onClose           func(*Session)

	fsm           *stateless.StateMachine
	lastDelivered uint

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1500 * time.Millisecond
	}
	if cfg.KeepAliveInterval <= 0 {
		cfg.KeepAliveInterval = 25 * time.Second
	}

	s := &Session{
		convKey:           cfg.ConvKey,
		viewer:            cfg.Viewer,
		messages:          cfg.Messages,
		typing:            cfg.Typing,
		emitter:           cfg.Emitter,
		pollInterval:      cfg.PollInterval,
		keepAliveInterval: cfg.KeepAliveInterval,
		onClose:           cfg.OnClose,
	}

	fsm := stateless.NewStateMachine(StateInitializing)
	fsm.Configure(StateInitializing).
		Permit(triggerStreaming, StateStreaming).
		Permit(triggerClose, StateClosed)
	fsm.Configure(StateStreaming).
		Permit(triggerClose, StateClosed)
	fsm.Configure(StateClosed).
		OnEntry(func(_ context.Context, _ ...any) error {
			if s.onClose != nil {
				s.onClose(s)
			}
			return nil
		})
	s.fsm = fsm

	return s
}

func (s *Session) ConvKey() string { return s.convKey }
func (s *Session) Viewer() string  { return s.viewer }

// LastDelivered is the id of the newest message already pushed to the client.
func (s *Session) LastDelivered() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDelivered
}

func (s *Session) State() stateless.State {
	return s.fsm.MustState()
}

// Run drives the session until the context is canceled, Close is called, or
// an emit fails. It always leaves the session closed.
func (s *Session) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !s.arm(cancel) {
		return nil
	}
	defer s.Close()

	history, err := s.messages.ListByConvKey(s.convKey)
	if err != nil {
		s.emitError(fmt.Sprintf("load conversation failed: %v", err))
		return fmt.Errorf("session init query failed: %w", err)
	}
	if err := s.emitter.Emit(EventInit, newMessageBatch(EventInit, history)); err != nil {
		return fmt.Errorf("emit init batch failed: %w", err)
	}
	s.setLastDelivered(NextCursor(0, history))

	if err := s.fsm.Fire(triggerStreaming); err != nil {
		// Close raced the init batch; nothing left to do.
		return nil
	}

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()
	keepAliveTicker := time.NewTicker(s.keepAliveInterval)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case <-pollTicker.C:
			if s.isClosed() {
				return nil
			}
			if err := s.pollOnce(runCtx); err != nil {
				return err
			}
		case <-keepAliveTicker.C:
			if s.isClosed() {
				return nil
			}
			if err := s.emitter.Emit(EventPing, Ping{Type: EventPing}); err != nil {
				return fmt.Errorf("emit keep-alive failed: %w", err)
			}
		}
	}
}

// pollOnce runs one tick of the streaming state: message delta then typing
// snapshot. Store failures are transient and retried next tick; an emit
// failure is returned and tears the session down.
func (s *Session) pollOnce(ctx context.Context) error {
	cursor := s.LastDelivered()
	batch, err := s.messages.ListAfterID(s.convKey, cursor)
	if err != nil {
		log.Printf("session %s/%s: message poll failed: %v", s.convKey, s.viewer, err)
	} else {
		batch = Delta(cursor, batch)
		if len(batch) > 0 {
			if err := s.emitter.Emit(EventNew, newMessageBatch(EventNew, batch)); err != nil {
				return fmt.Errorf("emit message batch failed: %w", err)
			}
			s.setLastDelivered(NextCursor(cursor, batch))
		}
	}

	signals, err := s.typing.ActiveTyping(ctx, s.convKey)
	if err != nil {
		log.Printf("session %s/%s: typing poll failed: %v", s.convKey, s.viewer, err)
		return nil
	}
	if len(signals) > 0 {
		if err := s.emitter.Emit(EventTyping, TypingBatch{Type: EventTyping, Typing: signals}); err != nil {
			return fmt.Errorf("emit typing batch failed: %w", err)
		}
	}
	return nil
}

// Close transitions the session to closed, stopping the poll loop. Closing
// an already-closed session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := s.fsm.Fire(triggerClose); err != nil {
		log.Printf("session %s/%s: close transition failed: %v", s.convKey, s.viewer, err)
	}
}

// arm stores the run cancel func. Returns false when the session was closed
// before Run started, in which case the loop must not begin.
func (s *Session) arm(cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.cancel = cancel
	return true
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) setLastDelivered(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.lastDelivered {
		s.lastDelivered = id
	}
}

func (s *Session) emitError(message string) {
	if err := s.emitter.Emit(EventError, ErrorEvent{Type: EventError, Error: message}); err != nil {
		log.Printf("session %s/%s: emit error event failed: %v", s.convKey, s.viewer, err)
	}
}
