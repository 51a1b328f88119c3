package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockchat/internal/model"
)

type messageStoreMock struct {
	transcript []model.Message
	listCalls  int
}

func (m *messageStoreMock) ListByConvKey(convKey string) ([]model.Message, error) {
	m.listCalls++
	return m.transcript, nil
}

type readStoreMock struct {
	marked   map[string]int64
	receipts []model.ReadReceipt
}

func (m *readStoreMock) MarkConversationRead(convKey, userName string, readAt time.Time) (int64, error) {
	if m.marked == nil {
		m.marked = map[string]int64{}
	}
	m.marked[convKey+"/"+userName] = 3
	return 3, nil
}

func (m *readStoreMock) ListByConvKey(convKey string) ([]model.ReadReceipt, error) {
	return m.receipts, nil
}

type publisherMock struct {
	published []model.Message
	err       error
}

func (m *publisherMock) Publish(_ context.Context, msg model.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

type transcriptCacheMock struct {
	cached    []model.Message
	hit       bool
	dirty     bool
	dirtySet  int
	deleted   int
	storedSet int
}

func (m *transcriptCacheMock) GetTranscript(_ context.Context, _ string) ([]model.Message, bool, error) {
	return m.cached, m.hit, nil
}

func (m *transcriptCacheMock) SetTranscript(_ context.Context, _ string, messages []model.Message) error {
	m.storedSet++
	m.cached = messages
	m.hit = true
	return nil
}

func (m *transcriptCacheMock) DeleteTranscript(_ context.Context, _ string) error {
	m.deleted++
	m.cached = nil
	m.hit = false
	return nil
}

func (m *transcriptCacheMock) MarkDirty(_ context.Context, _ string) error {
	m.dirtySet++
	m.dirty = true
	return nil
}

func (m *transcriptCacheMock) IsDirty(_ context.Context, _ string) (bool, error) {
	return m.dirty, nil
}

// cache is the interface type so tests passing nil exercise the cache-less
// path with a genuinely nil TranscriptCache.
func newTestMessageService(conv *convStoreMock, msgs *messageStoreMock, pub *publisherMock, cache TranscriptCache) *MessageService {
	return NewMessageService(conv, msgs, &readStoreMock{}, pub, cache)
}

func TestSendMessageEnqueues(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	pub := &publisherMock{}
	cache := &transcriptCacheMock{}
	s := newTestMessageService(conv, &messageStoreMock{}, pub, cache)

	message, err := s.Send(context.Background(), SendMessageInput{
		ConvKey:    "ABC123",
		SenderName: "Alice",
		SenderRole: model.RoleTrainer,
		Body:       "  hello  ",
	})
	require.NoError(t, err)
	require.Equal(t, "hello", message.Body)
	require.Len(t, pub.published, 1)
	require.Equal(t, 1, cache.dirtySet)
	require.Equal(t, 1, cache.deleted)
}

func TestMessageServiceWithoutCache(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	msgs := &messageStoreMock{transcript: []model.Message{{ID: 1, ConvKey: "ABC123"}}}
	s := newTestMessageService(conv, msgs, &publisherMock{}, nil)

	_, err := s.Send(context.Background(), SendMessageInput{
		ConvKey:    "ABC123",
		SenderName: "Alice",
		SenderRole: model.RoleTrainer,
		Body:       "hi",
	})
	require.NoError(t, err)

	transcript, err := s.Transcript(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, 1, msgs.listCalls)
}

func TestSendMessageValidation(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	s := newTestMessageService(conv, &messageStoreMock{}, &publisherMock{}, nil)

	_, err := s.Send(context.Background(), SendMessageInput{ConvKey: "ABC123", SenderName: "Alice", SenderRole: "spectator", Body: "hi"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Send(context.Background(), SendMessageInput{ConvKey: "ABC123", SenderName: "Alice", SenderRole: model.RoleTrainer, Body: "   "})
	require.ErrorIs(t, err, ErrMessageEmpty)

	_, err = s.Send(context.Background(), SendMessageInput{ConvKey: "NOPE42", SenderName: "Alice", SenderRole: model.RoleTrainer, Body: "hi"})
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendMessageEndedConversation(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", true)
	s := newTestMessageService(conv, &messageStoreMock{}, &publisherMock{}, nil)

	_, err := s.Send(context.Background(), SendMessageInput{ConvKey: "ABC123", SenderName: "Alice", SenderRole: model.RoleTrainer, Body: "hi"})
	require.ErrorIs(t, err, ErrConversationEnded)
}

func TestSendMessageEnqueueFailure(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	s := newTestMessageService(conv, &messageStoreMock{}, &publisherMock{err: errors.New("broker down")}, nil)

	_, err := s.Send(context.Background(), SendMessageInput{ConvKey: "ABC123", SenderName: "Alice", SenderRole: model.RoleTrainer, Body: "hi"})
	require.ErrorIs(t, err, ErrMessageEnqueue)
}

func TestTranscriptUsesCacheWhenClean(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	msgs := &messageStoreMock{transcript: []model.Message{{ID: 1, ConvKey: "ABC123"}}}
	cache := &transcriptCacheMock{cached: []model.Message{{ID: 1, ConvKey: "ABC123"}, {ID: 2, ConvKey: "ABC123"}}, hit: true}
	s := newTestMessageService(conv, msgs, &publisherMock{}, cache)

	transcript, err := s.Transcript(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.Zero(t, msgs.listCalls)
}

func TestTranscriptBypassesDirtyCache(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	msgs := &messageStoreMock{transcript: []model.Message{{ID: 1, ConvKey: "ABC123"}}}
	cache := &transcriptCacheMock{cached: []model.Message{}, hit: true, dirty: true}
	s := newTestMessageService(conv, msgs, &publisherMock{}, cache)

	transcript, err := s.Transcript(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, 1, msgs.listCalls)
	// Dirty marker still set: the fresh read must not be cached yet.
	require.Zero(t, cache.storedSet)
}

func TestTranscriptFillsCacheWhenClean(t *testing.T) {
	conv := newConvStoreMock()
	conv.add("ABC123", "Alice", "Bob", false)
	msgs := &messageStoreMock{transcript: []model.Message{{ID: 1, ConvKey: "ABC123"}}}
	cache := &transcriptCacheMock{}
	s := newTestMessageService(conv, msgs, &publisherMock{}, cache)

	_, err := s.Transcript(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Equal(t, 1, cache.storedSet)
}

func TestMarkRead(t *testing.T) {
	conv := newConvStoreMock()
	s := newTestMessageService(conv, &messageStoreMock{}, &publisherMock{}, nil)

	marked, err := s.MarkRead("ABC123", "Bob")
	require.NoError(t, err)
	require.Equal(t, int64(3), marked)

	_, err = s.MarkRead("", "Bob")
	require.ErrorIs(t, err, ErrInvalidInput)
}
