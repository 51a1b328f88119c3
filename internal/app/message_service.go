package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"mockchat/internal/model"
)

var (
	ErrMessageEmpty   = errors.New("message body is empty")
	ErrMessageEnqueue = errors.New("message enqueue failed")
)

// MessageStore is the read side of the message log.
type MessageStore interface {
	ListByConvKey(convKey string) ([]model.Message, error)
}

// ReadStore records and lists read receipts.
type ReadStore interface {
	MarkConversationRead(convKey, userName string, readAt time.Time) (int64, error)
	ListByConvKey(convKey string) ([]model.ReadReceipt, error)
}

// AsyncMessagePublisher hands a message to the persist queue.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// TranscriptCache is the redis transcript cache with dirty markers.
type TranscriptCache interface {
	GetTranscript(ctx context.Context, convKey string) ([]model.Message, bool, error)
	SetTranscript(ctx context.Context, convKey string, messages []model.Message) error
	DeleteTranscript(ctx context.Context, convKey string) error
	MarkDirty(ctx context.Context, convKey string) error
	IsDirty(ctx context.Context, convKey string) (bool, error)
}

type MessageService struct {
	conversations   ConversationStore
	messages        MessageStore
	reads           ReadStore
	publisher       AsyncMessagePublisher
	transcriptCache TranscriptCache
}

type SendMessageInput struct {
	ConvKey    string
	SenderName string
	SenderRole string
	Body       string
	Attachment string
}

func NewMessageService(
	conversations ConversationStore,
	messages MessageStore,
	reads ReadStore,
	publisher AsyncMessagePublisher,
	transcriptCache TranscriptCache,
) *MessageService {
	return &MessageService{
		conversations:   conversations,
		messages:        messages,
		reads:           reads,
		publisher:       publisher,
		transcriptCache: transcriptCache,
	}
}

// Send validates the message against its conversation and enqueues it for
// persistence. The store assigns the id when the worker lands it; delivery
// sessions pick it up on their next poll after that.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (*model.Message, error) {
	convKey := strings.TrimSpace(input.ConvKey)
	senderName := strings.TrimSpace(input.SenderName)
	senderRole := strings.TrimSpace(input.SenderRole)
	body := strings.TrimSpace(input.Body)

	if convKey == "" || senderName == "" || !model.ValidRole(senderRole) {
		return nil, ErrInvalidInput
	}
	if body == "" {
		return nil, ErrMessageEmpty
	}

	conversation, err := s.conversations.GetByConvKey(convKey)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	if conversation.Ended {
		return nil, ErrConversationEnded
	}

	message := &model.Message{
		ConvKey:    convKey,
		SenderName: senderName,
		SenderRole: senderRole,
		Body:       body,
		Attachment: strings.TrimSpace(input.Attachment),
		CreatedAt:  time.Now(),
	}

	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.transcriptCache != nil {
		_ = s.transcriptCache.MarkDirty(ctx, convKey)
		_ = s.transcriptCache.DeleteTranscript(ctx, convKey)
	}
	if err := s.publisher.Publish(ctx, *message); err != nil {
		return nil, ErrMessageEnqueue
	}
	return message, nil
}

// Transcript returns the full ordered history of a conversation, served from
// the cache when it is present and not dirty.
func (s *MessageService) Transcript(ctx context.Context, convKey string) ([]model.Message, error) {
	convKey = strings.TrimSpace(convKey)
	if convKey == "" {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversations.GetByConvKey(convKey)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	if s.transcriptCache != nil {
		dirty, err := s.transcriptCache.IsDirty(ctx, convKey)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.transcriptCache.GetTranscript(ctx, convKey); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messages.ListByConvKey(convKey)
	if err != nil {
		return nil, err
	}
	if s.transcriptCache != nil {
		if dirty, dirtyErr := s.transcriptCache.IsDirty(ctx, convKey); dirtyErr == nil && !dirty {
			_ = s.transcriptCache.SetTranscript(ctx, convKey, messages)
		}
	}
	return messages, nil
}

// MarkRead inserts receipts for every message the user has not read yet and
// returns how many were marked.
func (s *MessageService) MarkRead(convKey, userName string) (int64, error) {
	convKey = strings.TrimSpace(convKey)
	userName = strings.TrimSpace(userName)
	if convKey == "" || userName == "" {
		return 0, ErrInvalidInput
	}
	return s.reads.MarkConversationRead(convKey, userName, time.Now())
}

func (s *MessageService) ListReads(convKey string) ([]model.ReadReceipt, error) {
	convKey = strings.TrimSpace(convKey)
	if convKey == "" {
		return nil, ErrInvalidInput
	}
	return s.reads.ListByConvKey(convKey)
}
