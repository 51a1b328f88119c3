package app

import (
	"errors"
	"strings"
	"time"

	"mockchat/internal/model"
	"mockchat/internal/pkg/convkey"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationEnded    = errors.New("conversation has ended")
	ErrNotParticipant       = errors.New("name does not match a participant")
)

// ConversationStore is the slice of the conversation repository the service
// needs.
type ConversationStore interface {
	Create(conversation *model.Conversation) error
	GetByConvKey(convKey string) (*model.Conversation, error)
	List(activeOnly bool, createdBy string) ([]model.Conversation, error)
	End(convKey string, endTime time.Time) (int64, error)
}

type ConversationService struct {
	conversations ConversationStore
	newKey        func() (string, error)
}

type CreateConversationInput struct {
	TrainerName   string
	AssociateName string
	CreatedBy     string
}

type JoinInput struct {
	ConvKey string
	Name    string
}

// JoinResult tells a keyed-in viewer who they are in the conversation.
type JoinResult struct {
	ConvKey       string    `json:"conv_key"`
	Role          string    `json:"role"`
	TrainerName   string    `json:"trainer_name"`
	AssociateName string    `json:"associate_name"`
	StartTime     time.Time `json:"start_time"`
}

func NewConversationService(conversations ConversationStore) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		newKey:        convkey.New,
	}
}

func (s *ConversationService) Create(input CreateConversationInput) (*model.Conversation, error) {
	trainerName := strings.TrimSpace(input.TrainerName)
	associateName := strings.TrimSpace(input.AssociateName)
	if trainerName == "" || associateName == "" {
		return nil, ErrInvalidInput
	}

	key, err := s.newKey()
	if err != nil {
		return nil, err
	}

	conversation := &model.Conversation{
		ConvKey:       key,
		TrainerName:   trainerName,
		AssociateName: associateName,
		CreatedBy:     strings.TrimSpace(input.CreatedBy),
		StartTime:     time.Now(),
	}
	if err := s.conversations.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ConversationService) Get(convKey string) (*model.Conversation, error) {
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
	return conversation, nil
}

// List returns active conversations by default; state "all" includes ended
// ones. createdBy narrows to a single owner when non-empty.
func (s *ConversationService) List(state, createdBy string) ([]model.Conversation, error) {
	activeOnly := state != "all"
	return s.conversations.List(activeOnly, strings.TrimSpace(createdBy))
}

func (s *ConversationService) End(convKey string) error {
	convKey = strings.TrimSpace(convKey)
	if convKey == "" {
		return ErrInvalidInput
	}

	updated, err := s.conversations.End(convKey, time.Now())
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Join resolves a viewer's role from the conversation key alone. With a name
// given it must match the trainer or associate (case-insensitive); without
// one the caller joins as the agent side.
func (s *ConversationService) Join(input JoinInput) (*JoinResult, error) {
	convKey := strings.TrimSpace(input.ConvKey)
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
	if conversation.Ended {
		return nil, ErrConversationEnded
	}

	result := &JoinResult{
		ConvKey:       conversation.ConvKey,
		TrainerName:   conversation.TrainerName,
		AssociateName: conversation.AssociateName,
		StartTime:     conversation.StartTime,
	}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		result.Role = model.RoleAgent
	case strings.EqualFold(name, conversation.TrainerName):
		result.Role = model.RoleTrainer
	case strings.EqualFold(name, conversation.AssociateName):
		result.Role = model.RoleAssociate
	default:
		return nil, ErrNotParticipant
	}
	return result, nil
}
