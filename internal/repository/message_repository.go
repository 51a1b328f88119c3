package repository

import (
	"fmt"

	"gorm.io/gorm"

	"mockchat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByConvKey returns the full transcript, id ascending.
func (r *MessageRepository) ListByConvKey(convKey string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("conv_key = ?", convKey).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// ListAfterID returns messages with id strictly greater than afterID,
// id ascending. This is the delivery-session delta query.
func (r *MessageRepository) ListAfterID(convKey string, afterID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("conv_key = ? AND id > ?", convKey, afterID).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages after id failed: %w", err)
	}
	return messages, nil
}
