package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"mockchat/internal/model"
)

type ReadReceiptRepository struct {
	db *gorm.DB
}

func NewReadReceiptRepository(db *gorm.DB) *ReadReceiptRepository {
	return &ReadReceiptRepository{db: db}
}

// MarkConversationRead inserts receipts for every message of the
// conversation the user has not read yet and returns how many were marked.
func (r *ReadReceiptRepository) MarkConversationRead(convKey, userName string, readAt time.Time) (int64, error) {
	result := r.db.Exec(`
		INSERT INTO read_receipts (message_id, user_name, read_at)
		SELECT m.id, ?, ?
		FROM messages m
		LEFT JOIN read_receipts rr ON rr.message_id = m.id AND rr.user_name = ?
		WHERE m.conv_key = ? AND rr.id IS NULL`,
		userName, readAt, userName, convKey)
	if result.Error != nil {
		return 0, fmt.Errorf("mark conversation read failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ReadReceiptRepository) ListByConvKey(convKey string) ([]model.ReadReceipt, error) {
	var receipts []model.ReadReceipt
	err := r.db.
		Joins("JOIN messages ON messages.id = read_receipts.message_id").
		Where("messages.conv_key = ?", convKey).
		Order("read_receipts.message_id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("list read receipts failed: %w", err)
	}
	return receipts, nil
}
