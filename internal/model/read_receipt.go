package model

import "time"

// ReadReceipt marks a message as read by a viewer. One row per
// (message, viewer); marking again is a no-op.
type ReadReceipt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_message_user" json:"message_id"`
	UserName  string    `gorm:"size:64;not null;uniqueIndex:idx_message_user" json:"user_name"`
	ReadAt    time.Time `json:"read_at"`
}
