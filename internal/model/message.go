package model

import "time"

// Message is immutable once written; the auto-increment ID is the
// per-conversation delivery cursor.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ConvKey    string    `gorm:"size:16;not null;index" json:"conv_key"`
	SenderName string    `gorm:"size:64;not null" json:"sender_name"`
	SenderRole string    `gorm:"size:16;not null" json:"sender_role"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Attachment string    `gorm:"size:512" json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
