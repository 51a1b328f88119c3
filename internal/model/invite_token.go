package model

import "time"

// InviteToken is a one-time set-password token issued when an admin
// invites a user. Replaced on re-invite, deleted once redeemed.
type InviteToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	Token     string    `gorm:"size:64;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
