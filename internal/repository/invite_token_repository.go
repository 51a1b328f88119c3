package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mockchat/internal/model"
)

type InviteTokenRepository struct {
	db *gorm.DB
}

func NewInviteTokenRepository(db *gorm.DB) *InviteTokenRepository {
	return &InviteTokenRepository{db: db}
}

// Upsert stores the invite token for the email, replacing any previous one.
func (r *InviteTokenRepository) Upsert(invite *model.InviteToken) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at"}),
	}).Create(invite).Error
	if err != nil {
		return fmt.Errorf("upsert invite token failed: %w", err)
	}
	return nil
}

// GetValid returns the invite matching token with expires_at in the future,
// or nil when absent or expired.
func (r *InviteTokenRepository) GetValid(token string, now time.Time) (*model.InviteToken, error) {
	var invite model.InviteToken
	if err := r.db.Where("token = ? AND expires_at > ?", token, now).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query invite token failed: %w", err)
	}
	return &invite, nil
}

func (r *InviteTokenRepository) DeleteByEmail(email string) error {
	if err := r.db.Where("email = ?", email).Delete(&model.InviteToken{}).Error; err != nil {
		return fmt.Errorf("delete invite token failed: %w", err)
	}
	return nil
}
