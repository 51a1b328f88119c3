package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mockchat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByConvKey(convKey string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("conv_key = ?", convKey).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query conversation failed: %w", err)
	}
	return &conversation, nil
}

// List returns conversations newest first. activeOnly restricts to not-ended
// rows, createdBy (when non-empty) restricts to one owner.
func (r *ConversationRepository) List(activeOnly bool, createdBy string) ([]model.Conversation, error) {
	query := r.db.Order("start_time DESC")
	if activeOnly {
		query = query.Where("ended = ?", false)
	}
	if createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}

	var conversations []model.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}

// End marks the conversation ended and stamps end_time. Returns the number
// of rows updated so callers can distinguish a missing key.
func (r *ConversationRepository) End(convKey string, endTime time.Time) (int64, error) {
	result := r.db.Model(&model.Conversation{}).
		Where("conv_key = ?", convKey).
		Updates(map[string]interface{}{"ended": true, "end_time": endTime})
	if result.Error != nil {
		return 0, fmt.Errorf("end conversation failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ReportRow is one aggregated line of the activity report.
type ReportRow struct {
	TrainerName     string     `json:"trainer_name"`
	AssociateName   string     `json:"associate_name"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	MessageCount    int64      `json:"message_count"`
}

// Report aggregates conversations started within [from, to] with their
// message counts. trainerName == "" means no owner restriction (admin view).
func (r *ConversationRepository) Report(from, to time.Time, trainerName string) ([]ReportRow, error) {
	query := r.db.Model(&model.Conversation{}).
		Select(`conversations.trainer_name,
			conversations.associate_name,
			conversations.start_time,
			conversations.end_time,
			TIMESTAMPDIFF(SECOND, conversations.start_time, COALESCE(conversations.end_time, NOW())) AS duration_seconds,
			COUNT(messages.id) AS message_count`).
		Joins("LEFT JOIN messages ON messages.conv_key = conversations.conv_key").
		Where("conversations.start_time BETWEEN ? AND ?", from, to).
		Group("conversations.id").
		Order("conversations.start_time DESC")
	if trainerName != "" {
		query = query.Where("conversations.trainer_name = ?", trainerName)
	}

	var rows []ReportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report query failed: %w", err)
	}
	return rows, nil
}
