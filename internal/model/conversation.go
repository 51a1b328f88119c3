package model

import "time"

type Conversation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ConvKey       string     `gorm:"size:16;not null;uniqueIndex" json:"conv_key"`
	TrainerName   string     `gorm:"size:64;not null" json:"trainer_name"`
	AssociateName string     `gorm:"size:64;not null" json:"associate_name"`
	CreatedBy     string     `gorm:"size:64" json:"created_by,omitempty"`
	StartTime     time.Time  `gorm:"not null;index" json:"start_time"`
	Ended         bool       `gorm:"not null;default:false" json:"ended"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}
