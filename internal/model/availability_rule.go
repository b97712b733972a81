package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleType distinguishes recurring weekly rules from one-off exceptions.
type RuleType string

const (
	RuleTypeWeekly    RuleType = "weekly"
	RuleTypeException RuleType = "exception"
)

// AvailabilityRule declares when a studio is open for booking. Weekly rules
// always imply open hours; exception rules override a specific calendar date
// and may either add hours (IsOpen) or remove them.
type AvailabilityRule struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	StudioID  string    `gorm:"index;size:36;not null" json:"studioId"`
	RuleType  RuleType  `gorm:"size:16;not null" json:"ruleType"`
	Weekday   *int      `json:"weekday"`                          // 0 (Sunday) .. 6, weekly rules only
	Date      *string   `gorm:"size:10" json:"date"`              // YYYY-MM-DD, exception rules only
	StartTime string    `gorm:"size:5;not null" json:"startTime"` // HH:MM wall clock
	EndTime   string    `gorm:"size:5;not null" json:"endTime"`
	IsOpen    bool      `gorm:"not null;default:true" json:"isOpen"`
	CreatedBy string    `gorm:"size:128" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (r *AvailabilityRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
