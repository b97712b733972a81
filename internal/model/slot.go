package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotStatus is the lifecycle state of a bookable time window.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotRequested SlotStatus = "requested"
	SlotApproved  SlotStatus = "approved"
	SlotBlocked   SlotStatus = "blocked"
)

// Slot origin markers.
const (
	CreatedViaRule   = "rule"
	CreatedViaManual = "manual"
)

// Slot is a concrete bookable time window materialized from availability
// rules (or created manually by staff). The composite unique index keeps
// concurrent materialization from inserting the same window twice.
type Slot struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	StudioID      string     `gorm:"size:36;not null;uniqueIndex:idx_slot_window" json:"studioId"`
	StartAt       time.Time  `gorm:"not null;uniqueIndex:idx_slot_window" json:"startAt"`
	EndAt         time.Time  `gorm:"not null;uniqueIndex:idx_slot_window" json:"endAt"`
	Status        SlotStatus `gorm:"size:16;not null;index" json:"status"`
	HoldExpiresAt *time.Time `json:"holdExpiresAt"` // non-nil iff Status == requested
	CreatedVia    string     `gorm:"size:16;not null" json:"createdVia"`
	CreatedAt     time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// HoldExpired reports whether the slot carries a hold that has already
// lapsed. Such a slot is logically reclaimable and must not block a new
// request.
func (s *Slot) HoldExpired(now time.Time) bool {
	return s.Status == SlotRequested && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
}

// Overlaps reports whether the slot's window intersects [start, end).
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && s.EndAt.After(start)
}
