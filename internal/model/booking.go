package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state of a visitor booking request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingDeclined BookingStatus = "declined"
	// BookingCanceled is reserved for a manual cancellation path; no flow
	// in this service transitions a booking to it.
	BookingCanceled BookingStatus = "canceled"
)

// Booking is a visitor's request for one slot. Several pending bookings may
// reference the same slot; at most one of them ever reaches approved. The
// slot reference is weak: the slot may be deleted independently, in which
// case Slot stays nil in projections.
type Booking struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	SlotID       string        `gorm:"index;size:36;not null" json:"slotId"`
	VisitorName  string        `gorm:"size:120;not null" json:"visitorName"`
	VisitorEmail string        `gorm:"size:254;not null" json:"visitorEmail"`
	VisitorPhone string        `gorm:"size:32;not null" json:"visitorPhone"`
	Notes        string        `gorm:"size:500" json:"notes"`
	Status       BookingStatus `gorm:"size:16;not null;index" json:"status"`
	Token        string        `gorm:"size:36;not null" json:"token"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	Slot *Slot `json:"slot,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Token == "" {
		b.Token = uuid.NewString()
	}
	return nil
}

// IsDecided reports whether staff already resolved this booking.
func (b *Booking) IsDecided() bool {
	return b.Status == BookingApproved || b.Status == BookingDeclined
}
