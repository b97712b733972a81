package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studio-booking-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Studios
	ListStudios(ctx context.Context) ([]model.Studio, error)
	CreateStudio(ctx context.Context, studio *model.Studio) error
	UpdateStudio(ctx context.Context, studio *model.Studio) error
	DeleteStudio(ctx context.Context, id string) error
	DefaultStudio(ctx context.Context) (*model.Studio, error)

	// Availability rules
	ListRules(ctx context.Context, studioID string) ([]model.AvailabilityRule, error)
	CreateRule(ctx context.Context, rule *model.AvailabilityRule) error
	DeleteRule(ctx context.Context, id string) error

	// Slots
	SlotsInRange(ctx context.Context, studioID string, start, end time.Time) ([]model.Slot, error)
	GetSlotsByIDs(ctx context.Context, ids []string) ([]model.Slot, error)
	CreateSlots(ctx context.Context, slots []model.Slot) (int64, error)
	CreateSlot(ctx context.Context, slot *model.Slot) error
	UpdateSlotStatus(ctx context.Context, id string, status model.SlotStatus, holdExpiresAt *time.Time) error
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error)
	BlockOverlappingSlots(ctx context.Context, studioID string, start, end time.Time, excludeSlotID string) (int64, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	BookingsBySlot(ctx context.Context, slotID string) ([]model.Booking, error)
	BookingsByIDs(ctx context.Context, ids []string) ([]model.Booking, error)
	PendingBookings(ctx context.Context, studioID string) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
	DeclinePendingForSlot(ctx context.Context, slotID, excludeBookingID string) (int64, error)
	DeleteBookings(ctx context.Context, ids []string) error

	// Overview counters
	CountPendingBookings(ctx context.Context, studioID string) (int64, error)
	CountApprovedInRange(ctx context.Context, studioID string, start, end time.Time) (int64, error)

	// Staff push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error

	// DB exposes the underlying handle for migrations and notification
	// delivery bookkeeping.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
