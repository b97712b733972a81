package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studio-booking-backend/internal/model"
)

func (s *gormStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if err := s.db.WithContext(ctx).Omit("Slot").Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (s *gormStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := s.db.WithContext(ctx).Preload("Slot").First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func (s *gormStore) BookingsBySlot(ctx context.Context, slotID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("slot_id = ?", slotID).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings for slot: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) BookingsByIDs(ctx context.Context, ids []string) ([]model.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Preload("Slot").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}

// PendingBookings lists pending bookings oldest-first with slot detail.
// An empty studioID means all studios.
func (s *gormStore) PendingBookings(ctx context.Context, studioID string) ([]model.Booking, error) {
	q := s.db.WithContext(ctx).
		Preload("Slot").
		Where("bookings.status = ?", model.BookingPending)
	if studioID != "" {
		q = q.Joins("JOIN slots ON slots.id = bookings.slot_id").
			Where("slots.studio_id = ?", studioID)
	}
	var bookings []model.Booking
	if err := q.Order("bookings.created_at ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Booking{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return nil
}

// DeclinePendingForSlot declines every pending booking on the slot except
// the one that won the approval.
func (s *gormStore) DeclinePendingForSlot(ctx context.Context, slotID, excludeBookingID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("slot_id = ? AND status = ? AND id <> ?", slotID, model.BookingPending, excludeBookingID).
		Update("status", model.BookingDeclined)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to decline competing bookings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteBookings removes booking rows. Used only as rollback compensation
// for a partially failed multi-slot request.
func (s *gormStore) DeleteBookings(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&model.Booking{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("failed to delete bookings: %w", err)
	}
	return nil
}

func (s *gormStore) CountPendingBookings(ctx context.Context, studioID string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("bookings.status = ?", model.BookingPending)
	if studioID != "" {
		q = q.Joins("JOIN slots ON slots.id = bookings.slot_id").
			Where("slots.studio_id = ?", studioID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending bookings: %w", err)
	}
	return count, nil
}

// CountApprovedInRange counts approved bookings whose slot starts within
// [start, end).
func (s *gormStore) CountApprovedInRange(ctx context.Context, studioID string, start, end time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Booking{}).
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where("bookings.status = ? AND slots.start_at >= ? AND slots.start_at < ?", model.BookingApproved, start, end)
	if studioID != "" {
		q = q.Where("slots.studio_id = ?", studioID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count approved bookings: %w", err)
	}
	return count, nil
}
