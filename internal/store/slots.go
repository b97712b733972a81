package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"studio-booking-backend/internal/model"
)

func (s *gormStore) SlotsInRange(ctx context.Context, studioID string, start, end time.Time) ([]model.Slot, error) {
	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Where("studio_id = ? AND start_at >= ? AND end_at < ?", studioID, start, end).
		Order("start_at ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	return slots, nil
}

func (s *gormStore) GetSlotsByIDs(ctx context.Context, ids []string) ([]model.Slot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("start_at ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots by id: %w", err)
	}
	return slots, nil
}

// CreateSlots bulk-inserts materialized slots. Conflicts on the
// (studio_id, start_at, end_at) uniqueness constraint are silently skipped,
// so concurrent materialization of overlapping ranges never errors and never
// double-inserts. Returns the number of rows actually written; skipped input
// entries carry IDs and statuses that exist nowhere in the database, so
// callers must re-read the windows they care about instead of trusting the
// input slice.
func (s *gormStore) CreateSlots(ctx context.Context, slots []model.Slot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "studio_id"}, {Name: "start_at"}, {Name: "end_at"}},
		DoNothing: true,
	}).Create(&slots)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert slots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CreateSlot inserts a single manually created slot. A window that already
// exists for the studio is a conflict surfaced to the caller, unlike the
// bulk materializer path.
func (s *gormStore) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if !slot.StartAt.Before(slot.EndAt) {
		return fmt.Errorf("%w: slot start must be before end", ErrInvalid)
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "studio_id"}, {Name: "start_at"}, {Name: "end_at"}},
		DoNothing: true,
	}).Create(slot)
	if res.Error != nil {
		return fmt.Errorf("failed to create slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: a slot for this window already exists", ErrConflict)
	}
	return nil
}

func (s *gormStore) UpdateSlotStatus(ctx context.Context, id string, status model.SlotStatus, holdExpiresAt *time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Slot{}).Where("id = ?", id).Updates(map[string]any{
		"status":          status,
		"hold_expires_at": holdExpiresAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update slot status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: slot %s", ErrNotFound, id)
	}
	return nil
}

// ReleaseExpiredHolds resets every requested slot whose hold lapsed before
// now back to available. The predicate makes the sweep idempotent: however
// many callers race here, each expired hold flips exactly once.
func (s *gormStore) ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Slot{}).
		Where("status = ? AND hold_expires_at < ?", model.SlotRequested, now).
		Updates(map[string]any{
			"status":          model.SlotAvailable,
			"hold_expires_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to release expired holds: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// BlockOverlappingSlots marks every other slot of the studio whose window
// intersects [start, end) as blocked, regardless of its prior status: the
// studio is physically occupied for that time.
func (s *gormStore) BlockOverlappingSlots(ctx context.Context, studioID string, start, end time.Time, excludeSlotID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Slot{}).
		Where("studio_id = ? AND start_at < ? AND end_at > ? AND id <> ?", studioID, end, start, excludeSlotID).
		Updates(map[string]any{
			"status":          model.SlotBlocked,
			"hold_expires_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to block overlapping slots: %w", res.Error)
	}
	return res.RowsAffected, nil
}
