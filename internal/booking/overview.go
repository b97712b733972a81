package booking

import (
	"context"

	"studio-booking-backend/internal/timeutil"
)

// OverviewStats are the dashboard counters: pending requests, approved
// bookings today and approved bookings this week, bucketed in the
// configured studio timezone.
type OverviewStats struct {
	Pending  int64 `json:"pending"`
	Today    int64 `json:"today"`
	ThisWeek int64 `json:"thisWeek"`
}

// Overview derives the staff dashboard counters. An empty studioID covers
// all studios. Read-only; no reclamation side effects.
func (e *Engine) Overview(ctx context.Context, studioID string) (*OverviewStats, error) {
	pending, err := e.store.CountPendingBookings(ctx, studioID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	dayStart := timeutil.StartOfDay(now, e.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	today, err := e.store.CountApprovedInRange(ctx, studioID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	weekStart := timeutil.StartOfWeek(now, e.loc)
	weekEnd := weekStart.AddDate(0, 0, 7)
	thisWeek, err := e.store.CountApprovedInRange(ctx, studioID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	return &OverviewStats{
		Pending:  pending,
		Today:    today,
		ThisWeek: thisWeek,
	}, nil
}
