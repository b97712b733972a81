// Package availability expands declarative availability rules into concrete
// slot rows. Materialization is idempotent: re-running it over the same
// range with unchanged rules produces no new rows, and concurrent runs are
// resolved by the store's conflict-ignoring insert rather than locking.
package availability

import (
	"context"
	"fmt"
	"log"
	"time"

	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
	"studio-booking-backend/internal/timeutil"
)

// Materializer turns availability rules into bookable slots.
type Materializer struct {
	store        store.Store
	slotDuration time.Duration
	loc          *time.Location
}

// New creates a Materializer with the configured slot duration and studio
// timezone.
func New(s store.Store, slotDuration time.Duration, loc *time.Location) *Materializer {
	return &Materializer{
		store:        s,
		slotDuration: slotDuration,
		loc:          loc,
	}
}

type window struct {
	start time.Time
	end   time.Time
}

type windowKey struct {
	start int64
	end   int64
}

// MaterializeRange expands the studio's rules over every calendar day that
// intersects [start, end), inserts the windows that do not yet exist, and
// returns all slots in range ordered by start time. Without any rules it
// returns whatever slots already exist and synthesizes nothing.
func (m *Materializer) MaterializeRange(ctx context.Context, studioID string, start, end time.Time) ([]model.Slot, error) {
	rules, err := m.store.ListRules(ctx, studioID)
	if err != nil {
		return nil, err
	}

	existing, err := m.store.SlotsInRange(ctx, studioID, start, end)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return existing, nil
	}

	seen := make(map[windowKey]struct{}, len(existing))
	for _, slot := range existing {
		seen[windowKey{slot.StartAt.Unix(), slot.EndAt.Unix()}] = struct{}{}
	}

	var toCreate []model.Slot
	for day := timeutil.StartOfDay(start, m.loc); day.Before(end); day = day.AddDate(0, 0, 1) {
		windows, err := m.windowsForDay(rules, day)
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			key := windowKey{w.start.Unix(), w.end.Unix()}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			toCreate = append(toCreate, model.Slot{
				StudioID:   studioID,
				StartAt:    w.start,
				EndAt:      w.end,
				Status:     model.SlotAvailable,
				CreatedVia: model.CreatedViaRule,
			})
		}
	}

	if len(toCreate) == 0 {
		return existing, nil
	}

	// The insert skips windows that already exist (full-day expansion can
	// regenerate windows outside the dedup range, and concurrent runs race
	// here), so the input slice is not the truth about the table. Re-read
	// the range and return only real rows with their real statuses.
	inserted, err := m.store.CreateSlots(ctx, toCreate)
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		log.Printf("materialized %d new slots for studio %s", inserted, studioID)
	}

	return m.store.SlotsInRange(ctx, studioID, start, end)
}

// windowsForDay computes the bookable windows for a single calendar day:
// the union of matching weekly rules sliced into slot-duration sub-windows,
// minus anything overlapping a closing exception, plus windows from opening
// exceptions for that exact date.
func (m *Materializer) windowsForDay(rules []model.AvailabilityRule, day time.Time) ([]window, error) {
	dayKey := timeutil.DayKey(day, m.loc)
	weekday := int(day.In(m.loc).Weekday())

	var weekly, closing, opening []model.AvailabilityRule
	for _, rule := range rules {
		switch rule.RuleType {
		case model.RuleTypeWeekly:
			if rule.Weekday != nil && *rule.Weekday == weekday {
				weekly = append(weekly, rule)
			}
		case model.RuleTypeException:
			if rule.Date == nil || *rule.Date != dayKey {
				continue
			}
			if rule.IsOpen {
				opening = append(opening, rule)
			} else {
				closing = append(closing, rule)
			}
		}
	}
	if len(weekly) == 0 && len(opening) == 0 {
		return nil, nil
	}

	var windows []window
	for _, rule := range weekly {
		ws, err := m.sliceRule(rule, day)
		if err != nil {
			return nil, err
		}
		windows = append(windows, ws...)
	}

	if len(closing) > 0 {
		kept := windows[:0]
		for _, w := range windows {
			removed := false
			for _, rule := range closing {
				cs, ce, err := m.ruleBounds(rule, day)
				if err != nil {
					return nil, err
				}
				if w.start.Before(ce) && w.end.After(cs) {
					removed = true
					break
				}
			}
			if !removed {
				kept = append(kept, w)
			}
		}
		windows = kept
	}

	for _, rule := range opening {
		ws, err := m.sliceRule(rule, day)
		if err != nil {
			return nil, err
		}
		windows = append(windows, ws...)
	}

	return windows, nil
}

func (m *Materializer) ruleBounds(rule model.AvailabilityRule, day time.Time) (time.Time, time.Time, error) {
	start, err := timeutil.At(day, rule.StartTime, m.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	end, err := timeutil.At(day, rule.EndTime, m.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	return start, end, nil
}

// sliceRule cuts a rule's window on the given day into consecutive
// slot-duration sub-windows, discarding a trailing remainder that would run
// past the rule's end time.
func (m *Materializer) sliceRule(rule model.AvailabilityRule, day time.Time) ([]window, error) {
	start, end, err := m.ruleBounds(rule, day)
	if err != nil {
		return nil, err
	}

	var windows []window
	for cursor := start; cursor.Before(end); {
		next := cursor.Add(m.slotDuration)
		if next.After(end) {
			break
		}
		windows = append(windows, window{start: cursor, end: next})
		cursor = next
	}
	return windows, nil
}

// CreateManualSlot inserts a one-off staff-created slot at the given start
// instant. A zero durationMinutes falls back to the configured slot
// duration.
func (m *Materializer) CreateManualSlot(ctx context.Context, studioID string, start time.Time, durationMinutes int) (*model.Slot, error) {
	duration := m.slotDuration
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	}

	slot := &model.Slot{
		StudioID:   studioID,
		StartAt:    start,
		EndAt:      start.Add(duration),
		Status:     model.SlotAvailable,
		CreatedVia: model.CreatedViaManual,
	}
	if err := m.store.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}
