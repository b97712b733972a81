// Package booking implements the slot booking workflow: requesting slots
// with a time-boxed hold, staff approval and decline, lazy reclamation of
// expired holds, and the dashboard overview counters.
package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
)

// Notifier delivers best-effort visitor and staff notifications. All
// implementations must be fire-and-forget: failures are logged by the
// notifier and never propagate into the booking workflow.
type Notifier interface {
	BookingRequested(bookings []model.Booking)
	BookingDecision(booking model.Booking, status model.BookingStatus, reason string)
}

// noopNotifier is used when no notification channel is configured.
type noopNotifier struct{}

func (noopNotifier) BookingRequested([]model.Booking)                           {}
func (noopNotifier) BookingDecision(model.Booking, model.BookingStatus, string) {}

// Engine runs the booking state machine on top of the store. Contention for
// a slot is resolved optimistically: any number of pending requests may
// coexist, and exactly one wins at approval time.
type Engine struct {
	store        store.Store
	notifier     Notifier
	holdDuration time.Duration
	loc          *time.Location

	// now is the injectable clock used for hold expiry math and day/week
	// bucketing.
	now func() time.Time
}

// NewEngine creates a booking engine. A nil notifier disables notifications.
func NewEngine(s store.Store, notifier Notifier, holdDuration time.Duration, loc *time.Location) *Engine {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Engine{
		store:        s,
		notifier:     notifier,
		holdDuration: holdDuration,
		loc:          loc,
		now:          time.Now,
	}
}

// RequestInput carries a visitor's booking request for one or more slots.
type RequestInput struct {
	SlotIDs      []string
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Notes        string
}

// RequestResult is the outcome of a successful booking request.
type RequestResult struct {
	Bookings      []model.Booking
	HoldExpiresAt time.Time
}

// RequestBookings places a pending booking with a hold on every requested
// slot. Slots are processed sequentially in the caller-supplied order; if
// any slot fails validation, everything created so far in this call is
// compensated (bookings deleted, slots reverted) before the error is
// returned, so no partial state survives.
func (e *Engine) RequestBookings(ctx context.Context, in RequestInput) (*RequestResult, error) {
	slotIDs := dedupe(in.SlotIDs)
	if len(slotIDs) == 0 {
		return nil, fmt.Errorf("%w: select at least one slot", store.ErrInvalid)
	}

	// Reclaim lapsed holds first so an expired hold never blocks a new
	// requester.
	if err := e.ReleaseExpiredHolds(ctx); err != nil {
		return nil, err
	}

	slots, err := e.store.GetSlotsByIDs(ctx, slotIDs)
	if err != nil {
		return nil, err
	}
	if len(slots) != len(slotIDs) {
		return nil, fmt.Errorf("%w: one or more selected slots no longer exist", store.ErrNotFound)
	}
	byID := make(map[string]model.Slot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}

	now := e.now()
	holdExpiresAt := now.Add(e.holdDuration)

	type processedPair struct {
		slotID    string
		bookingID string
	}
	var processed []processedPair

	rollback := func() {
		if len(processed) == 0 {
			return
		}
		bookingIDs := make([]string, len(processed))
		for i, p := range processed {
			bookingIDs[i] = p.bookingID
		}
		if err := e.store.DeleteBookings(ctx, bookingIDs); err != nil {
			log.Printf("rollback: failed to delete bookings %v: %v", bookingIDs, err)
		}
		for _, p := range processed {
			if err := e.store.UpdateSlotStatus(ctx, p.slotID, model.SlotAvailable, nil); err != nil {
				log.Printf("rollback: failed to revert slot %s: %v", p.slotID, err)
			}
		}
	}

	for _, id := range slotIDs {
		slot := byID[id]

		if slot.Status != model.SlotAvailable && slot.Status != model.SlotRequested {
			rollback()
			return nil, fmt.Errorf("%w: some slots are no longer bookable", store.ErrConflict)
		}
		if slot.Status == model.SlotRequested && !slot.HoldExpired(now) {
			rollback()
			return nil, fmt.Errorf("%w: some slots are currently on hold while pending approval", store.ErrConflict)
		}

		if err := e.store.UpdateSlotStatus(ctx, slot.ID, model.SlotRequested, &holdExpiresAt); err != nil {
			rollback()
			return nil, err
		}

		booking := model.Booking{
			SlotID:       slot.ID,
			VisitorName:  in.VisitorName,
			VisitorEmail: in.VisitorEmail,
			VisitorPhone: in.VisitorPhone,
			Notes:        in.Notes,
			Status:       model.BookingPending,
		}
		if err := e.store.CreateBooking(ctx, &booking); err != nil {
			// The slot was already flipped to requested; revert it too.
			processed = append(processed, processedPair{slotID: slot.ID, bookingID: booking.ID})
			rollback()
			return nil, err
		}
		processed = append(processed, processedPair{slotID: slot.ID, bookingID: booking.ID})
	}

	bookingIDs := make([]string, len(processed))
	for i, p := range processed {
		bookingIDs[i] = p.bookingID
	}
	bookings, err := e.store.BookingsByIDs(ctx, bookingIDs)
	if err != nil {
		rollback()
		return nil, err
	}

	e.notifier.BookingRequested(bookings)

	return &RequestResult{
		Bookings:      bookings,
		HoldExpiresAt: holdExpiresAt,
	}, nil
}

// ApproveBooking confirms a pending booking: its slot becomes approved,
// every competing pending booking on the slot is declined, and every other
// slot of the studio overlapping the window is blocked.
func (e *Engine) ApproveBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	slot := booking.Slot
	if slot == nil {
		return nil, fmt.Errorf("%w: slot data missing for booking %s", store.ErrNotFound, bookingID)
	}

	if err := e.store.UpdateSlotStatus(ctx, slot.ID, model.SlotApproved, nil); err != nil {
		return nil, err
	}

	declined, err := e.store.DeclinePendingForSlot(ctx, slot.ID, booking.ID)
	if err != nil {
		return nil, err
	}
	if declined > 0 {
		log.Printf("approve %s: declined %d competing bookings on slot %s", bookingID, declined, slot.ID)
	}

	blocked, err := e.store.BlockOverlappingSlots(ctx, slot.StudioID, slot.StartAt, slot.EndAt, slot.ID)
	if err != nil {
		return nil, err
	}
	if blocked > 0 {
		log.Printf("approve %s: blocked %d overlapping slots in studio %s", bookingID, blocked, slot.StudioID)
	}

	if err := e.store.UpdateBookingStatus(ctx, booking.ID, model.BookingApproved); err != nil {
		return nil, err
	}

	updated, err := e.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	e.notifier.BookingDecision(*updated, model.BookingApproved, "")
	return updated, nil
}

// DeclineBooking rejects a booking. Its slot reverts to available unless
// another booking on the slot was already approved.
func (e *Engine) DeclineBooking(ctx context.Context, bookingID, reason string) (*model.Booking, error) {
	booking, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	slot := booking.Slot
	if slot == nil {
		return nil, fmt.Errorf("%w: slot data missing for booking %s", store.ErrNotFound, bookingID)
	}

	if err := e.store.UpdateBookingStatus(ctx, booking.ID, model.BookingDeclined); err != nil {
		return nil, err
	}

	siblings, err := e.store.BookingsBySlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	hasApproved := false
	for _, b := range siblings {
		if b.ID != booking.ID && b.Status == model.BookingApproved {
			hasApproved = true
			break
		}
	}
	if !hasApproved {
		if err := e.store.UpdateSlotStatus(ctx, slot.ID, model.SlotAvailable, nil); err != nil {
			return nil, err
		}
	}

	updated, err := e.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	e.notifier.BookingDecision(*updated, model.BookingDeclined, reason)
	return updated, nil
}

// ReleaseExpiredHolds resets every requested slot whose hold has lapsed.
// Safe to call concurrently and repeatedly; callers invoke it at the head of
// every path that reads or mutates availability.
func (e *Engine) ReleaseExpiredHolds(ctx context.Context) error {
	released, err := e.store.ReleaseExpiredHolds(ctx, e.now())
	if err != nil {
		return err
	}
	if released > 0 {
		log.Printf("released %d expired holds", released)
	}
	return nil
}

// ListPendingRequests returns pending bookings for staff review, reclaiming
// expired holds first so the view reflects current availability.
func (e *Engine) ListPendingRequests(ctx context.Context, studioID string) ([]model.Booking, error) {
	if err := e.ReleaseExpiredHolds(ctx); err != nil {
		return nil, err
	}
	return e.store.PendingBookings(ctx, studioID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
