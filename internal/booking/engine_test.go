package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
)

// recordingNotifier captures notification calls for assertions.
type recordingNotifier struct {
	requested [][]model.Booking
	decisions []model.BookingStatus
}

func (n *recordingNotifier) BookingRequested(bookings []model.Booking) {
	n.requested = append(n.requested, bookings)
}

func (n *recordingNotifier) BookingDecision(_ model.Booking, status model.BookingStatus, _ string) {
	n.decisions = append(n.decisions, status)
}

func newTestEngine(t *testing.T) (store.Store, *Engine, *recordingNotifier) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(testDB))

	s := store.NewGormStore(testDB)
	notifier := &recordingNotifier{}
	engine := NewEngine(s, notifier, 2*time.Hour, time.UTC)
	return s, engine, notifier
}

func createStudio(t *testing.T, s store.Store, slug string) *model.Studio {
	t.Helper()
	studio := &model.Studio{Name: "Studio " + slug, Slug: slug}
	require.NoError(t, s.CreateStudio(context.Background(), studio))
	return studio
}

func createSlot(t *testing.T, s store.Store, studioID string, start time.Time) *model.Slot {
	t.Helper()
	slot := &model.Slot{
		StudioID:   studioID,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     model.SlotAvailable,
		CreatedVia: model.CreatedViaRule,
	}
	require.NoError(t, s.CreateSlot(context.Background(), slot))
	return slot
}

func visitorInput(slotIDs ...string) RequestInput {
	return RequestInput{
		SlotIDs:      slotIDs,
		VisitorName:  "Ada Lovelace",
		VisitorEmail: "ada@example.com",
		VisitorPhone: "+4915112345678",
		Notes:        "Portrait session",
	}
}

func TestRequestBookings_PlacesHold(t *testing.T) {
	ctx := context.Background()
	s, engine, notifier := newTestEngine(t)
	studio := createStudio(t, s, "main")

	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	slot1 := createSlot(t, s, studio.ID, base)
	slot2 := createSlot(t, s, studio.ID, base.Add(time.Hour))

	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	result, err := engine.RequestBookings(ctx, visitorInput(slot1.ID, slot2.ID, slot1.ID))
	require.NoError(t, err)
	require.Len(t, result.Bookings, 2)
	assert.Equal(t, now.Add(2*time.Hour), result.HoldExpiresAt)

	for _, id := range []string{slot1.ID, slot2.ID} {
		slots, err := s.GetSlotsByIDs(ctx, []string{id})
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, model.SlotRequested, slots[0].Status)
		require.NotNil(t, slots[0].HoldExpiresAt)
		assert.WithinDuration(t, now.Add(2*time.Hour), *slots[0].HoldExpiresAt, time.Second)
	}
	for _, b := range result.Bookings {
		assert.Equal(t, model.BookingPending, b.Status)
		assert.NotEmpty(t, b.Token)
	}
	require.Len(t, notifier.requested, 1)
	assert.Len(t, notifier.requested[0], 2)
}

func TestRequestBookings_Validation(t *testing.T) {
	ctx := context.Background()
	_, engine, _ := newTestEngine(t)

	_, err := engine.RequestBookings(ctx, visitorInput())
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = engine.RequestBookings(ctx, visitorInput("2b1e6a1e-0000-0000-0000-000000000000"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRequestBookings_HeldSlotConflicts(t *testing.T) {
	ctx := context.Background()
	s, engine, _ := newTestEngine(t)
	studio := createStudio(t, s, "main")
	slot := createSlot(t, s, studio.ID, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	_, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	// A second visitor hits the active hold.
	_, err = engine.RequestBookings(ctx, visitorInput(slot.ID))
	assert.ErrorIs(t, err, store.ErrConflict)

	pending, err := s.PendingBookings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRequestBookings_ExpiredHoldIsRebookable(t *testing.T) {
	ctx := context.Background()
	s, engine, _ := newTestEngine(t)
	studio := createStudio(t, s, "main")
	slot := createSlot(t, s, studio.ID, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	_, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	// Advance past the hold. The lazy release claims the slot back and the
	// new request succeeds; the first booking stays pending for staff.
	now = now.Add(2*time.Hour + time.Minute)

	result, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)
	require.Len(t, result.Bookings, 1)

	pending, err := s.PendingBookings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRequestBookings_RollsBackOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	s, engine, notifier := newTestEngine(t)
	studio := createStudio(t, s, "main")

	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	slot1 := createSlot(t, s, studio.ID, base)
	slot2 := createSlot(t, s, studio.ID, base.Add(time.Hour))
	require.NoError(t, s.UpdateSlotStatus(ctx, slot2.ID, model.SlotApproved, nil))

	_, err := engine.RequestBookings(ctx, visitorInput(slot1.ID, slot2.ID))
	assert.ErrorIs(t, err, store.ErrConflict)

	// The first slot was already flipped and must come back.
	slots, err := s.GetSlotsByIDs(ctx, []string{slot1.ID})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, model.SlotAvailable, slots[0].Status)
	assert.Nil(t, slots[0].HoldExpiresAt)

	pending, err := s.PendingBookings(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, notifier.requested)
}

func TestApproveBooking(t *testing.T) {
	ctx := context.Background()
	s, engine, notifier := newTestEngine(t)
	studio := createStudio(t, s, "main")
	other := createStudio(t, s, "annex")

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	slot := createSlot(t, s, studio.ID, start)

	// A second slot overlapping the window (created manually with a longer
	// span) and one in another studio at the same time.
	overlapping := &model.Slot{
		StudioID:   studio.ID,
		StartAt:    start.Add(30 * time.Minute),
		EndAt:      start.Add(90 * time.Minute),
		Status:     model.SlotAvailable,
		CreatedVia: model.CreatedViaManual,
	}
	require.NoError(t, s.CreateSlot(ctx, overlapping))
	elsewhere := createSlot(t, s, other.ID, start)

	engine.now = func() time.Time { return start.Add(-24 * time.Hour) }
	first, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	// A competitor requests the same slot after the hold lapses.
	engine.now = func() time.Time { return start.Add(-21 * time.Hour) }
	second, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	winner := second.Bookings[0]
	approved, err := engine.ApproveBooking(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, approved.Status)
	require.NotNil(t, approved.Slot)
	assert.Equal(t, model.SlotApproved, approved.Slot.Status)

	// The competing pending booking was force-declined.
	loser, err := s.GetBooking(ctx, first.Bookings[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingDeclined, loser.Status)

	// Overlap within the studio is blocked; the other studio is untouched.
	slots, err := s.GetSlotsByIDs(ctx, []string{overlapping.ID, elsewhere.ID})
	require.NoError(t, err)
	byID := map[string]model.Slot{}
	for _, sl := range slots {
		byID[sl.ID] = sl
	}
	assert.Equal(t, model.SlotBlocked, byID[overlapping.ID].Status)
	assert.Equal(t, model.SlotAvailable, byID[elsewhere.ID].Status)

	assert.Contains(t, notifier.decisions, model.BookingApproved)
}

func TestDeclineBooking_RevertsSlot(t *testing.T) {
	ctx := context.Background()
	s, engine, notifier := newTestEngine(t)
	studio := createStudio(t, s, "main")
	slot := createSlot(t, s, studio.ID, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	engine.now = func() time.Time { return time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC) }
	result, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	declined, err := engine.DeclineBooking(ctx, result.Bookings[0].ID, "double booked")
	require.NoError(t, err)
	assert.Equal(t, model.BookingDeclined, declined.Status)

	slots, err := s.GetSlotsByIDs(ctx, []string{slot.ID})
	require.NoError(t, err)
	assert.Equal(t, model.SlotAvailable, slots[0].Status)
	assert.Nil(t, slots[0].HoldExpiresAt)

	assert.Contains(t, notifier.decisions, model.BookingDeclined)
}

func TestDeclineBooking_KeepsApprovedSlot(t *testing.T) {
	ctx := context.Background()
	s, engine, _ := newTestEngine(t)
	studio := createStudio(t, s, "main")
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	slot := createSlot(t, s, studio.ID, start)

	engine.now = func() time.Time { return start.Add(-24 * time.Hour) }
	first, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	engine.now = func() time.Time { return start.Add(-21 * time.Hour) }
	second, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	_, err = engine.ApproveBooking(ctx, first.Bookings[0].ID)
	require.NoError(t, err)

	// The approve already declined the sibling; declining it again must not
	// free the approved slot.
	_, err = engine.DeclineBooking(ctx, second.Bookings[0].ID, "")
	require.NoError(t, err)

	slots, err := s.GetSlotsByIDs(ctx, []string{slot.ID})
	require.NoError(t, err)
	assert.Equal(t, model.SlotApproved, slots[0].Status)
}

func TestListPendingRequests_ReclaimsHolds(t *testing.T) {
	ctx := context.Background()
	s, engine, _ := newTestEngine(t)
	studio := createStudio(t, s, "main")
	slot := createSlot(t, s, studio.ID, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	_, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)
	pending, err := engine.ListPendingRequests(ctx, studio.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	slots, err := s.GetSlotsByIDs(ctx, []string{slot.ID})
	require.NoError(t, err)
	assert.Equal(t, model.SlotAvailable, slots[0].Status)
	assert.Nil(t, slots[0].HoldExpiresAt)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	s, engine, _ := newTestEngine(t)
	studio := createStudio(t, s, "main")

	// Wednesday noon is "now"; one approved slot today, one later in the
	// same ISO week, one the following week.
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	today := createSlot(t, s, studio.ID, now.Add(3*time.Hour))
	sameWeek := createSlot(t, s, studio.ID, now.AddDate(0, 0, 2))
	nextWeek := createSlot(t, s, studio.ID, now.AddDate(0, 0, 7))

	for _, slot := range []*model.Slot{today, sameWeek, nextWeek} {
		result, err := engine.RequestBookings(ctx, visitorInput(slot.ID))
		require.NoError(t, err)
		_, err = engine.ApproveBooking(ctx, result.Bookings[0].ID)
		require.NoError(t, err)
	}

	// One still-pending request on a fresh slot.
	pendingSlot := createSlot(t, s, studio.ID, now.Add(5*time.Hour))
	_, err := engine.RequestBookings(ctx, visitorInput(pendingSlot.ID))
	require.NoError(t, err)

	stats, err := engine.Overview(ctx, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Today)
	assert.Equal(t, int64(2), stats.ThisWeek)
}
