package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/availability"
	"studio-booking-backend/internal/booking"
	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/mw"
	"studio-booking-backend/internal/store"
)

const testAdminToken = "test-admin-token"

func setupTestRouter(t *testing.T) (store.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(testDB))

	s := store.NewGormStore(testDB)
	materializer := availability.New(s, time.Hour, time.UTC)
	engine := booking.NewEngine(s, nil, 2*time.Hour, time.UTC)

	handler := NewHandler(s, engine, materializer, nil, 30*24*time.Hour)
	router := NewRouter(handler, &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		AdminToken:      testAdminToken,
	})
	return s, router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(mw.AdminTokenHeader, testAdminToken)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedSlot(t *testing.T, s store.Store, start time.Time) (*model.Studio, *model.Slot) {
	t.Helper()
	ctx := context.Background()

	studio := &model.Studio{Name: "Daylight Studio", Slug: "daylight"}
	require.NoError(t, s.CreateStudio(ctx, studio))

	slot := &model.Slot{
		StudioID:   studio.ID,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     model.SlotAvailable,
		CreatedVia: model.CreatedViaRule,
	}
	require.NoError(t, s.CreateSlot(ctx, slot))
	return studio, slot
}

func TestBookingRequestLifecycle(t *testing.T) {
	s, router := setupTestRouter(t)
	start := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	_, slot := seedSlot(t, s, start)

	payload := gin.H{
		"slotIds":      []string{slot.ID},
		"visitorName":  "Ada Lovelace",
		"visitorEmail": "ada@example.com",
		"visitorPhone": "+4915112345678",
		"notes":        "Portrait session",
	}

	w := doJSON(t, router, http.MethodPost, "/api/bookings", payload, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Bookings []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"bookings"`
		HoldExpiresAt time.Time `json:"holdExpiresAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Bookings, 1)
	assert.Equal(t, "pending", created.Bookings[0].Status)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), created.HoldExpiresAt, time.Minute)

	// The slot is on hold now; a second visitor gets a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/bookings", payload, false)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Staff sees the pending request.
	w = doJSON(t, router, http.MethodGet, "/api/admin/requests", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Requests []struct {
			ID string `json:"id"`
		} `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending.Requests, 1)

	// Approve it.
	w = doJSON(t, router, http.MethodPost, "/api/admin/bookings/"+created.Bookings[0].ID+"/approve", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var approved struct {
		Booking struct {
			Status string `json:"status"`
			Slot   *struct {
				ID string `json:"id"`
			} `json:"slot"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, "approved", approved.Booking.Status)

	// The public slot listing no longer offers it.
	w = doJSON(t, router, http.MethodGet, "/api/slots", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Slots []struct {
			ID string `json:"id"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Slots)
}

func TestPostBookingRequest_Validation(t *testing.T) {
	_, router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"slotIds":      []string{},
		"visitorName":  "A",
		"visitorEmail": "not-an-email",
		"visitorPhone": "12",
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPostBookingRequest_UnknownSlot(t *testing.T) {
	_, router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"slotIds":      []string{"8f9f86d5-8904-46db-b9b0-54b4b0a1c2ff"},
		"visitorName":  "Ada Lovelace",
		"visitorEmail": "ada@example.com",
		"visitorPhone": "+4915112345678",
	}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeclineBooking_FreesSlot(t *testing.T) {
	s, router := setupTestRouter(t)
	start := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	_, slot := seedSlot(t, s, start)

	w := doJSON(t, router, http.MethodPost, "/api/bookings", gin.H{
		"slotIds":      []string{slot.ID},
		"visitorName":  "Ada Lovelace",
		"visitorEmail": "ada@example.com",
		"visitorPhone": "+4915112345678",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Bookings []struct {
			ID string `json:"id"`
		} `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodPost, "/api/admin/bookings/"+created.Bookings[0].ID+"/decline", gin.H{"reason": "studio closed"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The slot is available again.
	w = doJSON(t, router, http.MethodGet, "/api/slots", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Slots []struct {
			ID string `json:"id"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Slots, 1)
	assert.Equal(t, slot.ID, listing.Slots[0].ID)
}

func TestAdminAuth(t *testing.T) {
	_, router := setupTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/admin/requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/admin/requests", nil)
	req.Header.Set(mw.AdminTokenHeader, "wrong-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRuleCreateMaterializes(t *testing.T) {
	s, router := setupTestRouter(t)
	ctx := context.Background()

	studio := &model.Studio{Name: "Daylight Studio", Slug: "daylight"}
	require.NoError(t, s.CreateStudio(ctx, studio))

	weekday := int(time.Now().UTC().Weekday())
	w := doJSON(t, router, http.MethodPost, "/api/admin/availability", gin.H{
		"studioId":  studio.ID,
		"ruleType":  "weekly",
		"weekday":   weekday,
		"startTime": "09:00",
		"endTime":   "12:00",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var count int64
	require.NoError(t, s.DB().Model(&model.Slot{}).Count(&count).Error)
	assert.Greater(t, count, int64(0))
}

func TestGetVAPIDPublicKey_Unconfigured(t *testing.T) {
	_, router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
