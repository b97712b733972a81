package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/availability"
	"studio-booking-backend/internal/booking"
	"studio-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	engine       *booking.Engine
	materializer *availability.Materializer
	webpush      *webpush.Options
	horizon      time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *booking.Engine, materializer *availability.Materializer, webpushOptions *webpush.Options, horizon time.Duration) *Handler {
	return &Handler{
		store:        s,
		engine:       engine,
		materializer: materializer,
		webpush:      webpushOptions,
		horizon:      horizon,
	}
}

// abortWithError translates store sentinel errors into HTTP statuses:
// invalid input 422, missing rows 404, state conflicts 409, anything else a
// generic repository failure.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "repository failure, retry later"})
	}
}

// resolveStudio returns the studioId query parameter, falling back to the
// default (oldest) studio when absent.
func (h *Handler) resolveStudio(c *gin.Context) (string, bool) {
	if id := c.Query("studioId"); id != "" {
		return id, true
	}
	studio, err := h.store.DefaultStudio(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return "", false
	}
	return studio.ID, true
}
