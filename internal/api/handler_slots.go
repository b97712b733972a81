package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/model"
)

// slotResponse is the public projection of a bookable slot.
type slotResponse struct {
	ID       string    `json:"id"`
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	StudioID string    `json:"studioId"`
}

func toSlotResponse(s model.Slot) slotResponse {
	return slotResponse{
		ID:       s.ID,
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
		StudioID: s.StudioID,
	}
}

// GetAvailableSlots handles GET /api/slots. It reclaims expired holds,
// materializes the requested range (defaulting to now → now+horizon) and
// returns the slots a visitor can request.
func (h *Handler) GetAvailableSlots(c *gin.Context) {
	ctx := c.Request.Context()

	studioID, ok := h.resolveStudio(c)
	if !ok {
		return
	}

	now := time.Now()
	start := now
	end := now.Add(h.horizon)
	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339."})
			return
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339."})
			return
		}
		end = parsed
	}
	if !start.Before(end) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "'start' must be before 'end'"})
		return
	}

	if err := h.engine.ReleaseExpiredHolds(ctx); err != nil {
		abortWithError(c, err)
		return
	}

	slots, err := h.materializer.MaterializeRange(ctx, studioID, start, end)
	if err != nil {
		abortWithError(c, err)
		return
	}

	available := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		if slot.Status != model.SlotAvailable {
			continue
		}
		available = append(available, toSlotResponse(slot))
	}

	c.JSON(http.StatusOK, gin.H{"slots": available, "studioId": studioID})
}

type manualSlotRequest struct {
	StudioID        string    `json:"studioId" binding:"required,uuid"`
	StartAt         time.Time `json:"startAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=1,max=1440"`
}

// PostManualSlot handles POST /api/admin/slots.
func (h *Handler) PostManualSlot(c *gin.Context) {
	var req manualSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.materializer.CreateManualSlot(c.Request.Context(), req.StudioID, req.StartAt, req.DurationMinutes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slot": slot})
}
