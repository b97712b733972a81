package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/booking"
	"studio-booking-backend/internal/model"
)

type bookingRequest struct {
	SlotIDs      []string `json:"slotIds" binding:"required,min=1,dive,uuid"`
	VisitorName  string   `json:"visitorName" binding:"required,min=2,max=120"`
	VisitorEmail string   `json:"visitorEmail" binding:"required,email"`
	VisitorPhone string   `json:"visitorPhone" binding:"required,min=5,max=32"`
	Notes        string   `json:"notes" binding:"max=500"`
}

type bookingResponse struct {
	ID           string        `json:"id"`
	SlotID       string        `json:"slotId"`
	VisitorName  string        `json:"visitorName"`
	VisitorEmail string        `json:"visitorEmail"`
	VisitorPhone string        `json:"visitorPhone"`
	Notes        string        `json:"notes,omitempty"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	Slot         *slotResponse `json:"slot,omitempty"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:           b.ID,
		SlotID:       b.SlotID,
		VisitorName:  b.VisitorName,
		VisitorEmail: b.VisitorEmail,
		VisitorPhone: b.VisitorPhone,
		Notes:        b.Notes,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
	}
	if b.Slot != nil {
		s := toSlotResponse(*b.Slot)
		resp.Slot = &s
	}
	return resp
}

// PostBookingRequest handles POST /api/bookings. All requested slots are
// held together; a single unavailable slot fails the whole request.
func (h *Handler) PostBookingRequest(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.RequestBookings(c.Request.Context(), booking.RequestInput{
		SlotIDs:      req.SlotIDs,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	bookings := make([]bookingResponse, 0, len(result.Bookings))
	for _, b := range result.Bookings {
		bookings = append(bookings, toBookingResponse(b))
	}
	c.JSON(http.StatusCreated, gin.H{
		"bookings":      bookings,
		"holdExpiresAt": result.HoldExpiresAt,
	})
}

// GetPendingRequests handles GET /api/admin/requests.
func (h *Handler) GetPendingRequests(c *gin.Context) {
	studioID := c.Query("studioId")

	pending, err := h.engine.ListPendingRequests(c.Request.Context(), studioID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	requests := make([]bookingResponse, 0, len(pending))
	for _, b := range pending {
		requests = append(requests, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// PostApproveBooking handles POST /api/admin/bookings/:id/approve.
func (h *Handler) PostApproveBooking(c *gin.Context) {
	approved, err := h.engine.ApproveBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(*approved)})
}

type declineRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PostDeclineBooking handles POST /api/admin/bookings/:id/decline.
func (h *Handler) PostDeclineBooking(c *gin.Context) {
	var req declineRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	declined, err := h.engine.DeclineBooking(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(*declined)})
}

// GetOverview handles GET /api/admin/overview.
func (h *Handler) GetOverview(c *gin.Context) {
	studioID, ok := h.resolveStudio(c)
	if !ok {
		return
	}

	stats, err := h.engine.Overview(c.Request.Context(), studioID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
