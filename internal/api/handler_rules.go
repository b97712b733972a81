package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/model"
)

// GetRules handles GET /api/admin/availability.
func (h *Handler) GetRules(c *gin.Context) {
	studioID, ok := h.resolveStudio(c)
	if !ok {
		return
	}

	rules, err := h.store.ListRules(c.Request.Context(), studioID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules, "studioId": studioID})
}

type createRuleRequest struct {
	StudioID  string  `json:"studioId" binding:"required,uuid"`
	RuleType  string  `json:"ruleType" binding:"required,oneof=weekly exception"`
	Weekday   *int    `json:"weekday" binding:"omitempty,min=0,max=6"`
	Date      *string `json:"date"`
	StartTime string  `json:"startTime" binding:"required"`
	EndTime   string  `json:"endTime" binding:"required"`
	IsOpen    *bool   `json:"isOpen"`
	CreatedBy string  `json:"createdBy"`
}

// PostRule handles POST /api/admin/availability. After the rule is stored,
// slots for the configured horizon are materialized so the new hours show
// up immediately.
func (h *Handler) PostRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	rule := model.AvailabilityRule{
		StudioID:  req.StudioID,
		RuleType:  model.RuleType(req.RuleType),
		Weekday:   req.Weekday,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsOpen:    true,
		CreatedBy: req.CreatedBy,
	}
	if req.IsOpen != nil {
		rule.IsOpen = *req.IsOpen
	}

	ctx := c.Request.Context()
	if err := h.store.CreateRule(ctx, &rule); err != nil {
		abortWithError(c, err)
		return
	}

	now := time.Now()
	if _, err := h.materializer.MaterializeRange(ctx, rule.StudioID, now, now.Add(h.horizon)); err != nil {
		// The rule exists; slots will materialize on the next listing.
		log.Printf("failed to materialize slots after rule create: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// DeleteRule handles DELETE /api/admin/availability/:id. Already
// materialized slots are kept; the rule just stops contributing to future
// materialization.
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.store.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
