package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-booking-backend/internal/model"
)

// GetStudios handles GET /api/studios.
func (h *Handler) GetStudios(c *gin.Context) {
	studios, err := h.store.ListStudios(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"studios": studios})
}

type studioRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=128"`
	Slug        string `json:"slug" binding:"required,min=2,max=128"`
	Description string `json:"description" binding:"max=1024"`
}

// PostStudio handles POST /api/admin/studios.
func (h *Handler) PostStudio(c *gin.Context) {
	var req studioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	studio := model.Studio{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.store.CreateStudio(c.Request.Context(), &studio); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"studio": studio})
}

// PutStudio handles PUT /api/admin/studios/:id.
func (h *Handler) PutStudio(c *gin.Context) {
	var req studioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	studio := model.Studio{
		ID:          c.Param("id"),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.store.UpdateStudio(c.Request.Context(), &studio); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"studio": studio})
}

// DeleteStudio handles DELETE /api/admin/studios/:id.
func (h *Handler) DeleteStudio(c *gin.Context) {
	if err := h.store.DeleteStudio(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
