package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimit := rate.Limit(cfg.RateLimitPerSec)
	if rateLimit <= 0 {
		rateLimit = rate.Limit(10)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(rateLimit, burst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Public API
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/studios
		api.GET("/studios", caching, h.GetStudios)

		// GET /api/slots — materialize + list bookable windows
		api.GET("/slots", h.GetAvailableSlots)

		// POST /api/bookings — visitor booking request
		api.POST("/bookings", h.PostBookingRequest)

		// Staff push subscriptions
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	// Staff API
	admin := api.Group("/admin")
	admin.Use(mw.AdminAuth(cfg.AdminToken))
	{
		admin.GET("/availability", h.GetRules)
		admin.POST("/availability", h.PostRule)
		admin.DELETE("/availability/:id", h.DeleteRule)

		admin.POST("/slots", h.PostManualSlot)

		admin.GET("/requests", h.GetPendingRequests)
		admin.POST("/bookings/:id/approve", h.PostApproveBooking)
		admin.POST("/bookings/:id/decline", h.PostDeclineBooking)

		admin.GET("/overview", h.GetOverview)

		admin.POST("/studios", h.PostStudio)
		admin.PUT("/studios/:id", h.PutStudio)
		admin.DELETE("/studios/:id", h.DeleteStudio)
	}

	return r
}
