package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/spots")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/schedule", h.Schedule)
	group.GET("/:id/available", h.Available)
	group.GET("/:id/booked", h.Booked)

	// === Admin Routes ===
	admin := group.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.POST("/:id/bookings", h.AddBookings)
		admin.DELETE("/:id/bookings/:bookingID", h.RemoveBooking)
		admin.POST("/:id/availability", h.AddAvailability)
		admin.DELETE("/:id/availability", h.RemoveAvailability)
	}
}
