package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/lots")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Admin Routes ===
	admin := group.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.DELETE("/:id", h.Delete)
		admin.POST("/:id/spots", h.AddSpots)
		admin.DELETE("/:id/spots", h.RemoveSpots)
		admin.POST("/:id/availability", h.AddAvailability)
		admin.DELETE("/:id/availability", h.RemoveAvailability)
	}
}
