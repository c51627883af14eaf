package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.GET("/photos/:id", h.Serve)
	g.GET("/spots/:id/photos", h.ListBySpot)

	// === Admin Routes ===
	admin := g.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/spots/:id/photos", h.Upload)
		admin.DELETE("/photos/:id", h.Delete)
	}
}
