package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/auth"
	"github.com/openlot/parking-booking-backend/internal/user"
)

// RequireAdmin ensures the authenticated user is an admin.
// It MUST be used after auth.Required middleware.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
