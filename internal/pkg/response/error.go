package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/pkg/apperror"
)

// ErrorResponse is the JSON shape for error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error reply. AppError values choose their own status
// code; anything else becomes an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
