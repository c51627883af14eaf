package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/pkg/batch"
)

// BatchError is the JSON shape of one failed element in a batch operation.
type BatchError struct {
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

// BatchResponse reports a batch outcome: the committed items plus one error
// per failed element.
type BatchResponse[T any] struct {
	Items  []T          `json:"items"`
	Errors []BatchError `json:"errors"`
}

// BatchStatus maps a batch outcome to an HTTP status following the
// partial-failure policy: 200 as long as at least one element succeeded
// (the error list may be non-empty), 500 only when every element failed.
func BatchStatus(succeeded, failed int) int {
	if succeeded == 0 && failed > 0 {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// Batch writes a batch outcome with the status from BatchStatus.
func Batch[T any](c *gin.Context, items []T, errs []batch.ItemError) {
	if items == nil {
		items = make([]T, 0)
	}
	out := BatchResponse[T]{Items: items, Errors: make([]BatchError, 0, len(errs))}
	for _, e := range errs {
		out.Errors = append(out.Errors, BatchError{Ref: e.Ref, Error: e.Err.Error()})
	}

	c.JSON(BatchStatus(len(items), len(errs)), out)
}
