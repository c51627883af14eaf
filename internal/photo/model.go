package photo

import (
	"net/http"
	"time"

	"github.com/openlot/parking-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "photo not found")
	ErrSpotNotFound    = apperror.New(http.StatusNotFound, "spot not found")
	ErrUnsupportedType = apperror.New(http.StatusBadRequest, "unsupported image type")
)

// Photo is an uploaded picture of a spot, stored alongside a generated
// thumbnail.
type Photo struct {
	ID          string
	SpotID      string
	FileName    string
	Path        string
	ThumbPath   string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}
