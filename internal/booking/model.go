package booking

import (
	"net/http"
	"time"

	"github.com/openlot/parking-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidTime      = apperror.New(http.StatusBadRequest, "invalid timestamp")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrNoStart          = apperror.New(http.StatusBadRequest, "booking start must be set first")
	ErrNoDuration       = apperror.New(http.StatusBadRequest, "booking has no duration yet")
	ErrInvalidDuration  = apperror.New(http.StatusBadRequest, "duration must be positive")
	ErrSpotNotFound     = apperror.New(http.StatusNotFound, "spot not found")
	ErrSpotUnpriced     = apperror.New(http.StatusBadRequest, "spot has no hourly price")
)

type Status string

const (
	StatusUnpaid   Status = "unpaid"
	StatusPaid     Status = "paid"
	StatusArchived Status = "archived"
)

// Booking is a reservation in the making. It starts with no spot or time;
// the assignment operations fill in start/end/spot and freeze the price.
type Booking struct {
	ID         string
	UserID     string
	SpotID     *string
	Start      *time.Time
	End        *time.Time
	PriceCents *int64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Duration returns end minus start, or nil unless both ends are set.
func (b *Booking) Duration() *time.Duration {
	if b.Start == nil || b.End == nil {
		return nil
	}
	d := b.End.Sub(*b.Start)
	return &d
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID   string
	SpotID   string
	Status   string
	Page     int
	PageSize int
}
