package spot

import (
	"net/http"
	"time"

	"github.com/openlot/parking-booking-backend/internal/pkg/apperror"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "spot not found")
	ErrBookingAlreadyLinked = apperror.New(http.StatusConflict, "booking is already on this spot")
	ErrBookingNotLinked     = apperror.New(http.StatusBadRequest, "booking is not on this spot")
	ErrMissingBookingFields = apperror.New(http.StatusBadRequest, "booking needs an id, a start, and an end")
	ErrAlreadyInLot         = apperror.New(http.StatusConflict, "spot already belongs to a lot")
	ErrEmptyAddress         = apperror.New(http.StatusBadRequest, "address cannot be empty")
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
}

// Spot is an individually bookable parking space. Its two range sets track
// when the spot is offered (Available) and when it is taken (Booked);
// Bookings lists the ids behind the booked ranges.
type Spot struct {
	ID         string
	Address    string
	Location   Location
	LotID      *string
	Number     *int // human-facing number within the lot, claimed from its pool
	PriceCents int64
	Available  *timeset.Set
	Booked     *timeset.Set
	Bookings   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasBooking reports whether the booking id is linked to this spot.
func (s *Spot) HasBooking(id string) bool {
	for _, b := range s.Bookings {
		if b == id {
			return true
		}
	}
	return false
}

// Filter defines parameters for listing spots.
type Filter struct {
	LotID    string
	Page     int
	PageSize int
}
