package lot

import (
	"net/http"
	"time"

	"github.com/openlot/parking-booking-backend/internal/numberpool"
	"github.com/openlot/parking-booking-backend/internal/pkg/apperror"
	"github.com/openlot/parking-booking-backend/internal/spot"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "lot not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrSpotNotInLot    = apperror.New(http.StatusBadRequest, "spot does not belong to this lot")
	ErrNothingToRemove = apperror.New(http.StatusBadRequest, "no spots or number range given")
)

// Lot is a parking facility. Spots and Numbers move in lockstep: every spot
// added to the lot claims a number from the pool, every spot removed
// releases one.
type Lot struct {
	ID           string
	Name         string
	Address      string
	Location     spot.Location
	PerHourCents int64
	Spots        []string
	Numbers      *numberpool.Pool
	Available    *timeset.Set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSpot reports whether the spot id belongs to this lot.
func (l *Lot) HasSpot(id string) bool {
	for _, s := range l.Spots {
		if s == id {
			return true
		}
	}
	return false
}

func (l *Lot) removeSpotID(id string) {
	kept := l.Spots[:0]
	for _, s := range l.Spots {
		if s != id {
			kept = append(kept, s)
		}
	}
	l.Spots = kept
}

// Filter defines parameters for listing lots.
type Filter struct {
	Page     int
	PageSize int
}
