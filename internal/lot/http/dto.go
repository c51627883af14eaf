package http

import (
	"time"

	"github.com/openlot/parking-booking-backend/internal/lot"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	spotHttp "github.com/openlot/parking-booking-backend/internal/spot/http"
)

type LotResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Address      string               `json:"address"`
	Location     spotHttp.LocationDTO `json:"location"`
	PricePerHour float64              `json:"price_per_hour"`
	Capacity     int                  `json:"capacity"`
	Spots        []string             `json:"spots"`
	FreeNumbers  int                  `json:"free_numbers"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func NewLotResponse(l *lot.Lot) LotResponse {
	spots := l.Spots
	if spots == nil {
		spots = []string{}
	}
	resp := LotResponse{
		ID:           l.ID,
		Name:         l.Name,
		Address:      l.Address,
		Location:     spotHttp.LocationDTO{Longitude: l.Location.Longitude, Latitude: l.Location.Latitude},
		PricePerHour: spotHttp.CentsToPrice(l.PerHourCents),
		Spots:        spots,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.Numbers != nil {
		resp.Capacity = l.Numbers.Max()
		resp.FreeNumbers = l.Numbers.Free()
	}
	return resp
}

type CreateLotRequest struct {
	Name         string               `json:"name" binding:"required"`
	Address      string               `json:"address"`
	Location     spotHttp.LocationDTO `json:"location"`
	PricePerHour float64              `json:"price_per_hour" binding:"omitempty,gte=0"`
	Capacity     int                  `json:"capacity" binding:"required,min=1"`
}

type ListLotsRequest struct {
	request.ListParams
}

// AddSpotDTO is one element of an add-spots request. Exactly one of spot_id
// and address identifies the spot; number is optional and auto-assigned
// when absent.
type AddSpotDTO struct {
	SpotID  string `json:"spot_id" binding:"omitempty,uuid"`
	Address string `json:"address"`
	Number  *int   `json:"number" binding:"omitempty,min=1"`
}

// AddSpotsRequest adds spots to a lot. Count expands to that many blank
// items (new spots with auto-assigned numbers) and may be combined with an
// explicit item list.
type AddSpotsRequest struct {
	Spots []AddSpotDTO `json:"spots"`
	Count int          `json:"count" binding:"omitempty,min=1"`
}

// RemoveSpotsRequest removes spots from a lot, by explicit id and/or by a
// contiguous spot-number range.
type RemoveSpotsRequest struct {
	Spots []string `json:"spots" binding:"omitempty,dive,uuid"`
	From  int      `json:"from" binding:"omitempty,min=1"`
	To    int      `json:"to" binding:"omitempty,min=1"`
}

type RemovedSpotsResponse struct {
	Removed []string                 `json:"removed"`
	Errors  []spotHttp.BatchErrorDTO `json:"errors"`
}
