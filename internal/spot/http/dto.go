package http

import (
	"math"
	"time"

	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/spot"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// PriceToCents converts a decimal currency amount to integer cents, the
// form prices are stored in.
func PriceToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// CentsToPrice converts integer cents back to decimal currency.
func CentsToPrice(c int64) float64 {
	return float64(c) / 100
}

// LocationDTO is the wire form of a coordinate pair.
type LocationDTO struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
}

// RangeDTO is the wire form of one time range, ISO-8601 timestamps.
type RangeDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRangeDTOs converts a range list, normalizing nil to an empty list.
func NewRangeDTOs(ranges []timeset.Range) []RangeDTO {
	out := make([]RangeDTO, len(ranges))
	for i, r := range ranges {
		out[i] = RangeDTO{Start: r.Start, End: r.End}
	}
	return out
}

// ScheduleResponse is the combined calendar view of a spot.
type ScheduleResponse struct {
	Booked    []RangeDTO `json:"booked"`
	Available []RangeDTO `json:"available"`
}

type SpotResponse struct {
	ID           string      `json:"id"`
	Address      string      `json:"address"`
	Location     LocationDTO `json:"location"`
	LotID        *string     `json:"lot_id"`
	Number       *int        `json:"number"`
	PricePerHour float64     `json:"price_per_hour"`
	Bookings     []string    `json:"bookings"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func NewSpotResponse(s *spot.Spot) SpotResponse {
	bookings := s.Bookings
	if bookings == nil {
		bookings = []string{}
	}
	return SpotResponse{
		ID:           s.ID,
		Address:      s.Address,
		Location:     LocationDTO{Longitude: s.Location.Longitude, Latitude: s.Location.Latitude},
		LotID:        s.LotID,
		Number:       s.Number,
		PricePerHour: CentsToPrice(s.PriceCents),
		Bookings:     bookings,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

type CreateSpotRequest struct {
	Address      string      `json:"address" binding:"required"`
	Location     LocationDTO `json:"location"`
	PricePerHour float64     `json:"price_per_hour" binding:"omitempty,gte=0"`
}

type UpdateSpotRequest struct {
	Address      *string  `json:"address"`
	PricePerHour *float64 `json:"price_per_hour" binding:"omitempty,gte=0"`
}

// AvailabilityEntry is one availability change: a plain range, or a
// recurrence when interval plus either count or finish is given. The
// interval is in milliseconds.
type AvailabilityEntry struct {
	Start    time.Time  `json:"start" binding:"required"`
	End      time.Time  `json:"end" binding:"required"`
	Interval int64      `json:"interval"`
	Count    int        `json:"count"`
	Finish   *time.Time `json:"finish"`
}

// ToEntry converts the wire form into a schedule entry.
func (e AvailabilityEntry) ToEntry() schedule.Entry {
	out := schedule.Entry{
		Start:    e.Start,
		End:      e.End,
		Interval: time.Duration(e.Interval) * time.Millisecond,
		Count:    e.Count,
	}
	if e.Finish != nil {
		out.Finish = *e.Finish
	}
	return out
}

// ToEntries converts a batch of wire entries.
func ToEntries(in []AvailabilityEntry) []schedule.Entry {
	out := make([]schedule.Entry, len(in))
	for i, e := range in {
		out[i] = e.ToEntry()
	}
	return out
}

// ListSpotsRequest defines query parameters for listing spots.
type ListSpotsRequest struct {
	request.ListParams
	LotID string `form:"lot_id" binding:"omitempty,uuid"`
}

// ToFilter converts the query parameters into a listing filter. An empty
// lot id means no lot restriction.
func (q ListSpotsRequest) ToFilter() spot.Filter {
	return spot.Filter{
		LotID:    q.LotID,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// AvailabilityResponse reports an availability batch outcome: the resulting
// calendar plus one error per rejected entry.
type AvailabilityResponse struct {
	Available []RangeDTO      `json:"available"`
	Errors    []BatchErrorDTO `json:"errors"`
}

// BatchErrorDTO is the wire form of one failed batch element.
type BatchErrorDTO struct {
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

type AddBookingsRequest struct {
	Bookings []string `json:"bookings" binding:"required,min=1,dive,uuid"`
}
