package http

import (
	"time"

	"github.com/openlot/parking-booking-backend/internal/booking"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	spotHttp "github.com/openlot/parking-booking-backend/internal/spot/http"
)

type BookingResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	SpotID     *string    `json:"spot_id"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	DurationMS *int64     `json:"duration"`
	Price      *float64   `json:"price"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		SpotID:    b.SpotID,
		Start:     b.Start,
		End:       b.End,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if d := b.Duration(); d != nil {
		ms := d.Milliseconds()
		resp.DurationMS = &ms
	}
	if b.PriceCents != nil {
		p := spotHttp.CentsToPrice(*b.PriceCents)
		resp.Price = &p
	}
	return resp
}

// UpdateBookingBody carries the optional per-field edits of a booking
// draft. Duration is in milliseconds and derives the end from the start.
type UpdateBookingBody struct {
	SpotID     *string    `json:"spot_id" binding:"omitempty,uuid"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	DurationMS *int64     `json:"duration" binding:"omitempty,min=1"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	SpotID string `form:"spot_id" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=unpaid paid archived"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}
