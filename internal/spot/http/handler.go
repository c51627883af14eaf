package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/booking"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	"github.com/openlot/parking-booking-backend/internal/pkg/response"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/spot"
)

type Handler struct {
	service  spot.Service
	bookings booking.Service
}

func NewHandler(service spot.Service, bookings booking.Service) *Handler {
	return &Handler{service: service, bookings: bookings}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateSpotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s, err := h.service.Create(c.Request.Context(), spot.CreateRequest{
		Address:    body.Address,
		Location:   spot.Location{Longitude: body.Location.Longitude, Latitude: body.Location.Latitude},
		PriceCents: PriceToCents(body.PricePerHour),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSpotResponse(s))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSpotResponse(s))
}

func (h *Handler) List(c *gin.Context) {
	var q ListSpotsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	spots, total, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SpotResponse, len(spots))
	for i, s := range spots {
		items[i] = NewSpotResponse(s)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	var body UpdateSpotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := spot.UpdateRequest{Address: body.Address}
	if body.PricePerHour != nil {
		cents := PriceToCents(*body.PricePerHour)
		req.PriceCents = &cents
	}

	s, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSpotResponse(s))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddBookings links one or more bookings to the spot. Each booking is
// resolved for its time range before handing the batch to the service, so
// unresolvable ids surface as per-element errors rather than failing the
// whole request.
func (h *Handler) AddBookings(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	var body AddBookingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	refs := make([]spot.BookingRef, 0, len(body.Bookings))
	for _, id := range body.Bookings {
		ref := spot.BookingRef{ID: id}
		if b, err := h.bookings.GetByID(c.Request.Context(), id); err == nil {
			if b.Start != nil {
				ref.Start = *b.Start
			}
			if b.End != nil {
				ref.End = *b.End
			}
		}
		refs = append(refs, ref)
	}

	added, errs, err := h.service.AddBookings(c.Request.Context(), uri.ID, refs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Batch(c, added, errs)
}

func (h *Handler) RemoveBooking(c *gin.Context) {
	var uri struct {
		ID        string `uri:"id" binding:"required,uuid"`
		BookingID string `uri:"bookingID" binding:"required,uuid"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ref := spot.BookingRef{ID: uri.BookingID}
	if b, err := h.bookings.GetByID(c.Request.Context(), uri.BookingID); err == nil {
		if b.Start != nil {
			ref.Start = *b.Start
		}
		if b.End != nil {
			ref.End = *b.End
		}
	}

	s, err := h.service.RemoveBooking(c.Request.Context(), uri.ID, ref)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSpotResponse(s))
}

// BindAvailability accepts either a single entry object or an array of
// entries as the request body.
func BindAvailability(c *gin.Context) ([]AvailabilityEntry, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	var many []AvailabilityEntry
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var one AvailabilityEntry
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []AvailabilityEntry{one}, nil
}

// WriteAvailability reports an availability batch outcome with the status
// from response.BatchStatus.
func WriteAvailability(c *gin.Context, available []RangeDTO, applied int, errs []BatchErrorDTO) {
	c.JSON(response.BatchStatus(applied, len(errs)), AvailabilityResponse{Available: available, Errors: errs})
}

func (h *Handler) AddAvailability(c *gin.Context) {
	h.changeAvailability(c, h.service.AddAvailability)
}

func (h *Handler) RemoveAvailability(c *gin.Context) {
	h.changeAvailability(c, h.service.RemoveAvailability)
}

type availabilityOp func(ctx context.Context, spotID string, entries []schedule.Entry) (*spot.AvailabilityResult, error)

func (h *Handler) changeAvailability(c *gin.Context, op availabilityOp) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	entries, err := BindAvailability(c)
	if err != nil || len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := op(c.Request.Context(), uri.ID, ToEntries(entries))
	if err != nil {
		response.Error(c, err)
		return
	}

	errs := make([]BatchErrorDTO, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, BatchErrorDTO{Ref: e.Ref, Error: e.Err.Error()})
	}
	WriteAvailability(c, NewRangeDTOs(result.Spot.Available.Ranges()), result.Applied, errs)
}

func (h *Handler) Schedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	sched, err := h.service.Schedule(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ScheduleResponse{
		Booked:    NewRangeDTOs(sched.Booked),
		Available: NewRangeDTOs(sched.Available),
	})
}

func (h *Handler) Available(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	sched, err := h.service.Schedule(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": NewRangeDTOs(sched.Available)})
}

func (h *Handler) Booked(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	sched, err := h.service.Schedule(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booked": NewRangeDTOs(sched.Booked)})
}
