package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/lot"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	"github.com/openlot/parking-booking-backend/internal/pkg/response"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/spot"
	spotHttp "github.com/openlot/parking-booking-backend/internal/spot/http"
)

type Handler struct {
	service lot.Service
}

func NewHandler(service lot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateLotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	l, err := h.service.Create(c.Request.Context(), lot.CreateRequest{
		Name:         body.Name,
		Address:      body.Address,
		Location:     spot.Location{Longitude: body.Location.Longitude, Latitude: body.Location.Latitude},
		PerHourCents: spotHttp.PriceToCents(body.PricePerHour),
		Capacity:     body.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewLotResponse(l))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLotResponse(l))
}

func (h *Handler) List(c *gin.Context) {
	var q ListLotsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	lots, total, err := h.service.List(c.Request.Context(), lot.Filter{Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LotResponse, len(lots))
	for i, l := range lots {
		items[i] = NewLotResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddSpots attaches spots to the lot. Each item claims a spot number first;
// item failures are reported per element and never abort the batch.
func (h *Handler) AddSpots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	var body AddSpotsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	items := make([]lot.AddSpotItem, 0, len(body.Spots)+body.Count)
	for _, s := range body.Spots {
		items = append(items, lot.AddSpotItem{SpotID: s.SpotID, Address: s.Address, Number: s.Number})
	}
	for i := 0; i < body.Count; i++ {
		items = append(items, lot.AddSpotItem{})
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no spots to add"})
		return
	}

	added, errs, err := h.service.AddSpots(c.Request.Context(), uri.ID, items)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]spotHttp.SpotResponse, len(added))
	for i, s := range added {
		out[i] = spotHttp.NewSpotResponse(s)
	}
	response.Batch(c, out, errs)
}

// RemoveSpots detaches spots from the lot and frees their numbers.
func (h *Handler) RemoveSpots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	var body RemoveSpotsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	removed, errs, err := h.service.RemoveSpots(c.Request.Context(), uri.ID, lot.RemoveSpotsRequest{
		SpotIDs: body.Spots,
		From:    body.From,
		To:      body.To,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Batch(c, removed, errs)
}

func (h *Handler) AddAvailability(c *gin.Context) {
	h.changeAvailability(c, h.service.AddAvailability)
}

func (h *Handler) RemoveAvailability(c *gin.Context) {
	h.changeAvailability(c, h.service.RemoveAvailability)
}

type availabilityOp func(ctx context.Context, lotID string, entries []schedule.Entry) (*lot.AvailabilityResult, error)

func (h *Handler) changeAvailability(c *gin.Context, op availabilityOp) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	entries, err := spotHttp.BindAvailability(c)
	if err != nil || len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := op(c.Request.Context(), uri.ID, spotHttp.ToEntries(entries))
	if err != nil {
		response.Error(c, err)
		return
	}

	errs := make([]spotHttp.BatchErrorDTO, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, spotHttp.BatchErrorDTO{Ref: e.Ref, Error: e.Err.Error()})
	}

	spotHttp.WriteAvailability(c, spotHttp.NewRangeDTOs(result.Lot.Available.Ranges()), result.Applied, errs)
}
