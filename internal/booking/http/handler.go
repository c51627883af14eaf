package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/auth"
	"github.com/openlot/parking-booking-backend/internal/booking"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	"github.com/openlot/parking-booking-backend/internal/pkg/response"
	"github.com/openlot/parking-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
	return &Handler{service: service, userService: userService}
}

// checkIsAdmin helper checks if the current user is an admin
func (h *Handler) checkIsAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsAdmin
}

func (h *Handler) Create(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.UserID(c)
	if b.UserID != userID && !h.checkIsAdmin(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var q ListBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	// Normal users only see their own bookings; admins may filter by any
	// user or see all.
	currentUserID := auth.UserID(c)
	filterUserID := currentUserID
	if h.checkIsAdmin(c, currentUserID) {
		filterUserID = q.UserID
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		UserID:   filterUserID,
		SpotID:   q.SpotID,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

// Update applies the optional field edits one at a time so each keeps its
// own validation. Assigning the spot runs last because the price freeze
// reads the duration.
func (h *Handler) Update(c *gin.Context) {
	_, uri, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body UpdateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		updated *booking.Booking
		err     error
	)
	if body.Start != nil {
		if updated, err = h.service.SetStart(ctx, uri.ID, *body.Start); err != nil {
			response.Error(c, err)
			return
		}
	}
	if body.End != nil {
		if updated, err = h.service.SetEnd(ctx, uri.ID, *body.End); err != nil {
			response.Error(c, err)
			return
		}
	}
	if body.DurationMS != nil {
		d := time.Duration(*body.DurationMS) * time.Millisecond
		if updated, err = h.service.SetDuration(ctx, uri.ID, d); err != nil {
			response.Error(c, err)
			return
		}
	}
	if body.SpotID != nil {
		if updated, err = h.service.SetSpot(ctx, uri.ID, *body.SpotID); err != nil {
			response.Error(c, err)
			return
		}
	}

	if updated == nil {
		updated, err = h.service.GetByID(ctx, uri.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, NewBookingResponse(updated))
}

func (h *Handler) Pay(c *gin.Context) {
	_, uri, ok := h.loadOwned(c)
	if !ok {
		return
	}

	b, err := h.service.Pay(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Archive(c *gin.Context) {
	_, uri, ok := h.loadOwned(c)
	if !ok {
		return
	}

	b, err := h.service.Archive(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// loadOwned binds the :id parameter, loads the booking, and enforces that
// the caller owns it or is an admin. On failure the response is already
// written.
func (h *Handler) loadOwned(c *gin.Context) (*booking.Booking, request.ByIDRequest, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return nil, uri, false
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, uri, false
	}

	userID := auth.UserID(c)
	if b.UserID != userID && !h.checkIsAdmin(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return nil, uri, false
	}

	return b, uri, true
}
