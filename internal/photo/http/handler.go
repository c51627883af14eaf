package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlot/parking-booking-backend/internal/photo"
	"github.com/openlot/parking-booking-backend/internal/pkg/request"
	"github.com/openlot/parking-booking-backend/internal/pkg/response"
)

type Handler struct {
	service photo.Service
}

func NewHandler(service photo.Service) *Handler {
	return &Handler{service: service}
}

// Upload accepts a multipart form with a "photo" field and attaches the
// image to the spot.
func (h *Handler) Upload(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	p, err := h.service.Upload(c.Request.Context(), uri.ID, fileHeader.Filename, contentType, f)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(p))
}

// Serve streams the photo content; ?thumb=true selects the thumbnail
// rendition, which is always JPEG.
func (h *Handler) Serve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	thumb := c.Query("thumb") == "true"

	p, stream, err := h.service.Open(c.Request.Context(), uri.ID, thumb)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	contentType := p.ContentType
	name := p.FileName
	if thumb {
		contentType = "image/jpeg"
		name += "_thumb.jpg"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+name+"\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Response already started, nothing sensible to report.
		return
	}
}

func (h *Handler) ListBySpot(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	photos, err := h.service.ListBySpot(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = NewPhotoResponse(p)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
