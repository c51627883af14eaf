package http

import (
	"time"

	"github.com/openlot/parking-booking-backend/internal/photo"
)

type PhotoResponse struct {
	ID          string    `json:"id"`
	SpotID      string    `json:"spot_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewPhotoResponse(p *photo.Photo) PhotoResponse {
	return PhotoResponse{
		ID:          p.ID,
		SpotID:      p.SpotID,
		FileName:    p.FileName,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		CreatedAt:   p.CreatedAt,
	}
}
