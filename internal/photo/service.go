package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/openlot/parking-booking-backend/internal/pkg/storage"
	"github.com/openlot/parking-booking-backend/internal/spot"
)

const (
	thumbMaxWidth  = 480
	thumbMaxHeight = 480
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type Service interface {
	Upload(ctx context.Context, spotID, fileName, contentType string, content io.Reader) (*Photo, error)
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListBySpot(ctx context.Context, spotID string) ([]*Photo, error)

	// Open returns the photo metadata and a reader for its content;
	// thumb selects the thumbnail rendition.
	Open(ctx context.Context, id string, thumb bool) (*Photo, io.ReadCloser, error)

	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	spots spot.Service
	store storage.Storage
}

func NewService(repo Repository, spots spot.Service, store storage.Storage) Service {
	return &service{repo: repo, spots: spots, store: store}
}

func (s *service) Upload(ctx context.Context, spotID, fileName, contentType string, content io.Reader) (*Photo, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrUnsupportedType
	}

	if _, err := s.spots.GetByID(ctx, spotID); err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}

	// The content is read twice (original and thumbnail), so buffer it.
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	thumb, err := storage.Thumbnail(bytes.NewReader(data), thumbMaxWidth, thumbMaxHeight)
	if err != nil {
		return nil, ErrUnsupportedType
	}

	name := uuid.NewString()
	original := path.Join("spots", spotID, name+ext)
	thumbnail := path.Join("spots", spotID, name+"_thumb.jpg")

	if err := s.store.Save(ctx, original, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	if err := s.store.Save(ctx, thumbnail, thumb); err != nil {
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	p := &Photo{
		SpotID:      spotID,
		FileName:    fileName,
		Path:        original,
		ThumbPath:   thumbnail,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBySpot(ctx context.Context, spotID string) ([]*Photo, error) {
	return s.repo.ListBySpot(ctx, spotID)
}

func (s *service) Open(ctx context.Context, id string, thumb bool) (*Photo, io.ReadCloser, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob := p.Path
	if thumb {
		blob = p.ThumbPath
	}
	rc, err := s.store.Open(ctx, blob)
	if err != nil {
		return nil, nil, err
	}
	return p, rc, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, p.Path); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, p.ThumbPath); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
