package booking

import (
	"context"
	"errors"
	"time"

	"github.com/openlot/parking-booking-backend/internal/spot"
)

// An hour in milliseconds; hourly prices are applied to millisecond
// durations and truncated to whole cents.
const hourMillis = int64(time.Hour / time.Millisecond)

type Service interface {
	Create(ctx context.Context, userID string) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// SetSpot assigns the booking to a spot and freezes the price from the
	// spot's hourly rate and the booking's current duration.
	SetSpot(ctx context.Context, id, spotID string) (*Booking, error)

	SetStart(ctx context.Context, id string, t time.Time) (*Booking, error)
	SetEnd(ctx context.Context, id string, t time.Time) (*Booking, error)

	// SetDuration derives the end from the current start plus d.
	SetDuration(ctx context.Context, id string, d time.Duration) (*Booking, error)

	Pay(ctx context.Context, id string) (*Booking, error)
	Archive(ctx context.Context, id string) (*Booking, error)
}

type service struct {
	repo  Repository
	spots spot.Service
}

func NewService(repo Repository, spots spot.Service) Service {
	return &service{repo: repo, spots: spots}
}

func (s *service) Create(ctx context.Context, userID string) (*Booking, error) {
	b := &Booking{UserID: userID, Status: StatusUnpaid}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) SetSpot(ctx context.Context, id, spotID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dur := b.Duration()
	if dur == nil {
		return nil, ErrNoDuration
	}

	sp, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	if sp.PriceCents <= 0 {
		return nil, ErrSpotUnpriced
	}

	price := sp.PriceCents * dur.Milliseconds() / hourMillis
	b.SpotID = &sp.ID
	b.PriceCents = &price

	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) SetStart(ctx context.Context, id string, t time.Time) (*Booking, error) {
	return s.setTime(ctx, id, func(b *Booking) error {
		if b.End != nil && !t.Before(*b.End) {
			return ErrInvalidTimeRange
		}
		b.Start = &t
		return nil
	}, t)
}

func (s *service) SetEnd(ctx context.Context, id string, t time.Time) (*Booking, error) {
	return s.setTime(ctx, id, func(b *Booking) error {
		if b.Start != nil && !b.Start.Before(t) {
			return ErrInvalidTimeRange
		}
		b.End = &t
		return nil
	}, t)
}

func (s *service) setTime(ctx context.Context, id string, set func(*Booking) error, t time.Time) (*Booking, error) {
	if t.IsZero() {
		return nil, ErrInvalidTime
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := set(b); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) SetDuration(ctx context.Context, id string, d time.Duration) (*Booking, error) {
	if d <= 0 {
		return nil, ErrInvalidDuration
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Start == nil {
		return nil, ErrNoStart
	}

	end := b.Start.Add(d)
	b.End = &end

	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Pay(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, func(b *Booking) bool {
		if b.Status != StatusUnpaid {
			return false
		}
		b.Status = StatusPaid
		return true
	})
}

func (s *service) Archive(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, func(b *Booking) bool {
		if b.Status == StatusArchived {
			return false
		}
		b.Status = StatusArchived
		return true
	})
}

// transition applies a status change. Status moves one way only
// (unpaid -> paid, anything -> archived); a transition that is not
// applicable, including anything attempted on an archived booking, is
// accepted as a no-op.
func (s *service) transition(ctx context.Context, id string, change func(*Booking) bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !change(b) {
		return b, nil
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
