package spot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openlot/parking-booking-backend/internal/pkg/batch"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// BookingRef is the minimal view of a booking the schedule needs: its id and
// the interval it occupies.
type BookingRef struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Schedule is the combined calendar view of a spot.
type Schedule struct {
	Available []timeset.Range
	Booked    []timeset.Range
}

// AvailabilityResult reports the outcome of an availability batch: the spot
// after the change, how many ranges landed, and the per-entry failures.
type AvailabilityResult struct {
	Spot    *Spot
	Applied int
	Errors  []batch.ItemError
}

type CreateRequest struct {
	Address    string
	Location   Location
	PriceCents int64
}

type UpdateRequest struct {
	Address    *string
	PriceCents *int64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Spot, error)
	GetByID(ctx context.Context, id string) (*Spot, error)
	List(ctx context.Context, filter Filter) ([]*Spot, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Spot, error)
	Delete(ctx context.Context, id string) error

	// AddBookings links bookings to the spot and marks their intervals as
	// booked. Per-ref failures are collected; the spot is saved once at the
	// end when at least one ref succeeded.
	AddBookings(ctx context.Context, spotID string, refs []BookingRef) ([]string, []batch.ItemError, error)

	// RemoveBooking unlinks a booking and retracts its interval from the
	// booked set.
	RemoveBooking(ctx context.Context, spotID string, ref BookingRef) (*Spot, error)

	// AddAvailability applies availability entries (plain or recurring) to
	// the spot's available set, saving once after all entries ran.
	AddAvailability(ctx context.Context, spotID string, entries []schedule.Entry) (*AvailabilityResult, error)
	RemoveAvailability(ctx context.Context, spotID string, entries []schedule.Entry) (*AvailabilityResult, error)

	Schedule(ctx context.Context, spotID string) (*Schedule, error)
}

type service struct {
	repo   Repository
	logger *logrus.Logger
}

func NewService(repo Repository, logger *logrus.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Spot, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, ErrEmptyAddress
	}

	sp := &Spot{
		Address:    req.Address,
		Location:   req.Location,
		PriceCents: req.PriceCents,
		Available:  &timeset.Set{},
		Booked:     &timeset.Set{},
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Spot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Spot, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Spot, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Address != nil {
		if strings.TrimSpace(*req.Address) == "" {
			return nil, ErrEmptyAddress
		}
		sp.Address = *req.Address
	}
	if req.PriceCents != nil {
		sp.PriceCents = *req.PriceCents
	}

	if err := s.repo.Save(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (ref BookingRef) validate() error {
	if ref.ID == "" || ref.Start.IsZero() || ref.End.IsZero() {
		return ErrMissingBookingFields
	}
	return nil
}

func (s *service) AddBookings(ctx context.Context, spotID string, refs []BookingRef) ([]string, []batch.ItemError, error) {
	sp, err := s.repo.GetByID(ctx, spotID)
	if err != nil {
		return nil, nil, err
	}

	var added []string
	var errs []batch.ItemError
	fail := func(ref BookingRef, i int, err error) {
		name := ref.ID
		if name == "" {
			name = fmt.Sprintf("booking %d", i)
		}
		errs = append(errs, batch.ItemError{Ref: name, Err: err})
	}

	for i, ref := range refs {
		if err := ref.validate(); err != nil {
			fail(ref, i, err)
			continue
		}
		if sp.HasBooking(ref.ID) {
			fail(ref, i, ErrBookingAlreadyLinked)
			continue
		}
		if err := sp.Booked.Add(ref.Start, ref.End); err != nil {
			fail(ref, i, err)
			continue
		}
		sp.Bookings = append(sp.Bookings, ref.ID)
		added = append(added, ref.ID)
	}

	if len(added) > 0 {
		if err := s.repo.Save(ctx, sp); err != nil {
			return nil, errs, err
		}
	}
	if len(errs) > 0 {
		s.logger.WithFields(logrus.Fields{
			"spot_id": spotID,
			"added":   len(added),
			"failed":  len(errs),
		}).Warn("Some bookings could not be added to spot")
	}
	return added, errs, nil
}

func (s *service) RemoveBooking(ctx context.Context, spotID string, ref BookingRef) (*Spot, error) {
	sp, err := s.repo.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if !sp.HasBooking(ref.ID) {
		return nil, ErrBookingNotLinked
	}

	kept := sp.Bookings[:0]
	for _, id := range sp.Bookings {
		if id != ref.ID {
			kept = append(kept, id)
		}
	}
	sp.Bookings = kept

	// Retract the booking's interval so the spot does not keep showing as
	// booked after the booking is gone.
	if !ref.Start.IsZero() && !ref.End.IsZero() {
		if err := sp.Booked.Remove(ref.Start, ref.End); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) AddAvailability(ctx context.Context, spotID string, entries []schedule.Entry) (*AvailabilityResult, error) {
	return s.applyAvailability(ctx, spotID, entries, schedule.Apply)
}

func (s *service) RemoveAvailability(ctx context.Context, spotID string, entries []schedule.Entry) (*AvailabilityResult, error) {
	return s.applyAvailability(ctx, spotID, entries, schedule.Retract)
}

func (s *service) applyAvailability(
	ctx context.Context,
	spotID string,
	entries []schedule.Entry,
	apply func(*timeset.Set, []schedule.Entry) (int, []batch.ItemError),
) (*AvailabilityResult, error) {
	sp, err := s.repo.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}

	applied, errs := apply(sp.Available, entries)
	if applied > 0 {
		if err := s.repo.Save(ctx, sp); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		s.logger.WithFields(logrus.Fields{
			"spot_id": spotID,
			"entries": len(entries),
			"failed":  len(errs),
		}).Warn("Some availability entries were rejected")
	}
	return &AvailabilityResult{Spot: sp, Applied: applied, Errors: errs}, nil
}

func (s *service) Schedule(ctx context.Context, spotID string) (*Schedule, error) {
	sp, err := s.repo.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		Available: sp.Available.Ranges(),
		Booked:    sp.Booked.Ranges(),
	}, nil
}
