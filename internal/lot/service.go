package lot

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openlot/parking-booking-backend/internal/numberpool"
	"github.com/openlot/parking-booking-backend/internal/pkg/batch"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/spot"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

type CreateRequest struct {
	Name         string
	Address      string
	Location     spot.Location
	PerHourCents int64
	Capacity     int
}

// AddSpotItem describes one spot to add: either an existing spot by id or a
// new one by address. A nil Number means "lowest free".
type AddSpotItem struct {
	SpotID  string
	Address string
	Number  *int
}

// RemoveSpotsRequest targets spots by explicit id and/or by a contiguous
// spot-number range.
type RemoveSpotsRequest struct {
	SpotIDs []string
	From    int
	To      int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Lot, error)
	GetByID(ctx context.Context, id string) (*Lot, error)
	List(ctx context.Context, filter Filter) ([]*Lot, int, error)
	Delete(ctx context.Context, id string) error

	// AddSpots claims a number for every item, saves each spot, and links
	// it to the lot. Per-item failures are collected; the lot document is
	// saved once at the end when at least one item succeeded.
	AddSpots(ctx context.Context, lotID string, items []AddSpotItem) ([]*spot.Spot, []batch.ItemError, error)

	// RemoveSpots detaches spots from the lot and releases their numbers.
	RemoveSpots(ctx context.Context, lotID string, req RemoveSpotsRequest) ([]string, []batch.ItemError, error)

	AddAvailability(ctx context.Context, lotID string, entries []schedule.Entry) (*AvailabilityResult, error)
	RemoveAvailability(ctx context.Context, lotID string, entries []schedule.Entry) (*AvailabilityResult, error)
}

// AvailabilityResult reports the outcome of an availability batch on the
// lot-level calendar.
type AvailabilityResult struct {
	Lot     *Lot
	Applied int
	Errors  []batch.ItemError
}

type service struct {
	repo   Repository
	spots  spot.Repository
	logger *logrus.Logger
}

// NewService builds the lot service. It works directly against the spot
// repository because attaching and detaching spots are document-level edits
// owned by the lot orchestration.
func NewService(repo Repository, spots spot.Repository, logger *logrus.Logger) Service {
	return &service{repo: repo, spots: spots, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Lot, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	numbers, err := numberpool.New(1, req.Capacity)
	if err != nil {
		return nil, ErrInvalidCapacity
	}

	l := &Lot{
		Name:         req.Name,
		Address:      req.Address,
		Location:     req.Location,
		PerHourCents: req.PerHourCents,
		Numbers:      numbers,
		Available:    &timeset.Set{},
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Lot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Lot, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func itemRef(item AddSpotItem, i int) string {
	if item.SpotID != "" {
		return item.SpotID
	}
	return fmt.Sprintf("item %d", i)
}

func (s *service) AddSpots(ctx context.Context, lotID string, items []AddSpotItem) ([]*spot.Spot, []batch.ItemError, error) {
	l, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}

	var added []*spot.Spot
	var errs []batch.ItemError

	for i, item := range items {
		ref := itemRef(item, i)

		sp, err := s.addOne(ctx, l, item)
		if err != nil {
			errs = append(errs, batch.ItemError{Ref: ref, Err: err})
			continue
		}
		l.Spots = append(l.Spots, sp.ID)
		added = append(added, sp)
	}

	if len(added) > 0 {
		if err := s.repo.Save(ctx, l); err != nil {
			return nil, errs, err
		}
	}
	if len(errs) > 0 {
		s.logger.WithFields(logrus.Fields{
			"lot_id": lotID,
			"added":  len(added),
			"failed": len(errs),
		}).Warn("Some spots could not be added to lot")
	}
	return added, errs, nil
}

// addOne claims a number and prepares/saves a single spot. On any failure
// after the claim, the number is released again so the pool and the spot
// list stay in lockstep.
func (s *service) addOne(ctx context.Context, l *Lot, item AddSpotItem) (*spot.Spot, error) {
	var number int
	if item.Number != nil {
		number = *item.Number
		if err := l.Numbers.Claim(number); err != nil {
			return nil, err
		}
	} else {
		var err error
		if number, err = l.Numbers.ClaimNext(); err != nil {
			return nil, err
		}
	}

	sp, isNew, err := s.resolveSpot(ctx, l, item)
	if err != nil {
		l.Numbers.Unclaim(number)
		return nil, err
	}

	sp.LotID = &l.ID
	sp.Number = &number
	sp.Location = l.Location
	if sp.PriceCents == 0 {
		sp.PriceCents = l.PerHourCents
	}

	if isNew {
		err = s.spots.Create(ctx, sp)
	} else {
		err = s.spots.Save(ctx, sp)
	}
	if err != nil {
		l.Numbers.Unclaim(number)
		return nil, err
	}
	return sp, nil
}

func (s *service) resolveSpot(ctx context.Context, l *Lot, item AddSpotItem) (*spot.Spot, bool, error) {
	if item.SpotID == "" {
		return &spot.Spot{
			Address:   item.Address,
			Available: &timeset.Set{},
			Booked:    &timeset.Set{},
		}, true, nil
	}

	sp, err := s.spots.GetByID(ctx, item.SpotID)
	if err != nil {
		return nil, false, err
	}
	if sp.LotID != nil {
		return nil, false, spot.ErrAlreadyInLot
	}
	return sp, false, nil
}

func (s *service) RemoveSpots(ctx context.Context, lotID string, req RemoveSpotsRequest) ([]string, []batch.ItemError, error) {
	l, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}

	targets, err := s.resolveTargets(ctx, l, req)
	if err != nil {
		return nil, nil, err
	}

	var removed []string
	var errs []batch.ItemError
	for _, id := range targets {
		if err := s.removeOne(ctx, l, id); err != nil {
			errs = append(errs, batch.ItemError{Ref: id, Err: err})
			continue
		}
		removed = append(removed, id)
	}

	if len(removed) > 0 {
		if err := s.repo.Save(ctx, l); err != nil {
			return nil, errs, err
		}
	}
	if len(errs) > 0 {
		s.logger.WithFields(logrus.Fields{
			"lot_id":  lotID,
			"removed": len(removed),
			"failed":  len(errs),
		}).Warn("Some spots could not be removed from lot")
	}
	return removed, errs, nil
}

// resolveTargets merges the explicit spot ids with the spots whose numbers
// fall inside the requested range.
func (s *service) resolveTargets(ctx context.Context, l *Lot, req RemoveSpotsRequest) ([]string, error) {
	seen := make(map[string]struct{})
	var targets []string

	for _, id := range req.SpotIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	if req.From > 0 && req.To >= req.From {
		members, err := s.spots.GetByIDs(ctx, l.Spots)
		if err != nil {
			return nil, err
		}
		for _, sp := range members {
			if sp.Number == nil || *sp.Number < req.From || *sp.Number > req.To {
				continue
			}
			if _, ok := seen[sp.ID]; ok {
				continue
			}
			seen[sp.ID] = struct{}{}
			targets = append(targets, sp.ID)
		}
	}

	if len(req.SpotIDs) == 0 && req.From == 0 {
		return nil, ErrNothingToRemove
	}
	return targets, nil
}

// removeOne detaches a single spot: the spot document is saved with its lot
// and number cleared, then the lot side forgets the id and releases the
// number. Releasing an unclaimed number is a no-op.
func (s *service) removeOne(ctx context.Context, l *Lot, id string) error {
	if !l.HasSpot(id) {
		return ErrSpotNotInLot
	}

	sp, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return err
	}

	number := sp.Number
	sp.Number = nil
	sp.LotID = nil
	if err := s.spots.Save(ctx, sp); err != nil {
		return err
	}

	l.removeSpotID(id)
	if number != nil {
		l.Numbers.Unclaim(*number)
	}
	return nil
}

func (s *service) AddAvailability(ctx context.Context, lotID string, entries []schedule.Entry) (*AvailabilityResult, error) {
	return s.applyAvailability(ctx, lotID, entries, schedule.Apply)
}

func (s *service) RemoveAvailability(ctx context.Context, lotID string, entries []schedule.Entry) (*AvailabilityResult, error) {
	return s.applyAvailability(ctx, lotID, entries, schedule.Retract)
}

func (s *service) applyAvailability(
	ctx context.Context,
	lotID string,
	entries []schedule.Entry,
	apply func(*timeset.Set, []schedule.Entry) (int, []batch.ItemError),
) (*AvailabilityResult, error) {
	l, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	applied, errs := apply(l.Available, entries)
	if applied > 0 {
		if err := s.repo.Save(ctx, l); err != nil {
			return nil, err
		}
	}
	if len(errs) > 0 {
		s.logger.WithFields(logrus.Fields{
			"lot_id":  lotID,
			"entries": len(entries),
			"failed":  len(errs),
		}).Warn("Some availability entries were rejected")
	}
	return &AvailabilityResult{Lot: l, Applied: applied, Errors: errs}, nil
}
