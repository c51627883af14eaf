package lot

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/parking-booking-backend/internal/numberpool"
	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/spot"
)

type fakeLotRepo struct {
	lots   map[string]*Lot
	nextID int
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[string]*Lot)}
}

func (r *fakeLotRepo) Create(_ context.Context, l *Lot) error {
	r.nextID++
	l.ID = fmt.Sprintf("lot-%d", r.nextID)
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.lots[l.ID] = l
	return nil
}

func (r *fakeLotRepo) GetByID(_ context.Context, id string) (*Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (r *fakeLotRepo) Save(_ context.Context, l *Lot) error {
	if _, ok := r.lots[l.ID]; !ok {
		return ErrNotFound
	}
	l.UpdatedAt = time.Now()
	r.lots[l.ID] = l
	return nil
}

func (r *fakeLotRepo) List(_ context.Context, _ Filter) ([]*Lot, int, error) {
	out := make([]*Lot, 0, len(r.lots))
	for _, l := range r.lots {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *fakeLotRepo) Delete(_ context.Context, id string) error {
	delete(r.lots, id)
	return nil
}

type fakeSpotRepo struct {
	spots  map[string]*spot.Spot
	nextID int
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{spots: make(map[string]*spot.Spot)}
}

func (r *fakeSpotRepo) Create(_ context.Context, s *spot.Spot) error {
	r.nextID++
	s.ID = fmt.Sprintf("spot-%d", r.nextID)
	r.spots[s.ID] = s
	return nil
}

func (r *fakeSpotRepo) GetByID(_ context.Context, id string) (*spot.Spot, error) {
	s, ok := r.spots[id]
	if !ok {
		return nil, spot.ErrNotFound
	}
	return s, nil
}

func (r *fakeSpotRepo) GetByIDs(_ context.Context, ids []string) ([]*spot.Spot, error) {
	var out []*spot.Spot
	for _, id := range ids {
		if s, ok := r.spots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSpotRepo) Save(_ context.Context, s *spot.Spot) error {
	if _, ok := r.spots[s.ID]; !ok {
		return spot.ErrNotFound
	}
	r.spots[s.ID] = s
	return nil
}

func (r *fakeSpotRepo) List(_ context.Context, _ spot.Filter) ([]*spot.Spot, int, error) {
	out := make([]*spot.Spot, 0, len(r.spots))
	for _, s := range r.spots {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *fakeSpotRepo) Delete(_ context.Context, id string) error {
	delete(r.spots, id)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (Service, *fakeLotRepo, *fakeSpotRepo) {
	t.Helper()
	lots := newFakeLotRepo()
	spots := newFakeSpotRepo()
	return NewService(lots, spots, quietLogger()), lots, spots
}

func newTestLot(t *testing.T, svc Service, capacity int) *Lot {
	t.Helper()
	l, err := svc.Create(context.Background(), CreateRequest{
		Name:         "Central Garage",
		Address:      "1 Garage Way",
		Location:     spot.Location{Longitude: 120.5, Latitude: 23.5},
		PerHourCents: 800,
		Capacity:     capacity,
	})
	require.NoError(t, err)
	return l
}

func TestLotCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Create(ctx, CreateRequest{Name: "  ", Capacity: 5})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Create(ctx, CreateRequest{Name: "Garage", Capacity: 0})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	l := newTestLot(t, svc, 5)
	assert.Equal(t, 5, l.Numbers.Max())
	assert.Equal(t, 5, l.Numbers.Free())
	assert.Empty(t, l.Spots)
}

func TestLotAddSpots(t *testing.T) {
	ctx := context.Background()
	svc, lots, spots := newTestService(t)
	l := newTestLot(t, svc, 5)

	t.Run("auto numbering assigns lowest free", func(t *testing.T) {
		items := []AddSpotItem{
			{Address: "Bay A"},
			{Address: "Bay B"},
		}
		added, errs, err := svc.AddSpots(ctx, l.ID, items)
		require.NoError(t, err)
		require.Empty(t, errs)
		require.Len(t, added, 2)
		assert.Equal(t, 1, *added[0].Number)
		assert.Equal(t, 2, *added[1].Number)
	})

	t.Run("new spots inherit lot location and price", func(t *testing.T) {
		got, err := spots.GetByID(ctx, l.Spots[0])
		require.NoError(t, err)
		assert.Equal(t, l.Location, got.Location)
		assert.Equal(t, l.PerHourCents, got.PriceCents)
		require.NotNil(t, got.LotID)
		assert.Equal(t, l.ID, *got.LotID)
	})

	t.Run("explicit number claims land exactly", func(t *testing.T) {
		n := 5
		added, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{{Address: "Bay E", Number: &n}})
		require.NoError(t, err)
		require.Empty(t, errs)
		assert.Equal(t, 5, *added[0].Number)
	})

	t.Run("claimed and out-of-range numbers fail per item", func(t *testing.T) {
		taken := 1
		high := 99
		added, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{
			{Address: "Bay X", Number: &taken},
			{Address: "Bay Y", Number: &high},
			{Address: "Bay Z"},
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Equal(t, 3, *added[0].Number)
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0].Err, numberpool.ErrAlreadyClaimed)
		assert.ErrorIs(t, errs[1].Err, numberpool.ErrOutOfRange)
	})

	t.Run("exhausted pool rejects further spots", func(t *testing.T) {
		added, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{
			{Address: "Bay F"},
			{Address: "Bay G"},
		})
		require.NoError(t, err)
		require.Len(t, added, 1)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0].Err, numberpool.ErrExhausted)
	})

	t.Run("pool and spot list stay in lockstep", func(t *testing.T) {
		got, err := lots.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Len(t, got.Spots, 5)
		assert.Equal(t, 0, got.Numbers.Free())
	})
}

func TestLotAddExistingSpot(t *testing.T) {
	ctx := context.Background()
	svc, _, spots := newTestService(t)
	l := newTestLot(t, svc, 5)

	loose := &spot.Spot{Address: "Loose Spot", PriceCents: 1200}
	require.NoError(t, spots.Create(ctx, loose))

	t.Run("existing spot keeps its own price", func(t *testing.T) {
		added, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{{SpotID: loose.ID}})
		require.NoError(t, err)
		require.Empty(t, errs)
		require.Len(t, added, 1)
		assert.Equal(t, int64(1200), added[0].PriceCents)
		assert.Equal(t, l.Location, added[0].Location)
	})

	t.Run("spot already in a lot is rejected and the number released", func(t *testing.T) {
		other := newTestLot(t, svc, 3)
		_, errs, err := svc.AddSpots(ctx, other.ID, []AddSpotItem{{SpotID: loose.ID}})
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0].Err, spot.ErrAlreadyInLot)
		assert.Equal(t, 3, other.Numbers.Free())
	})
}

func TestLotRemoveSpots(t *testing.T) {
	ctx := context.Background()
	svc, lots, spots := newTestService(t)
	l := newTestLot(t, svc, 10)

	added, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{
		{Address: "Bay 1"}, {Address: "Bay 2"}, {Address: "Bay 3"}, {Address: "Bay 4"},
	})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, added, 4)

	t.Run("empty request rejected", func(t *testing.T) {
		_, _, err := svc.RemoveSpots(ctx, l.ID, RemoveSpotsRequest{})
		assert.ErrorIs(t, err, ErrNothingToRemove)
	})

	t.Run("remove by number range", func(t *testing.T) {
		removed, errs, err := svc.RemoveSpots(ctx, l.ID, RemoveSpotsRequest{From: 2, To: 3})
		require.NoError(t, err)
		require.Empty(t, errs)
		assert.ElementsMatch(t, []string{added[1].ID, added[2].ID}, removed)

		got, err := lots.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Len(t, got.Spots, 2)
		assert.False(t, got.Numbers.IsClaimed(2))
		assert.False(t, got.Numbers.IsClaimed(3))

		sp, err := spots.GetByID(ctx, added[1].ID)
		require.NoError(t, err)
		assert.Nil(t, sp.LotID)
		assert.Nil(t, sp.Number)
	})

	t.Run("remove by id plus foreign id fails per element", func(t *testing.T) {
		removed, errs, err := svc.RemoveSpots(ctx, l.ID, RemoveSpotsRequest{
			SpotIDs: []string{added[0].ID, "not-in-lot"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{added[0].ID}, removed)
		require.Len(t, errs, 1)
		assert.Equal(t, "not-in-lot", errs[0].Ref)
		assert.ErrorIs(t, errs[0].Err, ErrSpotNotInLot)
	})

	t.Run("freed numbers are reused", func(t *testing.T) {
		again, errs, err := svc.AddSpots(ctx, l.ID, []AddSpotItem{{Address: "Bay New"}})
		require.NoError(t, err)
		require.Empty(t, errs)
		assert.Equal(t, 1, *again[0].Number)
	})
}

func TestLotAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	l := newTestLot(t, svc, 3)

	start := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

	result, err := svc.AddAvailability(ctx, l.ID, []schedule.Entry{{
		Start:    start,
		End:      end,
		Interval: 24 * time.Hour,
		Count:    7,
	}})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Applied)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 7, result.Lot.Available.Len())

	retract, err := svc.RemoveAvailability(ctx, l.ID, []schedule.Entry{{
		Start: start, End: end,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, retract.Applied)
	assert.Equal(t, 6, retract.Lot.Available.Len())
}
