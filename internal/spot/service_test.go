package spot

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/parking-booking-backend/internal/schedule"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

type fakeRepo struct {
	spots  map[string]*Spot
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{spots: make(map[string]*Spot)}
}

func (r *fakeRepo) Create(_ context.Context, s *Spot) error {
	r.nextID++
	s.ID = fmt.Sprintf("spot-%d", r.nextID)
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.spots[s.ID] = s
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Spot, error) {
	s, ok := r.spots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *fakeRepo) GetByIDs(_ context.Context, ids []string) ([]*Spot, error) {
	var out []*Spot
	for _, id := range ids {
		if s, ok := r.spots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) Save(_ context.Context, s *Spot) error {
	if _, ok := r.spots[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now()
	r.spots[s.ID] = s
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Spot, int, error) {
	out := make([]*Spot, 0, len(r.spots))
	for _, s := range r.spots {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.spots, id)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, quietLogger()), repo
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func hour(d, h int) time.Time {
	return time.Date(2024, 6, d, h, 0, 0, 0, time.UTC)
}

func TestSpotCRUD(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("create requires an address", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{Address: "   "})
		assert.ErrorIs(t, err, ErrEmptyAddress)
	})

	sp, err := svc.Create(ctx, CreateRequest{Address: "1 Main St", PriceCents: 500})
	require.NoError(t, err)
	require.NotEmpty(t, sp.ID)
	assert.NotNil(t, sp.Available)
	assert.NotNil(t, sp.Booked)

	t.Run("update address and price", func(t *testing.T) {
		addr := "2 Main St"
		price := int64(750)
		updated, err := svc.Update(ctx, sp.ID, UpdateRequest{Address: &addr, PriceCents: &price})
		require.NoError(t, err)
		assert.Equal(t, "2 Main St", updated.Address)
		assert.Equal(t, int64(750), updated.PriceCents)
	})

	t.Run("delete then get", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, sp.ID))
		_, err := svc.GetByID(ctx, sp.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSpotAddBookings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sp, err := svc.Create(ctx, CreateRequest{Address: "1 Main St"})
	require.NoError(t, err)

	t.Run("partial failures keep the good refs", func(t *testing.T) {
		refs := []BookingRef{
			{ID: "b1", Start: hour(1, 8), End: hour(1, 10)},
			{ID: "b2"}, // missing times
			{ID: "b3", Start: hour(1, 12), End: hour(1, 14)},
		}
		added, errs, err := svc.AddBookings(ctx, sp.ID, refs)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b3"}, added)
		require.Len(t, errs, 1)
		assert.Equal(t, "b2", errs[0].Ref)
		assert.ErrorIs(t, errs[0].Err, ErrMissingBookingFields)

		got, err := svc.GetByID(ctx, sp.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b3"}, got.Bookings)
		assert.Equal(t, 2, got.Booked.Len())
	})

	t.Run("duplicate link rejected per element", func(t *testing.T) {
		added, errs, err := svc.AddBookings(ctx, sp.ID, []BookingRef{
			{ID: "b1", Start: hour(2, 8), End: hour(2, 10)},
		})
		require.NoError(t, err)
		assert.Empty(t, added)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0].Err, ErrBookingAlreadyLinked)
	})

	t.Run("unknown spot fails the whole call", func(t *testing.T) {
		_, _, err := svc.AddBookings(ctx, "missing", []BookingRef{
			{ID: "b9", Start: hour(2, 8), End: hour(2, 10)},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSpotRemoveBooking(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sp, err := svc.Create(ctx, CreateRequest{Address: "1 Main St"})
	require.NoError(t, err)

	ref := BookingRef{ID: "b1", Start: hour(1, 8), End: hour(1, 10)}
	_, _, err = svc.AddBookings(ctx, sp.ID, []BookingRef{ref})
	require.NoError(t, err)

	t.Run("removing an unlinked booking", func(t *testing.T) {
		_, err := svc.RemoveBooking(ctx, sp.ID, BookingRef{ID: "nope"})
		assert.ErrorIs(t, err, ErrBookingNotLinked)
	})

	t.Run("removal retracts the booked interval", func(t *testing.T) {
		got, err := svc.RemoveBooking(ctx, sp.ID, ref)
		require.NoError(t, err)
		assert.Empty(t, got.Bookings)
		assert.True(t, got.Booked.IsEmpty())
	})
}

func TestSpotAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sp, err := svc.Create(ctx, CreateRequest{Address: "1 Main St"})
	require.NoError(t, err)

	t.Run("daily recurrence expands to disjoint ranges", func(t *testing.T) {
		result, err := svc.AddAvailability(ctx, sp.ID, []schedule.Entry{{
			Start:    hour(1, 8),
			End:      hour(1, 18),
			Interval: 24 * time.Hour,
			Count:    3,
		}})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Applied)
		assert.Empty(t, result.Errors)

		ranges := result.Spot.Available.Ranges()
		require.Len(t, ranges, 3)
		for i, r := range ranges {
			assert.True(t, r.Start.Equal(hour(1+i, 8)))
			assert.True(t, r.End.Equal(hour(1+i, 18)))
		}
	})

	t.Run("mixed batch applies the valid entries", func(t *testing.T) {
		result, err := svc.AddAvailability(ctx, sp.ID, []schedule.Entry{
			{Start: hour(10, 8), End: hour(10, 12)},
			{Start: hour(11, 12), End: hour(11, 8)}, // inverted
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "entry 1", result.Errors[0].Ref)
		assert.ErrorIs(t, result.Errors[0].Err, timeset.ErrInvalidRange)
	})

	t.Run("remove splits a range", func(t *testing.T) {
		result, err := svc.RemoveAvailability(ctx, sp.ID, []schedule.Entry{
			{Start: hour(1, 10), End: hour(1, 12)},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)

		got, err := svc.Schedule(ctx, sp.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(got.Available), 2)
		assert.True(t, got.Available[0].End.Equal(hour(1, 10)))
		assert.True(t, got.Available[1].Start.Equal(hour(1, 12)))
	})
}

func TestSpotScheduleView(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sp, err := svc.Create(ctx, CreateRequest{Address: "1 Main St"})
	require.NoError(t, err)

	_, err = svc.AddAvailability(ctx, sp.ID, []schedule.Entry{
		{Start: day(1), End: day(2)},
	})
	require.NoError(t, err)

	_, _, err = svc.AddBookings(ctx, sp.ID, []BookingRef{
		{ID: "b1", Start: hour(1, 9), End: hour(1, 11)},
	})
	require.NoError(t, err)

	sched, err := svc.Schedule(ctx, sp.ID)
	require.NoError(t, err)
	require.Len(t, sched.Available, 1)
	require.Len(t, sched.Booked, 1)
	assert.True(t, sched.Booked[0].Start.Equal(hour(1, 9)))
	assert.True(t, sched.Booked[0].End.Equal(hour(1, 11)))
}
