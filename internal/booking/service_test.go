package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/parking-booking-backend/internal/spot"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	bookings map[string]*Booking
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func (r *fakeRepo) Create(_ context.Context, b *Booking) error {
	r.nextID++
	b.ID = fmt.Sprintf("booking-%d", r.nextID)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) Save(_ context.Context, b *Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Booking, int, error) {
	out := make([]*Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.bookings, id)
	return nil
}

// fakeSpots satisfies spot.Service; only GetByID matters here.
type fakeSpots struct {
	spot.Service
	spots map[string]*spot.Spot
}

func (f *fakeSpots) GetByID(_ context.Context, id string) (*spot.Spot, error) {
	s, ok := f.spots[id]
	if !ok {
		return nil, spot.ErrNotFound
	}
	return s, nil
}

func newTestService() (Service, *fakeRepo, *fakeSpots) {
	repo := newFakeRepo()
	spots := &fakeSpots{spots: map[string]*spot.Spot{
		"spot-priced": {
			ID:         "spot-priced",
			Address:    "1 Main St",
			PriceCents: 1000, // 10.00 per hour
			Available:  &timeset.Set{},
			Booked:     &timeset.Set{},
		},
		"spot-free": {
			ID:        "spot-free",
			Address:   "2 Main St",
			Available: &timeset.Set{},
			Booked:    &timeset.Set{},
		},
	}}
	return NewService(repo, spots), repo, spots
}

func TestBookingDraftLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	b, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)
	assert.Equal(t, StatusUnpaid, b.Status)
	assert.Nil(t, b.Start)
	assert.Nil(t, b.End)
	assert.Nil(t, b.Duration())

	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("set start", func(t *testing.T) {
		b, err = svc.SetStart(ctx, b.ID, start)
		require.NoError(t, err)
		require.NotNil(t, b.Start)
		assert.True(t, b.Start.Equal(start))
		assert.Nil(t, b.End)
	})

	t.Run("duration derives end from start", func(t *testing.T) {
		b, err = svc.SetDuration(ctx, b.ID, 24*time.Hour)
		require.NoError(t, err)
		require.NotNil(t, b.End)
		assert.True(t, b.End.Equal(time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)))
		require.NotNil(t, b.Duration())
		assert.Equal(t, 24*time.Hour, *b.Duration())
	})

	t.Run("moving start keeps explicit end", func(t *testing.T) {
		b, err = svc.SetStart(ctx, b.ID, start.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, b.End)
		assert.Equal(t, 23*time.Hour, *b.Duration())
	})
}

func TestBookingTimeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	b, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("zero times rejected", func(t *testing.T) {
		_, err := svc.SetStart(ctx, b.ID, time.Time{})
		assert.ErrorIs(t, err, ErrInvalidTime)
		_, err = svc.SetEnd(ctx, b.ID, time.Time{})
		assert.ErrorIs(t, err, ErrInvalidTime)
	})

	t.Run("end not after start rejected", func(t *testing.T) {
		_, err := svc.SetStart(ctx, b.ID, start)
		require.NoError(t, err)
		_, err = svc.SetEnd(ctx, b.ID, start)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
		_, err = svc.SetEnd(ctx, b.ID, start.Add(-time.Hour))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("start not before end rejected", func(t *testing.T) {
		_, err := svc.SetEnd(ctx, b.ID, start.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = svc.SetStart(ctx, b.ID, start.Add(3*time.Hour))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("non-positive duration rejected", func(t *testing.T) {
		_, err := svc.SetDuration(ctx, b.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidDuration)
		_, err = svc.SetDuration(ctx, b.ID, -time.Hour)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("duration without start rejected", func(t *testing.T) {
		fresh, err := svc.Create(ctx, "user-1")
		require.NoError(t, err)
		_, err = svc.SetDuration(ctx, fresh.ID, time.Hour)
		assert.ErrorIs(t, err, ErrNoStart)
	})
}

func TestBookingSetSpotFreezesPrice(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	newDraft := func(t *testing.T, withTimes bool) *Booking {
		b, err := svc.Create(ctx, "user-1")
		require.NoError(t, err)
		if withTimes {
			_, err = svc.SetStart(ctx, b.ID, start)
			require.NoError(t, err)
			b, err = svc.SetDuration(ctx, b.ID, 2*time.Hour)
			require.NoError(t, err)
		}
		return b
	}

	t.Run("price is hourly rate times duration", func(t *testing.T) {
		b := newDraft(t, true)
		b, err := svc.SetSpot(ctx, b.ID, "spot-priced")
		require.NoError(t, err)
		require.NotNil(t, b.SpotID)
		assert.Equal(t, "spot-priced", *b.SpotID)
		require.NotNil(t, b.PriceCents)
		assert.Equal(t, int64(2000), *b.PriceCents)
	})

	t.Run("fractional hours truncate to whole cents", func(t *testing.T) {
		b := newDraft(t, false)
		_, err := svc.SetStart(ctx, b.ID, start)
		require.NoError(t, err)
		_, err = svc.SetDuration(ctx, b.ID, 100*time.Millisecond)
		require.NoError(t, err)

		b, err = svc.SetSpot(ctx, b.ID, "spot-priced")
		require.NoError(t, err)
		require.NotNil(t, b.PriceCents)
		// 1000 * 100 / 3600000 truncates to zero.
		assert.Equal(t, int64(0), *b.PriceCents)
	})

	t.Run("requires a duration", func(t *testing.T) {
		b := newDraft(t, false)
		_, err := svc.SetSpot(ctx, b.ID, "spot-priced")
		assert.ErrorIs(t, err, ErrNoDuration)
	})

	t.Run("unknown spot", func(t *testing.T) {
		b := newDraft(t, true)
		_, err := svc.SetSpot(ctx, b.ID, "missing")
		assert.ErrorIs(t, err, ErrSpotNotFound)
	})

	t.Run("unpriced spot", func(t *testing.T) {
		b := newDraft(t, true)
		_, err := svc.SetSpot(ctx, b.ID, "spot-free")
		assert.ErrorIs(t, err, ErrSpotUnpriced)
	})
}

func TestBookingStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	b, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, b.Status)

	t.Run("pay moves unpaid to paid", func(t *testing.T) {
		b, err = svc.Pay(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, b.Status)
	})

	t.Run("paying again is a no-op", func(t *testing.T) {
		b, err = svc.Pay(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, b.Status)
	})

	t.Run("archive is terminal", func(t *testing.T) {
		b, err = svc.Archive(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, b.Status)

		b, err = svc.Pay(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, b.Status)

		b, err = svc.Archive(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, b.Status)
	})
}
