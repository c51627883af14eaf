package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/parking-booking-backend/internal/recurrence"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

var day = 24 * time.Hour

func TestApplyRecurringEntry(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	set := &timeset.Set{}

	applied, errs := Apply(set, []Entry{{
		Start:    start,
		End:      start.Add(day),
		Interval: day,
		Count:    3,
	}})
	require.Empty(t, errs)
	assert.Equal(t, 3, applied)
	// Daily one-day occurrences touch and coalesce into a single range.
	require.Equal(t, 1, set.Len())
	assert.True(t, set.Contains(start, start.Add(3*day)))
	assert.False(t, set.Contains(start.Add(3*day), start.Add(4*day)))
}

func TestApplyDisjointRecurringEntry(t *testing.T) {
	start := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	set := &timeset.Set{}

	applied, errs := Apply(set, []Entry{{
		Start:    start,
		End:      start.Add(2 * time.Hour),
		Interval: day,
		Count:    3,
	}})
	require.Empty(t, errs)
	assert.Equal(t, 3, applied)
	assert.Equal(t, 3, set.Len())
	for k := range 3 {
		shift := time.Duration(k) * day
		assert.True(t, set.Contains(start.Add(shift), start.Add(shift+2*time.Hour)))
	}
	assert.False(t, set.Contains(start.Add(3*day), start.Add(3*day+2*time.Hour)))
}

func TestApplyMixedEntriesCollectsErrors(t *testing.T) {
	start := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	set := &timeset.Set{}

	applied, errs := Apply(set, []Entry{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start, End: start, Interval: day, Count: 2}, // zero-length span
		{Start: start.Add(3 * time.Hour), End: start.Add(2 * time.Hour)},
		{Start: start.Add(5 * time.Hour), End: start.Add(6 * time.Hour)},
	})

	assert.Equal(t, 2, applied)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], recurrence.ErrInvalidRule)
	assert.Equal(t, "entry 1", errs[0].Ref)
	assert.ErrorIs(t, errs[1], timeset.ErrInvalidRange)
	assert.Equal(t, "entry 2", errs[1].Ref)

	// The valid entries still landed.
	assert.Equal(t, 2, set.Len())
}

func TestRetract(t *testing.T) {
	start := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	set := &timeset.Set{}
	_, applyErrs := Apply(set, []Entry{{
		Start:    start,
		End:      start.Add(2 * time.Hour),
		Interval: day,
		Count:    3,
	}})
	require.Empty(t, applyErrs)

	retracted, errs := Retract(set, []Entry{{
		Start:    start,
		End:      start.Add(2 * time.Hour),
		Interval: day,
		Count:    3,
	}})
	require.Empty(t, errs)
	assert.Equal(t, 3, retracted)
	assert.True(t, set.IsEmpty())
}
