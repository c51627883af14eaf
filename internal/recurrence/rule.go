// Package recurrence expands bounded linear recurrence rules into concrete
// time ranges. A rule repeats a base span at a fixed interval until either a
// fixed occurrence count is reached or the next occurrence would start past a
// finish cutoff.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/openlot/parking-booking-backend/internal/timeset"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule describes one occurrence span plus how it repeats. Exactly one bound
// must be supplied: Count > 0 or a non-zero Finish.
type Rule struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration
	Count    int
	Finish   time.Time
}

// Validate checks the rule's structural constraints.
func (r Rule) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || !r.Start.Before(r.End) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidRule)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidRule)
	}
	hasCount := r.Count > 0
	hasFinish := !r.Finish.IsZero()
	if hasCount == hasFinish {
		return fmt.Errorf("%w: exactly one of count or finish must be set", ErrInvalidRule)
	}
	return nil
}

// Expand produces the concrete occurrences of the rule in order. Occurrence k
// is the base span shifted by k intervals. With a Count bound exactly Count
// occurrences are produced; with a Finish bound, occurrences stop once their
// start would pass the cutoff.
func Expand(r Rule) ([]timeset.Range, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var out []timeset.Range
	for k := 0; ; k++ {
		shift := time.Duration(k) * r.Interval
		start := r.Start.Add(shift)

		if r.Count > 0 {
			if k == r.Count {
				break
			}
		} else if start.After(r.Finish) {
			break
		}

		out = append(out, timeset.Range{Start: start, End: r.End.Add(shift)})
	}
	return out, nil
}
