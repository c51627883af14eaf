// Package timeset implements an ordered, coalesced set of half-open time
// ranges. It backs the per-spot "available" and "booked" schedules and the
// lot-level availability calendar.
package timeset

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"
)

var ErrInvalidRange = errors.New("invalid time range: start must be before end")

// Range is a half-open time span [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Equal reports whether two ranges cover the same span.
func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Set is an ordered sequence of non-overlapping, non-touching ranges.
// The zero value is an empty, usable set.
//
// Invariant: ranges are sorted by Start and minimal; no two entries could
// be merged into one.
type Set struct {
	ranges []Range
}

// FromRanges builds a Set from an ordered-list serialization. The input does
// not need to be sorted or coalesced; every entry is validated and added.
func FromRanges(ranges []Range) (*Set, error) {
	s := &Set{}
	for _, r := range ranges {
		if err := s.Add(r.Start, r.End); err != nil {
			return nil, fmt.Errorf("range %v..%v: %w", r.Start, r.End, err)
		}
	}
	return s, nil
}

func validate(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidRange
	}
	if !start.Before(end) {
		return ErrInvalidRange
	}
	return nil
}

// Add inserts [start, end) into the set, merging with any overlapping or
// touching neighbor. Two ranges [a,b) and [c,d) merge whenever c <= b.
func (s *Set) Add(start, end time.Time) error {
	if err := validate(start, end); err != nil {
		return err
	}

	// First range whose end reaches the new start; everything before it is
	// strictly to the left and untouched.
	lo := sort.Search(len(s.ranges), func(i int) bool {
		return !s.ranges[i].End.Before(start)
	})
	// First range that starts strictly after the new end; everything from
	// lo up to hi merges into the inserted range.
	hi := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start.After(end)
	})

	merged := Range{Start: start, End: end}
	if lo < hi {
		if s.ranges[lo].Start.Before(merged.Start) {
			merged.Start = s.ranges[lo].Start
		}
		if s.ranges[hi-1].End.After(merged.End) {
			merged.End = s.ranges[hi-1].End
		}
	}

	out := make([]Range, 0, len(s.ranges)-(hi-lo)+1)
	out = append(out, s.ranges[:lo]...)
	out = append(out, merged)
	out = append(out, s.ranges[hi:]...)
	s.ranges = out
	return nil
}

// Remove subtracts [start, end) from every stored range it intersects. A
// stored range may be split in two, shrunk from either edge, or deleted
// entirely. Removing a span that intersects nothing is a no-op.
func (s *Set) Remove(start, end time.Time) error {
	if err := validate(start, end); err != nil {
		return err
	}

	out := make([]Range, 0, len(s.ranges)+1)
	for _, r := range s.ranges {
		// No intersection: half-open ranges only overlap when each starts
		// before the other ends.
		if !r.Start.Before(end) || !start.Before(r.End) {
			out = append(out, r)
			continue
		}
		if r.Start.Before(start) {
			out = append(out, Range{Start: r.Start, End: start})
		}
		if end.Before(r.End) {
			out = append(out, Range{Start: end, End: r.End})
		}
	}
	s.ranges = out
	return nil
}

// Contains reports whether [start, end) is fully covered by a single stored
// range. Malformed input is simply not contained.
func (s *Set) Contains(start, end time.Time) bool {
	if validate(start, end) != nil {
		return false
	}
	for _, r := range s.ranges {
		if !r.Start.After(start) && !r.End.Before(end) {
			return true
		}
		if r.Start.After(start) {
			break
		}
	}
	return false
}

// Overlaps reports whether [start, end) intersects any stored range.
func (s *Set) Overlaps(start, end time.Time) bool {
	if validate(start, end) != nil {
		return false
	}
	for _, r := range s.ranges {
		if r.Start.Before(end) && start.Before(r.End) {
			return true
		}
		if !r.Start.Before(end) {
			break
		}
	}
	return false
}

// All returns a restartable iterator over the stored ranges in ascending
// start order.
func (s *Set) All() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for _, r := range s.ranges {
			if !yield(r) {
				return
			}
		}
	}
}

// Ranges returns a copy of the stored ranges in ascending start order.
// This is the serialization form.
func (s *Set) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Len returns the number of stored ranges.
func (s *Set) Len() int {
	return len(s.ranges)
}

// IsEmpty reports whether the set holds no ranges.
func (s *Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Equal reports whether two sets hold identical range sequences.
func (s *Set) Equal(o *Set) bool {
	if len(s.ranges) != len(o.ranges) {
		return false
	}
	for i, r := range s.ranges {
		if !r.Equal(o.ranges[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON serializes the set as its ordered range list.
func (s *Set) MarshalJSON() ([]byte, error) {
	if s.ranges == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ranges)
}

// UnmarshalJSON rebuilds the set from an ordered range list, re-validating
// and re-coalescing every entry.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ranges []Range
	if err := json.Unmarshal(data, &ranges); err != nil {
		return err
	}
	rebuilt, err := FromRanges(ranges)
	if err != nil {
		return err
	}
	s.ranges = rebuilt.ranges
	return nil
}
