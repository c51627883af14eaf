// Package schedule applies availability entries to a time range set. An
// entry is either a plain range or a recurrence rule; recurring entries are
// expanded before being fed to the set. Both spot and lot availability use
// this path.
package schedule

import (
	"fmt"
	"time"

	"github.com/openlot/parking-booking-backend/internal/pkg/batch"
	"github.com/openlot/parking-booking-backend/internal/recurrence"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// Entry is one availability change. A plain entry carries only Start/End;
// setting any of Interval, Count, or Finish routes it through the
// recurrence planner.
type Entry struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration
	Count    int
	Finish   time.Time
}

// Recurring reports whether the entry must be expanded before application.
func (e Entry) Recurring() bool {
	return e.Interval != 0 || e.Count != 0 || !e.Finish.IsZero()
}

func (e Entry) rule() recurrence.Rule {
	return recurrence.Rule{
		Start:    e.Start,
		End:      e.End,
		Interval: e.Interval,
		Count:    e.Count,
		Finish:   e.Finish,
	}
}

// Apply adds every entry's ranges to the set. Failures are collected per
// entry (and per occurrence for recurring entries) without stopping the
// remaining work. The returned count is the number of ranges applied.
func Apply(set *timeset.Set, entries []Entry) (int, []batch.ItemError) {
	return each(set, entries, (*timeset.Set).Add)
}

// Retract removes every entry's ranges from the set, mirroring Apply.
func Retract(set *timeset.Set, entries []Entry) (int, []batch.ItemError) {
	return each(set, entries, (*timeset.Set).Remove)
}

func each(set *timeset.Set, entries []Entry, op func(*timeset.Set, time.Time, time.Time) error) (int, []batch.ItemError) {
	applied := 0
	var errs []batch.ItemError
	for i, e := range entries {
		ref := fmt.Sprintf("entry %d", i)

		if !e.Recurring() {
			if err := op(set, e.Start, e.End); err != nil {
				errs = append(errs, batch.ItemError{Ref: ref, Err: err})
				continue
			}
			applied++
			continue
		}

		ranges, err := recurrence.Expand(e.rule())
		if err != nil {
			errs = append(errs, batch.ItemError{Ref: ref, Err: err})
			continue
		}
		for k, r := range ranges {
			if err := op(set, r.Start, r.End); err != nil {
				errs = append(errs, batch.ItemError{
					Ref: fmt.Sprintf("%s occurrence %d", ref, k),
					Err: err,
				})
				continue
			}
			applied++
		}
	}
	return applied, errs
}
