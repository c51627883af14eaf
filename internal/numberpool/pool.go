// Package numberpool manages a bounded pool of human-facing spot numbers
// within a lot. Numbers are claimed and released with a no-duplicates
// guarantee; automatic allocation always hands out the lowest free number so
// assignment is deterministic.
package numberpool

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrOutOfRange     = errors.New("number is outside the pool range")
	ErrAlreadyClaimed = errors.New("number is already claimed")
	ErrExhausted      = errors.New("no free numbers left in the pool")
)

// ClaimError records the failure of one element within a batch claim.
type ClaimError struct {
	Number int
	Err    error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("number %d: %v", e.Number, e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}

// Pool is a bounded allocator of integers in [Min, Max].
type Pool struct {
	min     int
	max     int
	claimed map[int]struct{}
}

// New creates an empty pool covering [min, max].
func New(min, max int) (*Pool, error) {
	if min > max {
		return nil, fmt.Errorf("invalid pool bounds [%d, %d]", min, max)
	}
	return &Pool{min: min, max: max, claimed: make(map[int]struct{})}, nil
}

func (p *Pool) Min() int { return p.min }
func (p *Pool) Max() int { return p.max }

// Claim reserves an explicit number.
func (p *Pool) Claim(n int) error {
	if n < p.min || n > p.max {
		return ErrOutOfRange
	}
	if _, ok := p.claimed[n]; ok {
		return ErrAlreadyClaimed
	}
	p.claimed[n] = struct{}{}
	return nil
}

// ClaimNext reserves and returns the lowest free number.
func (p *Pool) ClaimNext() (int, error) {
	for n := p.min; n <= p.max; n++ {
		if _, ok := p.claimed[n]; !ok {
			p.claimed[n] = struct{}{}
			return n, nil
		}
	}
	return 0, ErrExhausted
}

// ClaimBatch attempts every number independently. Successes are committed,
// failures reported per element; a batch is never rolled back.
func (p *Pool) ClaimBatch(numbers []int) (claimed []int, errs []*ClaimError) {
	for _, n := range numbers {
		if err := p.Claim(n); err != nil {
			errs = append(errs, &ClaimError{Number: n, Err: err})
			continue
		}
		claimed = append(claimed, n)
	}
	return claimed, errs
}

// Unclaim releases the given numbers. Releasing a number that is not claimed
// is a no-op.
func (p *Pool) Unclaim(numbers ...int) {
	for _, n := range numbers {
		delete(p.claimed, n)
	}
}

// IsClaimed reports whether n is currently claimed.
func (p *Pool) IsClaimed(n int) bool {
	_, ok := p.claimed[n]
	return ok
}

// Claimed returns the claimed numbers in ascending order.
func (p *Pool) Claimed() []int {
	out := make([]int, 0, len(p.claimed))
	for n := range p.claimed {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Free returns how many numbers remain unclaimed.
func (p *Pool) Free() int {
	return p.max - p.min + 1 - len(p.claimed)
}

type poolJSON struct {
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Claimed []int `json:"claimed"`
}

// MarshalJSON serializes the pool for storage inside its owning lot document.
func (p *Pool) MarshalJSON() ([]byte, error) {
	return json.Marshal(poolJSON{Min: p.min, Max: p.max, Claimed: p.Claimed()})
}

// UnmarshalJSON restores a pool, re-checking bounds and duplicates.
func (p *Pool) UnmarshalJSON(data []byte) error {
	var raw poolJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored, err := New(raw.Min, raw.Max)
	if err != nil {
		return err
	}
	for _, n := range raw.Claimed {
		if err := restored.Claim(n); err != nil {
			return fmt.Errorf("restore claimed number %d: %w", n, err)
		}
	}
	*p = *restored
	return nil
}
