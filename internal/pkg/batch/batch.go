// Package batch carries the partial-failure accumulator shared by batch
// operations: successful elements are committed, failing elements are
// reported individually, and the batch as a whole never rolls back.
package batch

import "fmt"

// ItemError ties a failure to the batch element that caused it. Ref
// identifies the element (an id, a spot number, or an index).
type ItemError struct {
	Ref string
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}
