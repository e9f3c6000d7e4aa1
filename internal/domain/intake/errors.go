package intake

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an unknown surgery request id.
var ErrNotFound = errors.New("surgery request not found")

// ErrSurgeonNotMapped signals that a request's surgeon reference cannot be
// resolved to a facility practitioner. Surfaced distinctly so the operator
// knows to return the request instead of retrying.
var ErrSurgeonNotMapped = errors.New("surgeon reference is not mapped to a facility surgeon")

// ConflictError signals a transition attempted from a status that does not
// permit it. Handlers map it to 409.
type ConflictError struct {
	Op     string
	Status RequestStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %s", e.Op, e.Status)
}

// IsConflict reports whether err is a transition conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
