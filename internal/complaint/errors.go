package complaint

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no complaint has the requested tracking id.
	ErrNotFound = errors.New("complaint not found")

	// ErrIdentifierCollision means a store was asked to create a tracking id
	// that already exists. The sequence allocator makes this unreachable; seeing
	// it is an invariant violation.
	ErrIdentifierCollision = errors.New("tracking id collision")
)

// ValidationError describes bad caller input. No side effects have happened
// when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
