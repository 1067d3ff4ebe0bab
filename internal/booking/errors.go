package booking

import (
	"errors"
	"strings"
)

var (
	// ErrCarNotFound means the requested car does not exist in the catalog
	ErrCarNotFound = errors.New("car not found")
	// ErrBookingNotFound means the booking does not exist
	ErrBookingNotFound = errors.New("booking not found")
	// ErrConflict means the car was booked for an overlapping range between
	// the advisory check and the submit
	ErrConflict = errors.New("car already booked for this date range")
	// ErrNotOwner means the caller does not own the booking
	ErrNotOwner = errors.New("booking belongs to another user")
	// ErrAlreadyFinished means the booking is completed or cancelled and can
	// no longer be changed
	ErrAlreadyFinished = errors.New("booking already completed or cancelled")
)

// ValidationError carries the field-level reasons a request was rejected
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
