package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTicketCodeConflict means the generated code collided with an
	// existing ticket. Callers retry with a fresh code.
	ErrTicketCodeConflict = errors.New("ticket code already exists")

	// ErrSeatTaken means another ticket holds the same seat on the same
	// bus. Not retryable without picking a different seat.
	ErrSeatTaken = errors.New("seat already booked for this bus")

	ErrTicketNotFound = errors.New("ticket not found")
)

// ValidationError reports which mandatory issuance fields are absent or
// malformed. No storage is touched when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
