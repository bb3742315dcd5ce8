package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports which mandatory fields are absent from a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
