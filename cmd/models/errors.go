package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the stores when a slug, username or id does
// not resolve to a record.
var ErrNotFound = errors.New("record not found")

// ErrForbidden is returned when a requester tries to mutate content they
// do not own.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports a field that failed a persistence-boundary rule
// (empty required text, missing author, slug collision).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
