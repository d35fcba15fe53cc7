// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField reports an absent or blank required field.
var ErrMissingField = errors.New("missing required field")

// Student is an enrolled student record. Records are never mutated once stored.
type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Year      string    `json:"year"` // year level, e.g. "1st Year"
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStudent is the create payload.
type NewStudent struct {
	Name    string `json:"name"`
	Year    string `json:"year"`
	Section string `json:"section"`
}

// Normalize returns a copy with surrounding whitespace removed.
func (n NewStudent) Normalize() NewStudent {
	return NewStudent{
		Name:    strings.TrimSpace(n.Name),
		Year:    strings.TrimSpace(n.Year),
		Section: strings.TrimSpace(n.Section),
	}
}

// Validate checks that every field is present after trimming. The first
// missing field is named in the error.
func (n NewStudent) Validate() error {
	n = n.Normalize()
	switch {
	case n.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case n.Year == "":
		return fmt.Errorf("%w: year", ErrMissingField)
	case n.Section == "":
		return fmt.Errorf("%w: section", ErrMissingField)
	}
	return nil
}
