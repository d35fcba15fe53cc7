// Package repository defines the student record store, its in-memory
// implementation and errors.
package repository

import (
	"context"

	"github.com/okian/roster/internal/domain/model"
)

// Store provides read/write access to student records. Records are
// append-only: there is no update or delete.
type Store interface {
	// List returns every record in insertion order.
	List(ctx context.Context) []model.Student

	// Get returns the record with the given id.
	// Returns ErrNotFound if no record has that id.
	Get(ctx context.Context, id int) (model.Student, error)

	// Create validates in, assigns the next id and appends the record.
	// Returns ErrValidation and leaves the store unchanged on bad input.
	Create(ctx context.Context, in model.NewStudent) (model.Student, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
