package repository

import (
	"time"

	"github.com/okian/roster/internal/domain/model"
)

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock sets the time source used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed creates the given records, in order, when the store is built.
func WithSeed(seed ...model.NewStudent) Option {
	return func(s *MemStore) {
		s.seed = append(s.seed, seed...)
	}
}

// DefaultSeed returns the two records a fresh roster starts with.
func DefaultSeed() []model.NewStudent {
	return []model.NewStudent{
		{Name: "Juan Dela Cruz", Year: "1st Year", Section: "A"},
		{Name: "Maria Santos", Year: "2nd Year", Section: "B"},
	}
}
