package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

// MemStore is an in-memory, append-only Store.
//
// Writers are serialized by mu and append to records. After every append the
// writer publishes the new slice header through snapshot; readers load the
// header without locking and see a stable prefix of the sequence. Elements
// below a published length are never written again, so a reader holding an
// old header is unaffected by later appends or reallocation.
type MemStore struct {
	mu      sync.Mutex
	records []model.Student // guarded by mu

	snapshot atomic.Pointer[[]model.Student]

	now  func() time.Time
	seed []model.NewStudent
}

var _ Store = (*MemStore)(nil)

// NewMemStore constructs a store and creates any seed records.
func NewMemStore(ctx context.Context, opts ...Option) (*MemStore, error) {
	s := &MemStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	empty := []model.Student{}
	s.snapshot.Store(&empty)

	for i, in := range s.seed {
		if _, err := s.Create(ctx, in); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i+1, err)
		}
	}
	s.seed = nil
	return s, nil
}

func (s *MemStore) load() []model.Student {
	return *s.snapshot.Load()
}

// List returns a copy of all records in insertion order.
func (s *MemStore) List(_ context.Context) []model.Student {
	defer observe(metrics.OpList, time.Now())
	return slices.Clone(s.load())
}

// Get scans the snapshot for id.
func (s *MemStore) Get(_ context.Context, id int) (model.Student, error) {
	defer observe(metrics.OpGet, time.Now())
	for _, rec := range s.load() {
		if rec.ID == id {
			return rec, nil
		}
	}
	return model.Student{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Create appends a validated record with id = count+1 and updates the
// students gauge.
func (s *MemStore) Create(_ context.Context, in model.NewStudent) (model.Student, error) {
	defer observe(metrics.OpCreate, time.Now())

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Student{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.Student{
		ID:        len(s.records) + 1,
		Name:      in.Name,
		Year:      in.Year,
		Section:   in.Section,
		CreatedAt: s.now().UTC(),
	}
	s.records = append(s.records, rec)
	published := s.records[:len(s.records):len(s.records)]
	s.snapshot.Store(&published)
	// Set under mu so concurrent creators cannot leave a lower count behind.
	metrics.UpdateStudentsTotal(len(published))
	return rec, nil
}

// Count returns the number of published records.
func (s *MemStore) Count(_ context.Context) int {
	return len(s.load())
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
