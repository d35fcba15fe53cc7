// Package service provides the roster service that owns the student store
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/adapters/importer"
	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// ImportResult reports the outcome of a spreadsheet import.
type ImportResult struct {
	Imported []model.Student `json:"students"`
	Skipped  []SkippedRow    `json:"skipped"`
}

// SkippedRow names a spreadsheet row that was not imported and why.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// running holds what exists only between Start and Stop.
type running struct {
	store     repository.Store
	startedAt time.Time
}

// Service owns the student record store for the process lifetime.
type Service struct {
	mu sync.Mutex // serializes Start and Stop

	state atomic.Pointer[running]

	// Configuration
	store         repository.Store
	seed          []model.NewStudent
	now           func() time.Time
	importMaxRows int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore makes Start use store as-is instead of building a seeded MemStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithSeed replaces the default seed records. WithSeed() disables seeding.
func WithSeed(seed ...model.NewStudent) Option {
	return func(s *Service) {
		s.seed = append([]model.NewStudent{}, seed...)
	}
}

// WithClock sets the time source for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithImportMaxRows caps the data rows accepted from one spreadsheet.
func WithImportMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.importMaxRows = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seed:          repository.DefaultSeed(),
		now:           time.Now,
		importMaxRows: 5_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and seeds the store. Calling Start on a running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() != nil {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting roster service...")

	store := s.store
	if store == nil {
		mem, err := repository.NewMemStore(ctx,
			repository.WithClock(s.now),
			repository.WithSeed(s.seed...),
		)
		if err != nil {
			return fmt.Errorf("build student store: %w", err)
		}
		store = mem
	}

	count := store.Count(ctx)
	metrics.UpdateStudentsTotal(count)
	s.state.Store(&running{store: store, startedAt: s.now()})

	s.logger.Info(ctx, "roster service started", logger.Int("students", count))
	return nil
}

// Stop releases the store. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Swap(nil) == nil {
		return
	}
	s.logger.Info(context.Background(), "roster service stopped")
}

func (s *Service) current() (*running, error) {
	r := s.state.Load()
	if r == nil {
		return nil, ErrNotStarted
	}
	return r, nil
}

// ListStudents returns all records in insertion order.
func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	r, err := s.current()
	if err != nil {
		return nil, err
	}
	return r.store.List(ctx), nil
}

// GetStudent returns one record or an error wrapping repository.ErrNotFound.
func (s *Service) GetStudent(ctx context.Context, id int) (model.Student, error) {
	r, err := s.current()
	if err != nil {
		return model.Student{}, err
	}
	rec, err := r.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordLookupNotFound()
		s.logger.Debug(ctx, "student not found", logger.Int("id", id))
	}
	return rec, err
}

// CreateStudent validates and stores a new record. Invalid input yields an
// error wrapping repository.ErrValidation.
func (s *Service) CreateStudent(ctx context.Context, in model.NewStudent) (model.Student, error) {
	r, err := s.current()
	if err != nil {
		return model.Student{}, err
	}

	rec, err := r.store.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			metrics.RecordValidationFailure()
			s.logger.Debug(ctx, "student rejected", logger.Error(err))
		}
		return model.Student{}, err
	}

	metrics.RecordStudentCreated()
	s.logger.Info(ctx, "student created",
		logger.Int("id", rec.ID),
		logger.String("year", rec.Year),
		logger.String("section", rec.Section),
	)
	return rec, nil
}

// ImportStudents creates one record per valid row of an xlsx workbook.
// Invalid rows are skipped and reported; the workbook as a whole fails only
// when it cannot be read. If a row fails for any other reason the import
// stops with an empty result; rows created before it stay stored.
func (s *Service) ImportStudents(ctx context.Context, r io.Reader) (ImportResult, error) {
	if _, err := s.current(); err != nil {
		return ImportResult{}, err
	}

	rows, err := importer.Parse(r, importer.WithMaxRows(s.importMaxRows))
	if err != nil {
		return ImportResult{}, fmt.Errorf("import students: %w", err)
	}

	res := ImportResult{
		Imported: make([]model.Student, 0, len(rows)),
		Skipped:  []SkippedRow{},
	}
	for _, row := range rows {
		rec, err := s.CreateStudent(ctx, row.Student)
		if err != nil {
			if !errors.Is(err, repository.ErrValidation) {
				s.logger.Warn(ctx, "import aborted",
					logger.Int("row", row.Number),
					logger.Int("created", len(res.Imported)),
					logger.Error(err),
				)
				return ImportResult{}, fmt.Errorf("import row %d: %w", row.Number, err)
			}
			res.Skipped = append(res.Skipped, SkippedRow{Row: row.Number, Reason: err.Error()})
			continue
		}
		res.Imported = append(res.Imported, rec)
	}

	metrics.RecordImportRows(metrics.ImportImported, len(res.Imported))
	metrics.RecordImportRows(metrics.ImportSkipped, len(res.Skipped))
	s.logger.Info(ctx, "students imported",
		logger.Int("imported", len(res.Imported)),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	r := s.state.Load()
	stats := map[string]interface{}{
		"started": r != nil,
	}
	if r == nil {
		return stats
	}

	// Ids are dense, so the last id equals the count.
	count := r.store.Count(context.Background())
	stats["totalStudents"] = count
	stats["lastID"] = count
	stats["startedAt"] = r.startedAt.UTC().Format(time.RFC3339)

	metrics.UpdateStudentsTotal(count)
	return stats
}
