package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.FixedZone("PHT", 8*3600))

func newSeededStore(t *testing.T) *MemStore {
	t.Helper()
	s, err := NewMemStore(context.Background(),
		WithSeed(DefaultSeed()...),
		WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("NewMemStore: %v", err)
	}
	return s
}

func TestMemStore_Seed(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	if n := s.Count(ctx); n != 2 {
		t.Fatalf("expected 2 seeded records, got %d", n)
	}
	got := s.List(ctx)
	if got[0].ID != 1 || got[0].Name != "Juan Dela Cruz" || got[0].Year != "1st Year" || got[0].Section != "A" {
		t.Errorf("unexpected first seed: %+v", got[0])
	}
	if got[1].ID != 2 || got[1].Name != "Maria Santos" || got[1].Year != "2nd Year" || got[1].Section != "B" {
		t.Errorf("unexpected second seed: %+v", got[1])
	}
	if !got[0].CreatedAt.Equal(fixedNow) || got[0].CreatedAt.Location() != time.UTC {
		t.Errorf("expected created_at %v in UTC, got %v", fixedNow, got[0].CreatedAt)
	}
}

func TestMemStore_EmptyStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemStore(ctx)
	if err != nil {
		t.Fatalf("NewMemStore: %v", err)
	}
	if n := s.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
	if list := s.List(ctx); len(list) != 0 {
		t.Errorf("expected empty list, got %d records", len(list))
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_InvalidSeed(t *testing.T) {
	_, err := NewMemStore(context.Background(), WithSeed(model.NewStudent{Name: "No Section", Year: "1st Year"}))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a bad seed, got %v", err)
	}
}

func TestMemStore_CreateAssignsNextID(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	rec, err := s.Create(ctx, model.NewStudent{Name: "Alice", Year: "1st Year", Section: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 3 {
		t.Errorf("expected id 3, got %d", rec.ID)
	}
	if n := len(s.List(ctx)); n != 3 {
		t.Errorf("expected 3 records, got %d", n)
	}
	got, err := s.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if got != rec {
		t.Errorf("Get(3) = %+v, want %+v", got, rec)
	}
}

func TestMemStore_CreateTrimsInput(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	rec, err := s.Create(ctx, model.NewStudent{Name: "  Bea ", Year: " 3rd Year", Section: "C  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Bea" || rec.Year != "3rd Year" || rec.Section != "C" {
		t.Errorf("expected trimmed fields, got %+v", rec)
	}
}

func TestMemStore_CreateValidation(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	cases := []model.NewStudent{
		{Name: "", Year: "1st Year", Section: "A"},
		{Name: "Alice", Year: "", Section: "A"},
		{Name: "Alice", Year: "1st Year", Section: ""},
		{Name: "   ", Year: "1st Year", Section: "A"},
		{},
	}
	for i, in := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := s.Create(ctx, in)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !errors.Is(err, model.ErrMissingField) {
				t.Errorf("expected the missing field cause, got %v", err)
			}
			if n := s.Count(ctx); n != 2 {
				t.Errorf("store changed on invalid input: count %d", n)
			}
		})
	}

	// A rejected create does not consume an id.
	rec, err := s.Create(ctx, model.NewStudent{Name: "Alice", Year: "1st Year", Section: "A"})
	if err != nil || rec.ID != 3 {
		t.Errorf("expected id 3 after rejected creates, got %d (%v)", rec.ID, err)
	}
}

func TestMemStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	for _, id := range []int{99, 0, -1, 3} {
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%d): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestMemStore_IDsStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	const n = 50
	last := 2
	for i := 0; i < n; i++ {
		rec, err := s.Create(ctx, model.NewStudent{Name: fmt.Sprintf("Student %d", i), Year: "1st Year", Section: "A"})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if rec.ID <= last {
			t.Fatalf("id %d not greater than previous %d", rec.ID, last)
		}
		last = rec.ID
	}

	list := s.List(ctx)
	if len(list) != n+2 {
		t.Fatalf("expected %d records, got %d", n+2, len(list))
	}
	for i, rec := range list {
		if rec.ID != i+1 {
			t.Errorf("position %d holds id %d, want insertion order", i, rec.ID)
		}
	}
}

func TestMemStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	list := s.List(ctx)
	list[0].Name = "Changed"

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got.Name != "Juan Dela Cruz" {
		t.Errorf("stored record mutated through List: %q", got.Name)
	}
}

func TestMemStore_ConcurrentCreateAndRead(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	const writers, perWriter = 8, 100
	var wg sync.WaitGroup
	ids := make(chan int, writers*perWriter)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec, err := s.Create(ctx, model.NewStudent{
					Name:    fmt.Sprintf("w%d-%d", w, i),
					Year:    "1st Year",
					Section: "A",
				})
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				ids <- rec.ID
			}
		}(w)
	}

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				list := s.List(ctx)
				for i, rec := range list {
					if rec.ID != i+1 {
						t.Errorf("reader saw id %d at position %d", rec.ID, i)
						return
					}
				}
				if len(list) > 0 {
					if _, err := s.Get(ctx, len(list)); err != nil {
						t.Errorf("Get(%d) on a published prefix: %v", len(list), err)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()
	close(ids)

	seen := make(map[int]bool, writers*perWriter)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if n := s.Count(ctx); n != writers*perWriter+2 {
		t.Errorf("expected %d records, got %d", writers*perWriter+2, n)
	}
}

func studentsGauge(t *testing.T) float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "roster_students_total" && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("roster_students_total not registered")
	return 0
}

func TestMemStore_ConcurrentCreatesLeaveGaugeAtCount(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := s.Create(ctx, model.NewStudent{
					Name:    fmt.Sprintf("g%d-%d", w, i),
					Year:    "2nd Year",
					Section: "B",
				}); err != nil {
					t.Errorf("create: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	want := 2 + writers*perWriter
	if got := s.Count(ctx); got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	if got := studentsGauge(t); got != float64(want) {
		t.Errorf("students gauge = %v, want %d", got, want)
	}
}
