package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/roster/internal/domain/model"
)

// ErrVerification marks a broken ordering or identity guarantee.
var ErrVerification = errors.New("verification failed")

// verify checks the server state after all attempts have finished:
//   - every request got the expected status
//   - created ids are unique, above the baseline and increase per worker
//   - the list grew by exactly the number of created records, in id order
//   - every created record reads back unchanged by id
func verify(ctx context.Context, client *Client, before listResponse, attempts []attempt, stats *Stats) error {
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d requests failed", ErrVerification, stats.Failed)
	}

	lastBefore := 0
	if n := len(before.Students); n > 0 {
		lastBefore = before.Students[n-1].ID
	}

	seen := make(map[int]bool, stats.Created)
	lastByWorker := make(map[int]int)
	for _, a := range attempts {
		if !a.valid {
			continue
		}
		id := a.student.ID
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %d", ErrVerification, id)
		}
		seen[id] = true
		if id <= lastBefore {
			return fmt.Errorf("%w: id %d not above baseline %d", ErrVerification, id, lastBefore)
		}
		if id <= lastByWorker[a.worker] {
			return fmt.Errorf("%w: worker %d saw id %d after %d", ErrVerification, a.worker, id, lastByWorker[a.worker])
		}
		lastByWorker[a.worker] = id
		if !samePayload(a.student, a.payload) {
			return fmt.Errorf("%w: record %d does not match its payload", ErrVerification, id)
		}
	}

	after, err := client.List(ctx)
	if err != nil {
		return err
	}
	if want := before.Count + stats.Created; after.Count != want || len(after.Students) != want {
		return fmt.Errorf("%w: expected %d records, listed %d", ErrVerification, want, after.Count)
	}
	for i := 1; i < len(after.Students); i++ {
		if after.Students[i].ID <= after.Students[i-1].ID {
			return fmt.Errorf("%w: list out of order at position %d", ErrVerification, i)
		}
	}

	for _, a := range attempts {
		if !a.valid {
			continue
		}
		got, status, err := client.Get(ctx, a.student.ID)
		if err != nil {
			return err
		}
		if status != http.StatusOK || !got.CreatedAt.Equal(a.student.CreatedAt) || !samePayload(got, a.payload) {
			return fmt.Errorf("%w: GET /students/%d returned %d %+v", ErrVerification, a.student.ID, status, got)
		}
		stats.Verified++
	}

	return nil
}

func samePayload(s model.Student, p model.NewStudent) bool {
	p = p.Normalize()
	return s.Name == p.Name && s.Year == p.Year && s.Section == p.Section
}
