// Package probe drives a running roster server over HTTP and checks that its
// records keep their ordering and identity guarantees under concurrent load.
package probe

import (
	"time"

	"github.com/okian/roster/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Students     int           // Number of valid students to create
	InvalidEvery int           // Every n-th request omits a field; below 2 disables
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Log every request
}

// Stats holds probe statistics.
type Stats struct {
	Baseline  int // records present before the run
	Submitted int
	Created   int
	Rejected  int // 400 responses to deliberately invalid payloads
	Failed    int // transport errors and unexpected statuses
	Verified  int // records checked by GET /students/{id}
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// attempt is one create request as generated and its outcome.
type attempt struct {
	worker  int
	payload model.NewStudent
	valid   bool
	status  int
	student model.Student
	err     error
}

type listResponse struct {
	Status   string          `json:"status"`
	Count    int             `json:"count"`
	Students []model.Student `json:"students"`
}

type createResponse struct {
	Message string        `json:"message"`
	Student model.Student `json:"student"`
}
