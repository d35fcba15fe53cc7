package probe

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/roster/pkg/logger"
)

// Run executes a complete probe against cfg.BaseURL and returns its stats.
// It fails when any verification does not hold.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("probe")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting roster probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.Students),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := client.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("baseline listing failed: %w", err)
	}
	stats.Baseline = before.Count

	attempts := generateAttempts(cfg)
	submit(ctx, client, cfg, attempts, log)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	tally(attempts, stats)

	if err := verify(ctx, client, before, attempts, stats); err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submit sends every attempt through a pool of cfg.Workers goroutines and
// records the outcome in place.
func submit(ctx context.Context, client *Client, cfg *Config, attempts []attempt, log logger.Logger) {
	workers := max(cfg.Workers, 1)
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				a := &attempts[i]
				a.worker = worker
				a.student, a.status, a.err = client.Create(ctx, a.payload)
				if cfg.Verbose {
					log.Debug(ctx, "create",
						logger.Int("worker", worker),
						logger.Int("status", a.status),
						logger.Int("id", a.student.ID),
					)
				}
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for i := range attempts {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
}

func tally(attempts []attempt, stats *Stats) {
	for _, a := range attempts {
		if a.status == 0 && a.err == nil {
			continue // never sent
		}
		stats.Submitted++
		switch {
		case a.err != nil:
			stats.Failed++
		case a.valid && a.status == http.StatusCreated:
			stats.Created++
		case !a.valid && a.status == http.StatusBadRequest:
			stats.Rejected++
		default:
			stats.Failed++
		}
	}
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Created+stats.Rejected) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("baseline", stats.Baseline),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
