package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// Job is one periodic sweep. Jobs are idempotent by construction and safe to
// re-run on every tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type scheduled struct {
	job      Job
	interval time.Duration
}

// Runner drives sweep jobs on fixed tickers until the context is canceled.
type Runner struct {
	jobs []scheduled
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Add(job Job, interval time.Duration) {
	r.jobs = append(r.jobs, scheduled{job: job, interval: interval})
}

// Run blocks until ctx is canceled. Each job gets its own goroutine and
// ticker; a failing run is logged and the ticker keeps going.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, s := range r.jobs {
		wg.Add(1)
		go func(s scheduled) {
			defer wg.Done()
			r.loop(ctx, s)
		}(s)
	}
	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, s scheduled) {
	jobCtx := context.WithValue(ctx, logger.JobKey, s.job.Name())
	logger.InfoContext(jobCtx, "Sweep job started", "interval", s.interval.String())

	// First pass immediately so a restart doesn't wait a full interval.
	if err := s.job.Run(jobCtx); err != nil {
		logger.ErrorContext(jobCtx, "Sweep run failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(jobCtx, "Sweep job stopping")
			return
		case <-ticker.C:
			if err := s.job.Run(jobCtx); err != nil {
				logger.ErrorContext(jobCtx, "Sweep run failed", "error", err)
			}
		}
	}
}
