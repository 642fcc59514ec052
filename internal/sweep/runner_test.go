package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amorim-studio/salon-bookings/internal/sweep"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRunnerRunsImmediatelyAndTicks(t *testing.T) {
	job := &countingJob{name: "counting"}
	r := sweep.NewRunner()
	r.Add(job, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	// One immediate pass plus a few ticks.
	if got := job.runs.Load(); got < 3 {
		t.Errorf("runs = %d, want at least 3", got)
	}
}

func TestRunnerKeepsTickingAfterFailure(t *testing.T) {
	job := &countingJob{name: "flaky", err: errors.New("boom")}
	r := sweep.NewRunner()
	r.Add(job, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	if got := job.runs.Load(); got < 2 {
		t.Errorf("runs = %d, want at least 2 despite errors", got)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	job := &countingJob{name: "counting"}
	r := sweep.NewRunner()
	r.Add(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
