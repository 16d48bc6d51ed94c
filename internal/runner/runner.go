// Package runner simulates several portfolios concurrently, one task per
// portfolio, and supersedes stale requests.
package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// ErrSuperseded is reported when a newer submission replaced a batch
// before it finished.
var ErrSuperseded = errors.New("superseded by a newer submission")

// Job is one portfolio to simulate.
type Job struct {
	Name   string
	Inputs model.Inputs
}

// Result is the complete outcome of one Job.
type Result struct {
	Name string
	Run  *backtest.Run
	Err  error
}

// Batch is every Result of one submission, in job order.
type Batch struct {
	Generation uint64
	Results    []Result
}

// Runner fans jobs out to a Simulator. Each submission gets a generation
// number; starting a new one cancels the previous and its results are
// never delivered.
type Runner struct {
	sim backtest.Simulator

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func New(sim backtest.Simulator) *Runner {
	return &Runner{sim: sim}
}

// Run simulates jobs concurrently and waits for all of them. Each task
// delivers its whole result as a single message.
func (r *Runner) Run(ctx context.Context, jobs []Job, exec model.ExecMode) []Result {
	type msg struct {
		idx int
		res Result
	}
	ch := make(chan msg, len(jobs))

	for i, job := range jobs {
		go func(i int, job Job) {
			run, err := r.sim.Simulate(ctx, job.Inputs, exec)
			if err != nil {
				logger.Warn(ctx, "portfolio simulation failed", "portfolio", job.Name, "error", err)
			}
			ch <- msg{idx: i, res: Result{Name: job.Name, Run: run, Err: err}}
		}(i, job)
	}

	out := make([]Result, len(jobs))
	for range jobs {
		m := <-ch
		out[m.idx] = m.res
	}
	return out
}

// Submit starts a new generation and cancels whatever was in flight. The
// returned channel yields the Batch once, or is closed empty if a later
// Submit superseded this one.
func (r *Runner) Submit(ctx context.Context, jobs []Job, exec model.ExecMode) <-chan Batch {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	out := make(chan Batch, 1)
	go func() {
		defer close(out)
		defer cancel()

		results := r.Run(ctx, jobs, exec)

		r.mu.Lock()
		current := r.gen == gen
		if current {
			r.cancel = nil
		}
		r.mu.Unlock()

		if !current {
			logger.Debug(ctx, "discarding stale batch", "generation", int64(gen))
			return
		}
		out <- Batch{Generation: gen, Results: results}
	}()
	return out
}

// Generation returns the number of the latest submission.
func (r *Runner) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Cancel aborts the in-flight submission, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

// Await blocks for a submission's batch. It returns ErrSuperseded when the
// batch was discarded and ctx.Err() when ctx ends first.
func Await(ctx context.Context, ch <-chan Batch) (Batch, error) {
	select {
	case b, ok := <-ch:
		if !ok {
			return Batch{}, ErrSuperseded
		}
		return b, nil
	case <-ctx.Done():
		return Batch{}, ctx.Err()
	}
}
