package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abevier/trycatch/batch"
	"github.com/abevier/trycatch/futures"
	"github.com/abevier/trycatch/ratelimiter"
	"github.com/abevier/trycatch/results"
	"github.com/abevier/trycatch/taskqueue"
	"github.com/abevier/trycatch/trycatch"
)

type runConfig struct {
	Workers    int
	QueueDepth int
	Rate       time.Duration
	BatchSize  int
	Linger     time.Duration
	FailEvery  int
	PanicEvery int
}

type submitter interface {
	SubmitF(ctx context.Context, task int) *futures.Future[int]
	Close()
}

type line struct {
	Task   int                      `json:"task"`
	Result results.Result[int, any] `json:"result"`
}

func (cfg runConfig) validate() error {
	switch {
	case cfg.Workers < 1:
		return fmt.Errorf("--workers must be at least 1, got %d", cfg.Workers)
	case cfg.QueueDepth < 0:
		return fmt.Errorf("--queue-depth must not be negative, got %d", cfg.QueueDepth)
	case cfg.Rate < 0:
		return fmt.Errorf("--rate must not be negative, got %s", cfg.Rate)
	case cfg.BatchSize < 0:
		return fmt.Errorf("--batch-size must not be negative, got %d", cfg.BatchSize)
	case cfg.BatchSize > 1 && cfg.Linger <= 0:
		return fmt.Errorf("--linger must be positive when batching, got %s", cfg.Linger)
	case cfg.FailEvery < 0 || cfg.PanicEvery < 0:
		return fmt.Errorf("--fail-every and --panic-every must not be negative")
	}
	return nil
}

func (cfg runConfig) work(n int) (int, error) {
	if cfg.PanicEvery > 0 && (n+1)%cfg.PanicEvery == 0 {
		panic(fmt.Sprintf("task %d panicked", n))
	}
	if cfg.FailEvery > 0 && (n+1)%cfg.FailEvery == 0 {
		return 0, fmt.Errorf("task %d failed", n)
	}
	return n * n, nil
}

func (cfg runConfig) newSubmitter() submitter {
	run := func(ctx context.Context, n int) (int, error) {
		return cfg.work(n)
	}

	switch {
	case cfg.BatchSize > 1:
		return batch.NewExecutor(batch.Opts{MaxSize: cfg.BatchSize, MaxLinger: cfg.Linger},
			func(tasks []int) ([]results.Result[int, error], error) {
				rs := make([]results.Result[int, error], len(tasks))
				for i, n := range tasks {
					rs[i] = trycatch.Await[int, error](context.Background(), futures.FromFunc(func() (int, error) {
						return cfg.work(n)
					}))
				}
				return rs, nil
			})
	case cfg.Rate > 0:
		return ratelimiter.New(ratelimiter.Opts{
			Limit:         ratelimiter.Every(cfg.Rate),
			Burst:         1,
			MaxQueueDepth: cfg.QueueDepth,
		}, run)
	default:
		return taskqueue.New(taskqueue.Opts{
			MaxWorkers:    cfg.Workers,
			MaxQueueDepth: cfg.QueueDepth,
		}, run)
	}
}

// runTasks submits count tasks, settles each into a tagged result and writes them to w
// as JSON lines in submission order.
func runTasks(ctx context.Context, cfg runConfig, count int, w io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	s := cfg.newSubmitter()
	defer s.Close()

	pending := make([]*futures.Future[results.Result[int, any]], 0, count)
	for i := 0; i < count; i++ {
		pending = append(pending, trycatch.Wrap[int, any](s.SubmitF(ctx, i)))
	}

	enc := json.NewEncoder(w)
	failed := 0
	for i, p := range pending {
		r, err := p.Get(ctx)
		if err != nil {
			return fmt.Errorf("waiting for task %d: %w", i, err)
		}
		if !r.Success {
			failed++
		}
		if err := enc.Encode(line{Task: i, Result: r}); err != nil {
			return fmt.Errorf("writing result for task %d: %w", i, err)
		}
	}

	log.Infow("tasks settled", "total", count, "failed", failed)
	return nil
}
