// Package ratelimiter starts submitted tasks no faster than a configured rate.
package ratelimiter

import (
	"context"
	"errors"
	"sync"

	"github.com/abevier/trycatch/closewaiter"
	"github.com/abevier/trycatch/futures"
	"github.com/abevier/trycatch/internal/tsk"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/time/rate"
)

var log = logging.Logger("tsk/ratelimiter")

var (
	ErrQueueFull = tsk.ErrQueueFull
	ErrClosed    = errors.New("rate limiter has been closed")
)

type RunFunction[T any, R any] func(ctx context.Context, task T) (R, error)

type RateLimiter[T any, R any] struct {
	limiter  *rate.Limiter
	taskChan chan tsk.TaskFuture[T, R]

	submit tsk.SubmitFunction[T, R]
	run    RunFunction[T, R]

	cw       *closewaiter.CloseWaiter
	inFlight sync.WaitGroup
	stopped  chan struct{}
}

// New creates a RateLimiter that invokes run for submitted tasks, each in its own goroutine,
// once a token is available.
func New[T any, R any](opts Opts, run RunFunction[T, R]) *RateLimiter[T, R] {
	opts.validate()

	rl := &RateLimiter[T, R]{
		limiter:  rate.NewLimiter(opts.Limit, opts.Burst),
		taskChan: make(chan tsk.TaskFuture[T, R], opts.MaxQueueDepth),
		submit:   tsk.GetSubmitFunction[T, R](tsk.FullQueueStrategy(opts.FullQueueStrategy)),
		run:      run,
		cw:       closewaiter.New(),
		stopped:  make(chan struct{}),
	}

	log.Debugw("starting rate limiter", "limit", opts.Limit, "burst", opts.Burst,
		"queueDepth", opts.MaxQueueDepth, "whenFull", tsk.FullQueueStrategy(opts.FullQueueStrategy))

	go rl.dispatch()

	return rl
}

func (rl *RateLimiter[T, R]) dispatch() {
	defer close(rl.stopped)

	for tf := range rl.taskChan {
		if err := rl.limiter.Wait(tf.Ctx); err != nil {
			log.Debugw("task abandoned while waiting for a token", "error", err)
			tf.Future.Fail(err)
			continue
		}

		rl.inFlight.Add(1)
		go rl.runTask(tf)
	}
}

func (rl *RateLimiter[T, R]) runTask(tf tsk.TaskFuture[T, R]) {
	defer rl.inFlight.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Warnw("task panicked", "panic", r)
			tf.Future.Fail(&futures.PanicError{Value: r})
		}
	}()

	tf.Settle(rl.run(tf.Ctx, tf.Task))
}

// Submit runs task once the rate limit allows it and blocks until it completes or ctx is canceled.
func (rl *RateLimiter[T, R]) Submit(ctx context.Context, task T) (R, error) {
	return rl.SubmitF(ctx, task).Get(ctx)
}

// SubmitF enqueues task and returns a Future for its result.
func (rl *RateLimiter[T, R]) SubmitF(ctx context.Context, task T) *futures.Future[R] {
	tf := tsk.NewTaskFuture[T, R](ctx, task)
	if rl.cw.IsClosed() {
		log.Debugw("rejecting task submitted after close")
		tf.Future.Fail(ErrClosed)
		return tf.Future
	}

	err := rl.cw.Do(func() {
		if err := rl.submit(rl.taskChan, tf); err != nil {
			tf.Future.Fail(err)
		}
	})
	if err != nil {
		tf.Future.Fail(ErrClosed)
	}

	return tf.Future
}

// Close stops accepting tasks and waits for queued and running tasks to finish.
// Calling Close more than once is safe.
func (rl *RateLimiter[T, R]) Close() {
	rl.cw.Close(func() {
		close(rl.taskChan)
	})

	<-rl.stopped
	rl.inFlight.Wait()
}
