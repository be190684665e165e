// Package batch groups individually submitted tasks into batches that are run together.
// A batch runs when it reaches Opts.MaxSize tasks or when Opts.MaxLinger has elapsed
// since its first task was added, whichever comes first.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abevier/trycatch/closewaiter"
	"github.com/abevier/trycatch/futures"
	"github.com/abevier/trycatch/internal/tsk"
	"github.com/abevier/trycatch/results"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("tsk/batch")

var (
	ErrBatchResultMismatch = errors.New("batch run returned a different number of results than tasks")
	ErrClosed              = errors.New("batch executor has been closed")
)

// RunFunction processes a batch. It must return one result per task, in task order,
// or an error that fails every task in the batch.
type RunFunction[T any, R any] func(tasks []T) ([]results.Result[R, error], error)

type batch[T any, R any] struct {
	id    int
	tasks []tsk.TaskFuture[T, R]
	timer *time.Timer
}

type Executor[T any, R any] struct {
	m            sync.Mutex
	sequenceNum  int
	currentBatch *batch[T, R]

	run       RunFunction[T, R]
	maxSize   int
	maxLinger time.Duration

	cw      *closewaiter.CloseWaiter
	running sync.WaitGroup
}

func NewExecutor[T any, R any](opts Opts, run RunFunction[T, R]) *Executor[T, R] {
	opts.validate()

	return &Executor[T, R]{
		run:       run,
		maxSize:   opts.MaxSize,
		maxLinger: opts.MaxLinger,
		cw:        closewaiter.New(),
	}
}

// Submit adds task to the current batch and blocks until the batch has run or ctx is canceled.
func (be *Executor[T, R]) Submit(ctx context.Context, task T) (R, error) {
	return be.SubmitF(ctx, task).Get(ctx)
}

// SubmitF adds task to the current batch and returns a Future for its result.
func (be *Executor[T, R]) SubmitF(ctx context.Context, task T) *futures.Future[R] {
	tf := tsk.NewTaskFuture[T, R](ctx, task)

	if err := be.cw.Do(func() { be.addTask(tf) }); err != nil {
		tf.Future.Fail(ErrClosed)
	}

	return tf.Future
}

func (be *Executor[T, R]) addTask(tf tsk.TaskFuture[T, R]) {
	be.m.Lock()
	defer be.m.Unlock()

	if be.currentBatch == nil {
		be.currentBatch = be.newBatch()
	}
	be.currentBatch.tasks = append(be.currentBatch.tasks, tf)

	if len(be.currentBatch.tasks) >= be.maxSize {
		be.currentBatch.timer.Stop()
		be.startBatch(be.currentBatch)
		be.currentBatch = nil
	}
}

func (be *Executor[T, R]) newBatch() *batch[T, R] {
	be.sequenceNum++

	b := &batch[T, R]{
		id:    be.sequenceNum,
		tasks: make([]tsk.TaskFuture[T, R], 0, be.maxSize),
	}

	id := b.id
	b.timer = time.AfterFunc(be.maxLinger, func() { be.expireBatch(id) })
	return b
}

func (be *Executor[T, R]) expireBatch(batchID int) {
	be.m.Lock()
	defer be.m.Unlock()

	if be.currentBatch != nil && be.currentBatch.id == batchID {
		be.startBatch(be.currentBatch)
		be.currentBatch = nil
	}
}

// startBatch must be called with be.m held.
func (be *Executor[T, R]) startBatch(b *batch[T, R]) {
	be.running.Add(1)
	go func() {
		defer be.running.Done()
		be.runBatch(b)
	}()
}

func (be *Executor[T, R]) runBatch(b *batch[T, R]) {
	live := b.tasks[:0:0]
	for _, tf := range b.tasks {
		if err := tf.Ctx.Err(); err != nil {
			tf.Future.Fail(err)
			continue
		}
		live = append(live, tf)
	}
	if len(live) == 0 {
		return
	}

	tasks := make([]T, len(live))
	for i, tf := range live {
		tasks[i] = tf.Task
	}

	log.Debugw("running batch", "batch", b.id, "size", len(tasks))

	rs, err := be.safeRun(tasks)
	if err == nil && len(rs) != len(tasks) {
		err = fmt.Errorf("%w: %d tasks, %d results", ErrBatchResultMismatch, len(tasks), len(rs))
	}
	if err != nil {
		log.Debugw("batch failed", "batch", b.id, "error", err)
		for _, tf := range live {
			tf.Future.Fail(err)
		}
		return
	}

	for i, r := range rs {
		live[i].Settle(results.Unwrap(r))
	}
}

func (be *Executor[T, R]) safeRun(tasks []T) (rs []results.Result[R, error], err error) {
	defer func() {
		if r := recover(); r != nil {
			rs, err = nil, &futures.PanicError{Value: r}
		}
	}()

	return be.run(tasks)
}

// Close stops accepting tasks, runs the pending partial batch immediately and waits for all
// batches to finish. It is safe to call Close more than once.
func (be *Executor[T, R]) Close() {
	be.cw.Close(func() {
		be.m.Lock()
		defer be.m.Unlock()

		if be.currentBatch != nil {
			be.currentBatch.timer.Stop()
			be.startBatch(be.currentBatch)
			be.currentBatch = nil
		}
	})

	be.running.Wait()
}
