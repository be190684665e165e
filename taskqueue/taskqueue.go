// Package taskqueue runs submitted tasks on a fixed number of workers. Every
// submission is represented by a futures.Future, so outcomes can be awaited
// directly or settled into tagged results with the trycatch package.
package taskqueue

import (
	"context"
	"sync"

	"github.com/abevier/trycatch/closewaiter"
	"github.com/abevier/trycatch/futures"
	"github.com/abevier/trycatch/internal/tsk"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("tsk/taskqueue")

// RunFunction is invoked by a worker for every task. The context carries the worker id.
type RunFunction[T any, R any] func(ctx context.Context, task T) (R, error)

type TaskQueue[T any, R any] struct {
	run      RunFunction[T, R]
	taskChan chan tsk.TaskFuture[T, R]
	submit   tsk.SubmitFunction[T, R]

	cw       *closewaiter.CloseWaiter
	waitStop sync.WaitGroup
}

// New starts opts.MaxWorkers workers that call run for every submitted task.
func New[T any, R any](opts Opts, run RunFunction[T, R]) *TaskQueue[T, R] {
	opts.validate()

	tq := &TaskQueue[T, R]{
		run:      run,
		taskChan: make(chan tsk.TaskFuture[T, R], opts.MaxQueueDepth),
		submit:   tsk.GetSubmitFunction[T, R](tsk.FullQueueStrategy(opts.FullQueueStrategy)),
		cw:       closewaiter.New(),
	}

	log.Debugw("starting task queue", "workers", opts.MaxWorkers, "queueDepth", opts.MaxQueueDepth,
		"whenFull", tsk.FullQueueStrategy(opts.FullQueueStrategy))

	for i := 0; i < opts.MaxWorkers; i++ {
		tq.waitStop.Add(1)
		go tq.worker(i)
	}

	return tq
}

func (tq *TaskQueue[T, R]) worker(workerNum int) {
	defer tq.waitStop.Done()

	for tf := range tq.taskChan {
		if err := tf.Ctx.Err(); err != nil {
			tf.Future.Fail(err)
			continue
		}

		log.Debugw("running task", "worker", workerName(workerNum))
		tq.runTask(withWorkerID(tf.Ctx, workerNum), tf)
	}
}

func (tq *TaskQueue[T, R]) runTask(ctx context.Context, tf tsk.TaskFuture[T, R]) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnw("task panicked", "panic", r)
			tf.Future.Fail(&futures.PanicError{Value: r})
		}
	}()

	tf.Settle(tq.run(ctx, tf.Task))
}

// Submit runs task on the queue and blocks until it completes or ctx is canceled.
func (tq *TaskQueue[T, R]) Submit(ctx context.Context, task T) (R, error) {
	return tq.SubmitF(ctx, task).Get(ctx)
}

// SubmitF enqueues task and returns a Future for its result. Submission failures,
// such as ErrQueueFull or ErrClosed, are reported through the Future.
func (tq *TaskQueue[T, R]) SubmitF(ctx context.Context, task T) *futures.Future[R] {
	tf := tsk.NewTaskFuture[T, R](ctx, task)
	if tq.cw.IsClosed() {
		log.Debugw("rejecting task submitted after close")
		tf.Future.Fail(ErrClosed)
		return tf.Future
	}

	err := tq.cw.Do(func() {
		if err := tq.submit(tq.taskChan, tf); err != nil {
			tf.Future.Fail(err)
		}
	})
	if err != nil {
		tf.Future.Fail(ErrClosed)
	}

	return tf.Future
}

// Close stops accepting tasks, lets the workers drain the queue and waits for them to exit.
// It is safe to call Close more than once.
func (tq *TaskQueue[T, R]) Close() {
	tq.cw.Close(func() {
		close(tq.taskChan)
	})

	tq.waitStop.Wait()
}
