package tsk

import (
	"context"

	"github.com/abevier/trycatch/futures"
)

// TaskFuture pairs a submitted task with the Future its result will be delivered through.
type TaskFuture[T any, R any] struct {
	Ctx    context.Context
	Task   T
	Future *futures.Future[R]
}

func NewTaskFuture[T any, R any](ctx context.Context, task T) TaskFuture[T, R] {
	return TaskFuture[T, R]{
		Ctx:    ctx,
		Task:   task,
		Future: futures.New[R](),
	}
}

// Settle completes or fails the Future depending on err.
func (tf TaskFuture[T, R]) Settle(r R, err error) {
	if err != nil {
		tf.Future.Fail(err)
		return
	}
	tf.Future.Complete(r)
}
