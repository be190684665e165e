package taskqueue

import "github.com/abevier/trycatch/internal/tsk"

// FullQueueStrategy is the type of behavior that should occur when too many items are submitted to the task queue
type FullQueueStrategy tsk.FullQueueStrategy

const (
	// BlockWhenFull exerts back pressure by blocking the caller until the queue has room.
	BlockWhenFull FullQueueStrategy = FullQueueStrategy(tsk.BlockWhenFull)
	// ErrorWhenFull immediately fails the submission with ErrQueueFull.
	ErrorWhenFull FullQueueStrategy = FullQueueStrategy(tsk.ErrorWhenFull)
)

// Opts is used to configure a TaskQueue via the New function.
type Opts struct {
	// MaxWorkers is the number of tasks that may run concurrently.
	MaxWorkers int
	// MaxQueueDepth is the number of submitted tasks that may wait for a free worker.
	MaxQueueDepth int
	// FullQueueStrategy determines the behavior when MaxQueueDepth is exceeded.
	// By default the caller is blocked.
	FullQueueStrategy FullQueueStrategy
}

func (o Opts) validate() {
	if o.MaxWorkers < 1 {
		panic("task queue max workers must be 1 or greater")
	}

	if o.MaxQueueDepth < 0 {
		panic("task queue max queue depth must be 0 or greater")
	}
}
