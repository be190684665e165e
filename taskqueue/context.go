package taskqueue

import (
	"context"
	"fmt"
)

type contextKey int

const workerIDKey contextKey = iota

func workerName(id int) string {
	return fmt.Sprintf("worker-%d", id)
}

func withWorkerID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, workerIDKey, workerName(id))
}

// WorkerIDFromContext returns the name of the worker running the current task, such as "worker-0".
// It is only present in contexts handed to a RunFunction.
func WorkerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(workerIDKey).(string)
	return v, ok
}
