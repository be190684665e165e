package taskqueue

import (
	"errors"

	"github.com/abevier/trycatch/internal/tsk"
)

var (
	ErrQueueFull = tsk.ErrQueueFull
	ErrClosed    = errors.New("task queue has been closed")
)
