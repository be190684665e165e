// Package closewaiter guards a resource, typically a channel, that must not be
// closed while callers may still be using it.
package closewaiter

import (
	"errors"
	"runtime"
	"sync/atomic"
)

var (
	ErrClosed = errors.New("closed")
)

// CloseWaiter admits calls through Do until Close is called. Close waits for every
// admitted call to return before running its release function exactly once.
type CloseWaiter struct {
	isClosed  atomic.Bool
	activeCnt atomic.Int32

	closed chan struct{}
}

func New() *CloseWaiter {
	return &CloseWaiter{
		closed: make(chan struct{}),
	}
}

// Do runs f unless Close has been called, in which case it returns ErrClosed.
func (c *CloseWaiter) Do(f func()) error {
	c.activeCnt.Add(1)
	defer c.activeCnt.Add(-1)

	if c.isClosed.Load() {
		return ErrClosed
	}

	f()
	return nil
}

// IsClosed reports whether Close has been called.
func (c *CloseWaiter) IsClosed() bool {
	return c.isClosed.Load()
}

// Close stops admitting new calls to Do, waits for in-flight calls to exit and then runs release.
// Only the first call runs release; every call blocks until it has completed.
func (c *CloseWaiter) Close(release func()) {
	if c.isClosed.CompareAndSwap(false, true) {
		go func() {
			for c.activeCnt.Load() != 0 {
				// yield while calls to Do drain
				runtime.Gosched()
			}

			if release != nil {
				release()
			}

			close(c.closed)
		}()
	}

	<-c.closed
}
