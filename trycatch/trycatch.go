// Package trycatch settles pending computations into tagged results.
//
// Instead of handling a failed computation through an error check at every
// await site, Wrap turns the outcome into a results.Result that can be stored,
// passed along, and branched on later. The returned Future never fails.
package trycatch

import (
	"context"

	"github.com/abevier/trycatch/futures"
	"github.com/abevier/trycatch/results"
)

// Pending is a computation that eventually settles with a value or an error.
// *futures.Future satisfies it.
type Pending[T any] interface {
	Get(ctx context.Context) (T, error)
}

// Wrap waits for p to settle and completes the returned Future with a
// results.Result describing the outcome. It waits indefinitely; cancelling p
// is up to whoever owns it.
//
// On failure the payload is the error p settled with. When p failed with a
// *futures.PanicError the raw panic value is used instead, provided it is an E.
// The payload is asserted to E without any checking: a payload that is not an
// E is recorded as E's zero value. Errors wrapped with %w are not unwrapped, so
// callers expecting wrapped errors should use E = error and errors.As.
func Wrap[T any, E any](p Pending[T]) *futures.Future[results.Result[T, E]] {
	f := futures.New[results.Result[T, E]]()

	go func() {
		f.Complete(Await[T, E](context.Background(), p))
	}()

	return f
}

// Of is Wrap with the failure payload kept as an error.
func Of[T any](p Pending[T]) *futures.Future[results.Result[T, error]] {
	return Wrap[T, error](p)
}

// Func runs do asynchronously and wraps its outcome. A panic in do becomes a failure.
func Func[T any, E any](do futures.FutureFunc[T]) *futures.Future[results.Result[T, E]] {
	return Wrap[T, E](futures.FromFunc(do))
}

// Await blocks until p settles or ctx ends and returns the outcome as a
// results.Result. If ctx ends first its error is the failure payload.
// A panic raised by p.Get is recorded as a failure like any other.
func Await[T any, E any](ctx context.Context, p Pending[T]) (res results.Result[T, E]) {
	defer func() {
		if r := recover(); r != nil {
			res = results.Failure[T](payloadAs[E](&futures.PanicError{Value: r}))
		}
	}()

	v, err := p.Get(ctx)
	if err != nil {
		return results.Failure[T](payloadAs[E](err))
	}
	return results.Success[T, E](v)
}

// All awaits every computation in ps and returns their outcomes at matching indexes.
func All[T any, E any, P Pending[T]](ctx context.Context, ps []P) []results.Result[T, E] {
	rs := make([]results.Result[T, E], len(ps))
	for i, p := range ps {
		rs[i] = Await[T, E](ctx, p)
	}
	return rs
}

func payloadAs[E any](err error) E {
	if pe, ok := err.(*futures.PanicError); ok {
		if e, ok := pe.Value.(E); ok {
			return e
		}
	}

	e, _ := any(err).(E)
	return e
}
