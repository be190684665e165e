package futures

import (
	"context"

	"github.com/abevier/trycatch/results"
)

// ResolveAll waits for all of the provided Futures to complete and returns a results.Result for each
// future at the index corresponding to the provided slice.
// If the provided context is canceled, the cancellation error will be returned as an error by this function.
func ResolveAll[T any](ctx context.Context, fs []*Future[T]) ([]results.Result[T, error], error) {
	res := make([]results.Result[T, error], 0, len(fs))

	for _, f := range fs {
		r, err := f.Get(ctx)
		// check for error before recording to avoid treating the caller's cancellation as the future's failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res = append(res, results.New(r, err))
	}

	return res, nil
}
