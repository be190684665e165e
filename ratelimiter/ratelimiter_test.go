package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abevier/trycatch/results"
	"github.com/abevier/trycatch/trycatch"
	"github.com/stretchr/testify/require"
)

var ErrTest = errors.New("unit test error")

func TestRateLimiter(t *testing.T) {
	require := require.New(t)

	wg := sync.WaitGroup{}

	run := func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	}

	rl := New(Opts{Limit: Every(time.Millisecond), Burst: 10, MaxQueueDepth: 10}, run)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			r, err := rl.Submit(context.Background(), n)
			require.NoError(err)
			require.Equal(n*2, r)
		}(i)
	}

	wg.Wait()
	rl.Close()
}

func TestRateLimiterPacing(t *testing.T) {
	require := require.New(t)

	run := func(ctx context.Context, n int) (time.Time, error) {
		return time.Now(), nil
	}

	rl := New(Opts{Limit: Every(20 * time.Millisecond), Burst: 1, MaxQueueDepth: 5}, run)
	defer rl.Close()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := rl.Submit(context.Background(), i)
		require.NoError(err)
	}

	// the first token is free, the next two are spaced by the limit
	require.GreaterOrEqual(time.Since(start), 35*time.Millisecond)
}

func TestCanceledWhileWaitingForToken(t *testing.T) {
	require := require.New(t)

	run := func(ctx context.Context, n int) (int, error) {
		return n, nil
	}

	rl := New(Opts{Limit: Every(time.Hour), Burst: 1, MaxQueueDepth: 5}, run)
	defer rl.Close()

	// only the initial burst is available within the test's lifetime
	v, err := rl.Submit(context.Background(), 1)
	require.NoError(err)
	require.Equal(1, v)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := trycatch.Await[int, error](context.Background(), rl.SubmitF(ctx, 2))
	require.False(r.Success)
	require.Error(r.Error)
}

func TestFailuresAsResults(t *testing.T) {
	require := require.New(t)

	run := func(ctx context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, ErrTest
		}
		return n, nil
	}

	rl := New(Opts{Limit: Inf, Burst: 1, MaxQueueDepth: 4}, run)

	w0 := trycatch.Of[int](rl.SubmitF(context.Background(), 0))
	w1 := trycatch.Of[int](rl.SubmitF(context.Background(), 1))

	r0, err := w0.Get(context.Background())
	require.NoError(err)
	require.Equal(results.Success[int, error](0), r0)

	r1, err := w1.Get(context.Background())
	require.NoError(err)
	require.Equal(results.Failure[int](ErrTest), r1)

	rl.Close()
	rl.Close()

	_, err = rl.Submit(context.Background(), 2)
	require.ErrorIs(err, ErrClosed)
}
