package futures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	ErrTest = errors.New("test error")
)

func TestFuture(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Complete(1)
		f.Complete(2)
		f.Complete(3)
	}()

	v, err := f.Get(context.TODO())
	require.NoError(err)
	require.Equal(1, v)

	// every reader observes the same value
	v, err = f.Get(context.TODO())
	require.NoError(err)
	require.Equal(1, v)
}

func TestFromFunc(t *testing.T) {
	require := require.New(t)

	f := FromFunc(func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	})

	r, err := f.Get(context.Background())
	require.NoError(err)
	require.Equal(42, r)

	f = FromFunc(func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 7, ErrTest
	})

	r, err = f.Get(context.Background())
	require.ErrorIs(err, ErrTest)
	require.Equal(0, r)
}

func TestFromFuncPanic(t *testing.T) {
	require := require.New(t)

	f := FromFunc(func() (string, error) {
		panic("boom")
	})

	_, err := f.Get(context.Background())
	var pe *PanicError
	require.ErrorAs(err, &pe)
	require.Equal("boom", pe.Value)
	require.Nil(pe.Unwrap())

	f = FromFunc(func() (string, error) {
		panic(ErrTest)
	})

	_, err = f.Get(context.Background())
	require.ErrorIs(err, ErrTest)
}

func TestComplete(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	for i := 0; i <= 1000; i++ {
		go func() {
			f.Complete(42)
		}()
	}

	v, err := f.Get(context.TODO())
	require.NoError(err)
	require.Equal(42, v)
}

func TestCancel(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	for i := 0; i <= 1000; i++ {
		go func() {
			time.Sleep(10 * time.Millisecond)
			f.Cancel()
		}()
	}

	_, err := f.Get(context.TODO())
	require.ErrorIs(err, ErrCanceled)
}

func TestFail(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	for i := 0; i <= 1000; i++ {
		go func() {
			time.Sleep(10 * time.Millisecond)
			f.Fail(ErrTest)
		}()
	}

	_, err := f.Get(context.TODO())
	require.ErrorIs(err, ErrTest)
}

func TestDone(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	select {
	case <-f.Done():
		require.Fail("future should not be done")
	default:
	}

	f.Complete(1)
	<-f.Done()
}

func TestCancelOnGet(t *testing.T) {
	require := require.New(t)

	f := New[int]()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.Get(ctx)
	require.ErrorIs(err, context.Canceled)
}

func TestCancelingContextOnFuture(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())

	f := NewWithContext[int](ctx)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.Get(context.Background())
	require.ErrorIs(err, context.Canceled)
}

func TestNewWithContextCompleted(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewWithContext[int](ctx)
	f.Complete(5)
	cancel()

	v, err := f.Get(context.Background())
	require.NoError(err)
	require.Equal(5, v)
}
