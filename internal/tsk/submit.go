package tsk

import (
	"errors"
	"fmt"
)

var (
	ErrQueueFull = errors.New("task queue is full")
)

type FullQueueStrategy int

const (
	BlockWhenFull FullQueueStrategy = iota
	ErrorWhenFull
)

func (s FullQueueStrategy) String() string {
	switch s {
	case BlockWhenFull:
		return "block"
	case ErrorWhenFull:
		return "error"
	default:
		return fmt.Sprintf("FullQueueStrategy(%d)", int(s))
	}
}

type SubmitFunction[T any, R any] func(taskChan chan<- TaskFuture[T, R], tf TaskFuture[T, R]) error

func GetSubmitFunction[T any, R any](s FullQueueStrategy) SubmitFunction[T, R] {
	switch s {
	case BlockWhenFull:
		return blockWhenFullStrategy[T, R]
	case ErrorWhenFull:
		return errorWhenFullStrategy[T, R]
	default:
		panic(fmt.Sprintf("invalid submit strategy value %d", s))
	}
}

func blockWhenFullStrategy[T any, R any](taskChan chan<- TaskFuture[T, R], t TaskFuture[T, R]) error {
	select {
	case taskChan <- t:
		return nil
	case <-t.Ctx.Done():
		return t.Ctx.Err()
	}
}

func errorWhenFullStrategy[T any, R any](taskChan chan<- TaskFuture[T, R], t TaskFuture[T, R]) error {
	select {
	case taskChan <- t:
		return nil
	default:
		return ErrQueueFull
	}
}
