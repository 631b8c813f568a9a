package future

import (
	"context"
	"sync"
)

// Future is a value that becomes available once. Resolve may be called any
// number of times; only the first call counts.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn in its own goroutine and resolves the returned future with its
// result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		f.Resolve(fn())
	}()
	return f
}

// Failed returns an already resolved future carrying err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	var zero T
	f.Resolve(zero, err)
	return f
}

func (f *Future[T]) Resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Map derives a future whose value is fn applied to src's value.
func Map[S, T any](src *Future[S], fn func(S) T) *Future[T] {
	dst := New[T]()
	go func() {
		<-src.done
		if src.err != nil {
			var zero T
			dst.Resolve(zero, src.err)
			return
		}
		dst.Resolve(fn(src.value), nil)
	}()
	return dst
}
