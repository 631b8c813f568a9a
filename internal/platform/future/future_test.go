package future_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"faceclass/internal/platform/future"
)

func TestResolveOnlyOnce(t *testing.T) {
	t.Parallel()
	f := future.New[int]()
	f.Resolve(1, nil)
	f.Resolve(2, errors.New("late"))
	got, err := f.Wait(context.Background())
	if err != nil || got != 1 {
		t.Fatalf("unexpected result: %d %v", got, err)
	}
	select {
	case <-f.Done():
	default:
		t.Fatalf("done channel must be closed after resolve")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	t.Parallel()
	f := future.New[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGoAndMap(t *testing.T) {
	t.Parallel()
	src := future.Go(func() (int, error) { return 21, nil })
	doubled := future.Map(src, func(v int) int { return v * 2 })
	got, err := doubled.Wait(context.Background())
	if err != nil || got != 42 {
		t.Fatalf("unexpected mapped result: %d %v", got, err)
	}

	boom := errors.New("boom")
	failed := future.Map(future.Failed[int](boom), func(v int) string { return "never" })
	if _, err := failed.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}
