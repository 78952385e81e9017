//go:build !integration

package sched

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first success immediately", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("succeeds after N failures when N+1 <= maxAttempts", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls <= 2 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("still broken")
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected %v, got: %v", wantErr, err)
		}
		if calls != 3 {
			t.Errorf("expected exactly maxAttempts calls, got %d", calls)
		}
	})

	t.Run("never exceeds maxAttempts", func(t *testing.T) {
		calls := 0
		_ = Do(ctx, 1, time.Millisecond, func(ctx context.Context) error {
			calls++
			return errors.New("boom")
		})
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := Do(cctx, 5, time.Hour, func(ctx context.Context) error {
			calls++
			return errors.New("always fails")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancellation, got %d", calls)
		}
	})
}
