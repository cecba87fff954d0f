package cli

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunEveryTicksUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int32
	done := make(chan error, 1)
	go func() {
		done <- runEvery(ctx, 10*time.Millisecond, "send_reminders", func(_ context.Context, task string) error {
			if task != "send_reminders" {
				t.Errorf("unexpected task %q", task)
			}
			atomic.AddInt32(&runs, 1)
			return errors.New("failures are logged")
		})
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times", atomic.LoadInt32(&runs))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runEvery returned %v", err)
	}
}

func TestRunEveryDisabled(t *testing.T) {
	called := false
	err := runEvery(context.Background(), 0, "x", func(context.Context, string) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Fatalf("expected disabled schedule, err=%v called=%v", err, called)
	}
}
