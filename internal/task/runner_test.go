package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestTimerRunner_ScheduleFires(t *testing.T) {
	r := NewTimerRunner()
	defer r.CancelAll()

	var fired atomic.Int32
	r.Schedule("t1", time.Millisecond, func(ctx context.Context) error {
		fired.Add(1)
		return nil
	})

	waitFor(t, func() bool { return fired.Load() == 1 }, "task never fired")
}

func TestTimerRunner_RescheduleReplaces(t *testing.T) {
	r := NewTimerRunner()
	defer r.CancelAll()

	var first, second atomic.Int32
	r.Schedule("t1", time.Hour, func(ctx context.Context) error {
		first.Add(1)
		return nil
	})
	r.Schedule("t1", time.Millisecond, func(ctx context.Context) error {
		second.Add(1)
		return nil
	})

	waitFor(t, func() bool { return second.Load() == 1 }, "replacement task never fired")
	if first.Load() != 0 {
		t.Error("replaced task should not fire")
	}
}

func TestTimerRunner_Cancel(t *testing.T) {
	r := NewTimerRunner()
	defer r.CancelAll()

	var fired atomic.Int32
	r.Schedule("t1", 20*time.Millisecond, func(ctx context.Context) error {
		fired.Add(1)
		return nil
	})
	r.Cancel("t1")

	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("canceled task fired")
	}
}

func TestTimerRunner_CancelAllStopsPendingAndWaits(t *testing.T) {
	r := NewTimerRunner()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	r.Schedule("running", time.Millisecond, func(ctx context.Context) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	})
	r.Schedule("pending", time.Hour, func(ctx context.Context) error {
		t.Error("pending task fired despite CancelAll")
		return nil
	})

	<-started

	done := make(chan struct{})
	go func() {
		r.CancelAll()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("CancelAll returned while a task was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CancelAll never returned")
	}
	if !finished.Load() {
		t.Error("CancelAll returned before the in-flight task finished")
	}
}

func TestTimerRunner_ScheduleAfterCancelAllIsNoOp(t *testing.T) {
	r := NewTimerRunner()
	r.CancelAll()

	var fired atomic.Int32
	r.Schedule("t1", time.Millisecond, func(ctx context.Context) error {
		fired.Add(1)
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("task fired on a canceled runner")
	}
}

func TestTimerRunner_NonRetryableReportsOnce(t *testing.T) {
	r := NewTimerRunner()
	defer r.CancelAll()

	var attempts atomic.Int32
	errCh := make(chan error, 1)
	r.OnError = func(id string, err error) {
		errCh <- err
	}

	terminal := errors.New("terminal failure")
	r.Schedule("t1", time.Millisecond, func(ctx context.Context) error {
		attempts.Add(1)
		return terminal
	})

	select {
	case err := <-errCh:
		if !errors.Is(err, terminal) {
			t.Errorf("OnError got %v, want the task's error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnError never called")
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1 (non-retryable errors are not redelivered)", attempts.Load())
	}
}
