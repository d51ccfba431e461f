// Package task provides the deferred execution primitive backing the
// once-daily sync trigger. It stands in for a platform task queue: tasks
// run on their own goroutine, decoupled from whoever scheduled them, and
// must resolve their own inputs rather than sharing scheduler memory.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Func is a deferred task entry point. Returning an error wrapped with
// retry.RetryableError requests redelivery with exponential backoff; any
// other error (or nil) completes the delivery.
type Func func(ctx context.Context) error

// Runner schedules deferred work.
type Runner interface {
	// Schedule runs fn after delay. Re-scheduling an id replaces any
	// pending timer for that id.
	Schedule(id string, delay time.Duration, fn Func)

	// Cancel stops the pending task with the given id, if any.
	Cancel(id string)

	// CancelAll stops every pending task and waits for in-flight task
	// functions to return. No task fires after CancelAll returns.
	CancelAll()
}

// Backoff tuning for redelivery of failed task launches.
const (
	deliveryBaseDelay  = 30 * time.Second
	deliveryMaxRetries = 5
	taskTimeout        = 5 * time.Minute
)

// TimerRunner is an in-process Runner backed by time.AfterFunc. OnError, if
// set, observes a task's final failure after redelivery is exhausted.
type TimerRunner struct {
	OnError func(id string, err error)

	mu       sync.Mutex
	timers   map[string]*time.Timer
	canceled bool
	wg       sync.WaitGroup
}

// NewTimerRunner creates an empty runner.
func NewTimerRunner() *TimerRunner {
	return &TimerRunner{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after delay on its own goroutine, retrying delivery with
// exponential backoff when fn reports a retryable failure.
func (r *TimerRunner) Schedule(id string, delay time.Duration, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.canceled {
		return
	}
	if t, ok := r.timers[id]; ok {
		if t.Stop() {
			r.wg.Done()
		}
	}

	r.wg.Add(1)
	r.timers[id] = time.AfterFunc(delay, func() {
		defer r.wg.Done()

		r.mu.Lock()
		if r.canceled {
			r.mu.Unlock()
			return
		}
		delete(r.timers, id)
		r.mu.Unlock()

		r.run(id, fn)
	})
}

func (r *TimerRunner) run(id string, fn Func) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(deliveryMaxRetries, retry.NewExponential(deliveryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return fn(ctx)
	})
	if err != nil && r.OnError != nil {
		r.OnError(id, err)
	}
}

// Cancel stops the pending task with the given id.
func (r *TimerRunner) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[id]; ok {
		if t.Stop() {
			r.wg.Done()
		}
		delete(r.timers, id)
	}
}

// CancelAll stops all pending tasks and waits for running ones to finish.
func (r *TimerRunner) CancelAll() {
	r.mu.Lock()
	r.canceled = true
	for id, t := range r.timers {
		if t.Stop() {
			r.wg.Done()
		}
		delete(r.timers, id)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
