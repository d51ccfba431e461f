package vitalsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperengineering/vitalsync/internal/task"
	"github.com/sethvargo/go-retry"
)

const dailySyncTaskID = "daily-sync"

// syncTimeout bounds each scheduled sync attempt. Remote operations also
// carry the HTTP client's own timeout; this is the outer bound per trigger.
const syncTimeout = 2 * time.Minute

// Scheduler owns sync timing policy. It feeds three independent triggers
// into the same engine entry points:
//
//   - Trigger A: a once-daily deferred task anchored at the daily cutoff
//     (23:59 local). It fires at day's end, syncs yesterday's date, and
//     reschedules itself for the next cutoff. The task resolves which user
//     to sync from persisted store state, never from scheduler memory, so
//     it behaves correctly when run by an external task runner that shares
//     nothing with the foreground process.
//   - Trigger B: an hourly foreground tick syncing today for the active
//     user.
//   - Trigger C: a manual SyncNow call.
//
// Concurrent triggers are serialized by the engine's single-flight guard:
// the loser fails fast with ErrSyncInProgress rather than queueing.
type Scheduler struct {
	engine   *Engine
	store    *Store
	runner   task.Runner
	debug    *DebugLogger
	interval time.Duration
	cutoff   string
	now      func() time.Time

	mu          sync.Mutex
	initialized bool
	canceled    bool
	activeUser  string
	stop        chan struct{}
	done        chan struct{}
}

// NewScheduler creates a scheduler. It does nothing until Initialize.
func NewScheduler(engine *Engine, store *Store, runner task.Runner, interval time.Duration, cutoff string, debug *DebugLogger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if cutoff == "" {
		cutoff = DefaultDailyCutoff
	}
	return &Scheduler{
		engine:   engine,
		store:    store,
		runner:   runner,
		debug:    debug,
		interval: interval,
		cutoff:   cutoff,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Initialize starts the foreground tick and schedules the next daily
// deferred sync. It is idempotent; calling it twice is a no-op.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.canceled {
		return errors.New("scheduler: canceled, create a new scheduler")
	}
	if s.initialized {
		return nil
	}
	s.initialized = true

	go s.foregroundLoop()
	s.scheduleDeferred()

	return nil
}

// SetActiveUser records who the foreground triggers sync, and persists the
// session so the deferred trigger can re-resolve it independently.
func (s *Scheduler) SetActiveUser(userID string) error {
	s.mu.Lock()
	s.activeUser = userID
	s.mu.Unlock()
	return s.store.SetActiveUser(userID)
}

// ActiveUser returns the in-memory foreground user.
func (s *Scheduler) ActiveUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeUser
}

// SyncNow is the manual trigger: sync today's vitals and activity for the
// given user. A concurrent sync surfaces as ErrSyncInProgress so callers
// can tell "already in progress" from "failed".
func (s *Scheduler) SyncNow(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	return s.syncDate(ctx, userID, "")
}

// CancelAll deterministically stops both triggers and leaves no dangling
// scheduled work. Required on logout and clean shutdown; the scheduler
// cannot be reused afterwards.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	initialized := s.initialized
	close(s.stop)
	s.mu.Unlock()

	s.runner.CancelAll()
	if initialized {
		<-s.done
	} else {
		close(s.done)
	}
}

// NextCutoffDelay computes how long until the next occurrence of the HH:MM
// cutoff after now. If now is already past today's cutoff, the delay rolls
// over to tomorrow's.
func NextCutoffDelay(now time.Time, cutoff string) (time.Duration, error) {
	at, err := time.Parse("15:04", cutoff)
	if err != nil {
		return 0, fmt.Errorf("parse cutoff %q: %w", cutoff, err)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now), nil
}

// foregroundLoop is Trigger B: an hourly tick syncing today's date for the
// active user while the process runs.
func (s *Scheduler) foregroundLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			user := s.ActiveUser()
			if user == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			if err := s.syncDate(ctx, user, ""); err != nil {
				// A failed tick is silent; the next tick retries naturally.
				s.debug.LogError("hourly_tick", err)
			}
			cancel()
		}
	}
}

// scheduleDeferred arms Trigger A for the next daily cutoff.
// Callers hold s.mu or run from the task itself.
func (s *Scheduler) scheduleDeferred() {
	delay, err := NextCutoffDelay(s.now(), s.cutoff)
	if err != nil {
		s.debug.LogError("schedule_deferred", err)
		return
	}
	s.debug.LogSchedule("daily", fmt.Sprintf("next cutoff in %s", delay.Round(time.Second)))
	s.runner.Schedule(dailySyncTaskID, delay, s.RunDeferredSync)
}

// RunDeferredSync is the Trigger A entry point. It resolves the user from
// persisted session state, syncs yesterday's date (the cutoff fires at
// day's end), and reschedules for the next cutoff.
//
// A failure to load the persisted session is a delivery failure and is
// reported retryable so the runner redelivers with exponential backoff.
// Sync-logic failures are terminal for this firing; the next cutoff is the
// retry.
func (s *Scheduler) RunDeferredSync(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		canceled := s.canceled
		s.mu.Unlock()
		if !canceled {
			s.scheduleDeferred()
		}
	}()

	userID, err := s.store.ActiveUser()
	if err != nil {
		return retry.RetryableError(fmt.Errorf("deferred sync: resolve session: %w", err))
	}
	if userID == "" {
		s.debug.LogSchedule("daily", "no signed-in user, skipping")
		return nil
	}

	yesterday := DateOf(s.now().AddDate(0, 0, -1))
	if err := s.syncDate(ctx, userID, yesterday); err != nil {
		s.debug.LogError("daily_sync", err)
		return err
	}
	return nil
}

// syncDate runs one vitals + activity cycle for (user, date). An in-flight
// rejection from either upload propagates as ErrSyncInProgress.
func (s *Scheduler) syncDate(ctx context.Context, userID, date string) error {
	if err := s.engine.SyncVitals(ctx, userID, date); err != nil {
		return err
	}
	return s.engine.SyncActivity(ctx, userID, date)
}
