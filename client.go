package vitalsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperengineering/vitalsync/internal/task"
)

// Client is the application-facing facade: local-first writes, scheduled
// uploads, and a read path that degrades from local to remote to synthetic
// data without ever surfacing an error to the UI layer.
type Client struct {
	store     *Store
	engine    *Engine
	scheduler *Scheduler
	remote    RemoteStore
	fallback  FallbackProvider
	config    Config
	debug     *DebugLogger
	now       func() time.Time

	mu      sync.Mutex
	lastErr error
}

// New creates a vitalsync client. With AutoSync enabled and a remote
// configured, the scheduler starts immediately.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	var rs RemoteStore
	if !cfg.IsOffline() {
		rs = NewRemoteClient(cfg.RemoteURL, cfg.APIKey, cfg.DeviceID)
	}

	engine := NewEngine(store, rs, debug)
	runner := task.NewTimerRunner()
	runner.OnError = func(id string, err error) {
		debug.LogError("task:"+id, err)
	}
	scheduler := NewScheduler(engine, store, runner, cfg.SyncInterval, cfg.DailyCutoff, debug)

	c := &Client{
		store:     store,
		engine:    engine,
		scheduler: scheduler,
		remote:    rs,
		fallback:  SyntheticProvider{},
		config:    cfg,
		debug:     debug,
		now:       time.Now,
	}

	if rs != nil && cfg.AutoSync {
		if err := scheduler.Initialize(); err != nil {
			store.Close()
			return nil, fmt.Errorf("client: %w", err)
		}
	}

	return c, nil
}

// SetFallback replaces the synthetic data provider.
func (c *Client) SetFallback(p FallbackProvider) {
	c.fallback = p
}

// Scheduler exposes the sync scheduler to the application shell
// (login/logout hooks, manual sync buttons).
func (c *Client) Scheduler() *Scheduler {
	return c.scheduler
}

// Login persists the active user and marks them for scheduled syncs.
func (c *Client) Login(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	return c.scheduler.SetActiveUser(userID)
}

// Logout clears the persisted session and cancels all scheduled work so a
// signed-out user's data is never synced.
func (c *Client) Logout() error {
	c.scheduler.CancelAll()
	return c.store.SetActiveUser("")
}

// RecordReading stores a new sensor sample locally. Ingestion is
// synchronous and local-only; upload happens on schedule.
func (c *Client) RecordReading(ctx context.Context, r Reading) (*Reading, error) {
	return c.store.InsertReading(r)
}

// RecordActivity stores the day's pre-aggregated activity record locally.
func (c *Client) RecordActivity(ctx context.Context, a DailyActivity) error {
	return c.store.UpsertDailyActivity(a)
}

// SyncNow triggers an immediate sync of today's data (Trigger C).
func (c *Client) SyncNow(ctx context.Context, userID string) error {
	return c.scheduler.SyncNow(ctx, userID)
}

// SyncDate uploads one specific day's vitals and activity. An empty date
// means today.
func (c *Client) SyncDate(ctx context.Context, userID, date string) error {
	if err := c.engine.SyncVitals(ctx, userID, date); err != nil {
		return err
	}
	return c.engine.SyncActivity(ctx, userID, date)
}

// VitalsHistory returns the last `days` daily vitals, newest first, walking
// the read-path chain: local readings, then remote documents, then
// synthetic fallback. It never returns an error; remote failures are
// recorded on the LastSyncError side channel.
func (c *Client) VitalsHistory(ctx context.Context, userID string, days int) []DailyVitals {
	dates := DatesBack(c.now(), days)

	local := make([]DailyVitals, 0, len(dates))
	for _, date := range dates {
		start, end, err := DayBounds(date)
		if err != nil {
			continue
		}
		readings, err := c.store.ReadingsInRange(userID, start, end)
		if err != nil {
			c.setLastErr(err)
			continue
		}
		if len(readings) == 0 {
			continue
		}
		local = append(local, DailyVitals{
			Date:     date,
			Readings: readings,
			Summary:  Summarize(readings),
			Source:   SourceLocal,
		})
	}
	if len(local) > 0 {
		return local
	}

	if c.remote != nil {
		docs, err := c.engine.FetchHistoricalVitals(ctx, userID, days)
		if err != nil {
			c.setLastErr(err)
		}
		if len(docs) > 0 {
			return docs
		}
	}

	return c.fallback.Vitals(userID, dates)
}

// ActivityHistory mirrors VitalsHistory for daily activity records.
func (c *Client) ActivityHistory(ctx context.Context, userID string, days int) []DailyActivity {
	dates := DatesBack(c.now(), days)

	local := make([]DailyActivity, 0, len(dates))
	for _, date := range dates {
		record, err := c.store.DailyActivityFor(userID, date)
		if err == nil {
			record.Source = SourceLocal
			local = append(local, *record)
		}
	}
	if len(local) > 0 {
		return local
	}

	if c.remote != nil {
		docs, err := c.engine.FetchHistoricalActivity(ctx, userID, days)
		if err != nil {
			c.setLastErr(err)
		}
		if len(docs) > 0 {
			return docs
		}
	}

	return c.fallback.Activity(userID, dates)
}

// LastSyncError returns the most recent read-path or background failure.
// The read path never raises; callers who care inspect this side channel.
func (c *Client) LastSyncError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Stats returns local store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}

// HealthCheck reports local store integrity and remote reachability.
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		StoreOK: true,
	}

	if _, err := c.store.Stats(); err != nil {
		status.StoreOK = false
		status.Healthy = false
		status.Error = err.Error()
		return status
	}

	if c.remote != nil {
		var probe struct {
			LastSyncedAt time.Time `json:"last_synced_at"`
		}
		err := c.remote.Get(ctx, "health", &probe)
		// A 404 still proves the store answered; only transport-level
		// failures count as unreachable.
		status.RemoteReachable = err == nil || !errors.Is(err, ErrRemoteUnavailable)
		if !status.RemoteReachable && status.Error == "" {
			status.Error = err.Error()
		}
	}

	return status
}

// Close stops scheduled work, flushes today's data best-effort, and closes
// the store.
func (c *Client) Close() error {
	c.scheduler.CancelAll()

	// Final flush of today's data for the signed-in user.
	if c.remote != nil {
		if userID, err := c.store.ActiveUser(); err == nil && userID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := c.engine.SyncVitals(ctx, userID, ""); err != nil {
				c.debug.LogError("close_flush", err)
			}
			if err := c.engine.SyncActivity(ctx, userID, ""); err != nil {
				c.debug.LogError("close_flush", err)
			}
			cancel()
		}
	}

	err := c.store.Close()
	if cerr := c.debug.Close(); err == nil {
		err = cerr
	}
	return err
}
