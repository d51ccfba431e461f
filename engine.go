package vitalsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine orchestrates one sync cycle at a time: read local data for a date,
// aggregate, upsert to the remote document store. It owns no persistent
// state beyond the transient in-flight flag.
//
// The engine performs no retries; retry and backoff policy belongs to the
// Scheduler. All remote failures come back as typed errors (*SyncError
// wrapping ErrRemoteUnavailable or ErrPermissionDenied) so callers can
// branch on failure kind without knowing the transport.
//
// The single-flight guard is per process and covers both vitals and
// activity uploads, matching the single-active-user assumption; it is not a
// per-(user, date) lock. Uploads racing from a separate background process
// are benign: remote merges are last-write-wins on idempotent document keys.
type Engine struct {
	store  *Store
	remote RemoteStore
	debug  *DebugLogger
	now    func() time.Time

	mu      sync.Mutex
	syncing bool
}

// NewEngine creates a sync engine. remote may be nil for offline-only mode.
func NewEngine(store *Store, remote RemoteStore, debug *DebugLogger) *Engine {
	return &Engine{
		store:  store,
		remote: remote,
		debug:  debug,
		now:    time.Now,
	}
}

// beginSync claims the single-flight slot. The flag is set before the first
// I/O call; callers must pair it with a deferred endSync so no exit path can
// leave the flag stuck and wedge future syncs.
func (e *Engine) beginSync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing {
		return ErrSyncInProgress
	}
	e.syncing = true
	return nil
}

func (e *Engine) endSync() {
	e.mu.Lock()
	e.syncing = false
	e.mu.Unlock()
}

// Syncing reports whether an upload is currently in flight.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// SyncVitals aggregates one day's readings and upserts them to
// users/{userID}/vitals/{date}. An empty date means today. A day with no
// local readings is a successful no-op. Concurrent calls are rejected with
// ErrSyncInProgress.
func (e *Engine) SyncVitals(ctx context.Context, userID, date string) error {
	if e.remote == nil {
		return ErrOffline
	}
	if userID == "" {
		return ErrEmptyUserID
	}
	if date == "" {
		date = DateOf(e.now())
	}
	start, end, err := DayBounds(date)
	if err != nil {
		return err
	}

	if err := e.beginSync(); err != nil {
		return err
	}
	defer e.endSync()

	readings, err := e.store.ReadingsInRange(userID, start, end)
	if err != nil {
		return fmt.Errorf("sync vitals: %w", err)
	}
	if len(readings) == 0 {
		e.debug.LogSync("vitals", fmt.Sprintf("no readings for %s on %s, nothing to sync", userID, date))
		return nil
	}

	doc := DailyVitals{
		Date:     date,
		Readings: readings,
		Summary:  Summarize(readings),
		SyncID:   uuid.NewString(),
		SyncedAt: e.now().UTC(),
	}

	if err := e.remote.SetMerge(ctx, vitalsPath(userID, date), doc); err != nil {
		e.debug.LogError("sync_vitals", err)
		return fmt.Errorf("sync vitals: %w", err)
	}
	e.debug.LogSync("vitals", fmt.Sprintf("upserted %d readings for %s/%s", len(readings), userID, date))

	e.touchUser(ctx, userID, doc.SyncedAt)

	if err := e.store.SetMetadata(metaLastVitalsSync, doc.SyncedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("sync vitals: record sync time: %w", err)
	}
	return nil
}

// SyncActivity forwards the locally pre-aggregated activity record to
// users/{userID}/activities/{date}. There is no aggregation step; it is a
// direct idempotent upsert. An absent local record is a successful no-op.
func (e *Engine) SyncActivity(ctx context.Context, userID, date string) error {
	if e.remote == nil {
		return ErrOffline
	}
	if userID == "" {
		return ErrEmptyUserID
	}
	if date == "" {
		date = DateOf(e.now())
	}
	if _, err := ParseDate(date); err != nil {
		return err
	}

	if err := e.beginSync(); err != nil {
		return err
	}
	defer e.endSync()

	record, err := e.store.DailyActivityFor(userID, date)
	if errors.Is(err, ErrNotFound) {
		e.debug.LogSync("activity", fmt.Sprintf("no activity for %s on %s, nothing to sync", userID, date))
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync activity: %w", err)
	}

	doc := *record
	doc.SyncID = uuid.NewString()
	doc.SyncedAt = e.now().UTC()

	if err := e.remote.SetMerge(ctx, activityPath(userID, date), doc); err != nil {
		e.debug.LogError("sync_activity", err)
		return fmt.Errorf("sync activity: %w", err)
	}
	e.debug.LogSync("activity", fmt.Sprintf("upserted activity for %s/%s", userID, date))

	e.touchUser(ctx, userID, doc.SyncedAt)

	if err := e.store.SetMetadata(metaLastActivitySync, doc.SyncedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("sync activity: record sync time: %w", err)
	}
	return nil
}

// touchUser keeps the parent users/{id} document alive so date collections
// always hang off an existing user. Best-effort: a failure here never fails
// the sync that already landed.
func (e *Engine) touchUser(ctx context.Context, userID string, syncedAt time.Time) {
	fields := userDocument{LastSyncedAt: syncedAt}
	if err := e.remote.SetMerge(ctx, userPath(userID), fields); err != nil {
		e.debug.LogError("touch_user", err)
	}
}

type userDocument struct {
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// FetchHistoricalVitals queries the remote store for the last `days` daily
// vitals documents, newest first. Documents arrive already containing
// readings and summary; there is no client-side re-aggregation.
func (e *Engine) FetchHistoricalVitals(ctx context.Context, userID string, days int) ([]DailyVitals, error) {
	if e.remote == nil {
		return nil, ErrOffline
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if days <= 0 {
		days = 1
	}

	today := e.now()
	q := RangeQuery{
		Field:      "date",
		Start:      DateOf(today.AddDate(0, 0, -(days - 1))),
		End:        DateOf(today),
		OrderBy:    "date",
		Descending: true,
		Limit:      days,
	}

	var docs []DailyVitals
	if err := e.remote.Query(ctx, vitalsCollection(userID), q, &docs); err != nil {
		e.debug.LogError("fetch_vitals", err)
		return nil, fmt.Errorf("fetch historical vitals: %w", err)
	}
	for i := range docs {
		docs[i].Source = SourceRemote
	}
	return docs, nil
}

// FetchHistoricalActivity mirrors FetchHistoricalVitals for activity
// documents.
func (e *Engine) FetchHistoricalActivity(ctx context.Context, userID string, days int) ([]DailyActivity, error) {
	if e.remote == nil {
		return nil, ErrOffline
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if days <= 0 {
		days = 1
	}

	today := e.now()
	q := RangeQuery{
		Field:      "date",
		Start:      DateOf(today.AddDate(0, 0, -(days - 1))),
		End:        DateOf(today),
		OrderBy:    "date",
		Descending: true,
		Limit:      days,
	}

	var docs []DailyActivity
	if err := e.remote.Query(ctx, activityCollection(userID), q, &docs); err != nil {
		e.debug.LogError("fetch_activity", err)
		return nil, fmt.Errorf("fetch historical activity: %w", err)
	}
	for i := range docs {
		docs[i].Source = SourceRemote
	}
	return docs, nil
}
