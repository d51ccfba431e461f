package vitalsync

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hyperengineering/vitalsync/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "2"

// Metadata keys used by the sync subsystem.
const (
	metaActiveUser       = "active_user"
	metaLastVitalsSync   = "last_vitals_sync"
	metaLastActivitySync = "last_activity_sync"
)

// Store manages the local SQLite vitals database. It is the append-only
// system of record for readings; remote daily summaries are always
// re-derivable from it.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates a local vitals store.
func NewStore(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, schemaVersion)
	return err
}

// InsertReading validates and stores a new sensor sample. Readings are
// immutable once written; there is no update path.
func (s *Store) InsertReading(r Reading) (*Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if r.UserID == "" {
		return nil, ErrEmptyUserID
	}
	if r.HeartRate == nil && r.SpO2 == nil && r.TemperatureC == nil {
		return nil, ErrEmptyReading
	}
	if r.HeartRate != nil && (*r.HeartRate < MinHeartRate || *r.HeartRate > MaxHeartRate) {
		return nil, fmt.Errorf("%w: heart_rate=%d", ErrReadingOutOfRange, *r.HeartRate)
	}
	if r.SpO2 != nil && (*r.SpO2 < MinSpO2 || *r.SpO2 > MaxSpO2) {
		return nil, fmt.Errorf("%w: spo2=%d", ErrReadingOutOfRange, *r.SpO2)
	}
	if r.TemperatureC != nil && (*r.TemperatureC < MinTemperatureC || *r.TemperatureC > MaxTemperatureC) {
		return nil, fmt.Errorf("%w: temperature_c=%.1f", ErrReadingOutOfRange, *r.TemperatureC)
	}

	if r.ID == "" {
		r.ID = ulid.Make().String()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}

	_, err := s.db.Exec(`
		INSERT INTO readings (id, user_id, ts, heart_rate, spo2, temperature, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.UserID,
		r.Timestamp,
		r.HeartRate,
		r.SpO2,
		r.TemperatureC,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}

	return &r, nil
}

// ReadingsInRange returns a user's readings with ts in [startMillis,
// endMillis), ordered by timestamp ascending. An empty result is not an
// error.
func (s *Store) ReadingsInRange(userID string, startMillis, endMillis int64) ([]Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, ts, heart_rate, spo2, temperature
		FROM readings
		WHERE user_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC
	`, userID, startMillis, endMillis)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var results []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}

	return results, rows.Err()
}

// UpsertDailyActivity stores or replaces the pre-aggregated activity record
// for (user, date).
func (s *Store) UpsertDailyActivity(a DailyActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if a.UserID == "" {
		return ErrEmptyUserID
	}
	if _, err := ParseDate(a.Date); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO daily_activity (user_id, date, steps, distance_km, active_minutes, calories_burned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			steps = excluded.steps,
			distance_km = excluded.distance_km,
			active_minutes = excluded.active_minutes,
			calories_burned = excluded.calories_burned,
			updated_at = excluded.updated_at
	`,
		a.UserID,
		a.Date,
		a.Steps,
		a.DistanceKm,
		a.ActiveMinutes,
		a.CaloriesBurned,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert daily activity: %w", err)
	}
	return nil
}

// DailyActivityFor returns the activity record for (user, date).
// Returns ErrNotFound when absent.
func (s *Store) DailyActivityFor(userID, date string) (*DailyActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var a DailyActivity
	err := s.db.QueryRow(`
		SELECT user_id, date, steps, distance_km, active_minutes, calories_burned
		FROM daily_activity WHERE user_id = ? AND date = ?
	`, userID, date).Scan(&a.UserID, &a.Date, &a.Steps, &a.DistanceKm, &a.ActiveMinutes, &a.CaloriesBurned)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query daily activity: %w", err)
	}
	return &a, nil
}

// GetMetadata returns the value for a metadata key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata stores a metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

// SetActiveUser persists the signed-in user so the deferred background
// trigger can resolve who to sync without reading foreground state.
func (s *Store) SetActiveUser(userID string) error {
	return s.SetMetadata(metaActiveUser, userID)
}

// ActiveUser returns the persisted signed-in user, or "" when nobody is.
func (s *Store) ActiveUser() (string, error) {
	return s.GetMetadata(metaActiveUser)
}

// Stats returns store statistics.
func (s *Store) Stats() (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var readingCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&readingCount); err != nil {
		return nil, err
	}

	var activityDays int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM daily_activity").Scan(&activityDays); err != nil {
		return nil, err
	}

	stats := &StoreStats{
		ReadingCount:  readingCount,
		ActivityDays:  activityDays,
		SchemaVersion: schemaVersion,
	}
	stats.LastVitalsSync = s.metadataTime(metaLastVitalsSync)
	stats.LastActivitySync = s.metadataTime(metaLastActivitySync)

	return stats, nil
}

func (s *Store) metadataTime(key string) time.Time {
	var value sql.NullString
	s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if !value.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, value.String)
	return t
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func scanReading(rows *sql.Rows) (*Reading, error) {
	var (
		r           Reading
		heartRate   sql.NullInt64
		spo2        sql.NullInt64
		temperature sql.NullFloat64
	)

	if err := rows.Scan(&r.ID, &r.UserID, &r.Timestamp, &heartRate, &spo2, &temperature); err != nil {
		return nil, err
	}

	if heartRate.Valid {
		v := int(heartRate.Int64)
		r.HeartRate = &v
	}
	if spo2.Valid {
		v := int(spo2.Int64)
		r.SpO2 = &v
	}
	if temperature.Valid {
		v := temperature.Float64
		r.TemperatureC = &v
	}

	return &r, nil
}
