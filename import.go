package vitalsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ImportJSON imports a user's history from a JSON export. Existing readings
// (matched by ID) and activity records (matched by date) are skipped or
// replaced according to the strategy. Invalid entries are counted and
// reported, never fatal; the rest of the import proceeds.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, strategy MergeStrategy) (*ImportResult, error) {
	if s == nil {
		return nil, ErrStoreClosed
	}

	var export ExportFormat
	dec := json.NewDecoder(r)
	if err := dec.Decode(&export); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if export.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported export version %q", export.Version)
	}
	if export.UserID == "" {
		return nil, ErrEmptyUserID
	}

	result := &ImportResult{Total: len(export.Readings) + len(export.Activity)}

	for _, reading := range export.Readings {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		reading.UserID = export.UserID

		exists, err := s.readingExists(reading.ID)
		if err != nil {
			return result, err
		}
		if exists {
			if strategy == MergeStrategySkip {
				result.Skipped++
				continue
			}
			if err := s.deleteReading(reading.ID); err != nil {
				return result, err
			}
		}

		if _, err := s.InsertReading(reading); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reading %s: %v", reading.ID, err))
			continue
		}
		result.Imported++
	}

	for _, activity := range export.Activity {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		activity.UserID = export.UserID

		if strategy == MergeStrategySkip {
			if _, err := s.DailyActivityFor(activity.UserID, activity.Date); err == nil {
				result.Skipped++
				continue
			}
		}

		if err := s.UpsertDailyActivity(activity); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("activity %s: %v", activity.Date, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (s *Store) readingExists(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}
	if id == "" {
		return false, nil
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM readings WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check reading: %w", err)
	}
	return count > 0, nil
}

// deleteReading exists solely for import's replace strategy; readings are
// otherwise immutable.
func (s *Store) deleteReading(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`DELETE FROM readings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	return nil
}
