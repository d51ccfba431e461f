// Package store holds filesystem helpers and embedded migrations for the
// local vitals database.
package store

import (
	"os"
	"path/filepath"
)

// DefaultDBPath returns the default location of the local vitals database.
// Defaults to ~/.vitalsync/vitals.db, falls back to ./.vitalsync/vitals.db
// if the home directory is unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".vitalsync", "vitals.db")
	}
	return filepath.Join(home, ".vitalsync", "vitals.db")
}
