// Package config resolves the application's on-disk layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default mode for regular files.
	FilePermissions = 0644
	// DirPermissions is the default mode for directories.
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.fetchr).
	ConfigDir string

	// DatabasePath is the SQLite database file holding collections,
	// requests, environments and history.
	DatabasePath string
)

// Initialize resolves the global paths and creates ~/.fetchr/ when it does
// not exist. FETCHR_DB overrides the database location, which keeps test
// runs and throwaway sessions away from the real data.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".fetchr")
	DatabasePath = filepath.Join(ConfigDir, "fetchr.db")

	if override := os.Getenv("FETCHR_DB"); override != "" {
		DatabasePath = override
		ConfigDir = filepath.Dir(override)
	}

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	return nil
}
