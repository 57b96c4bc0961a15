package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverDB finds the database path using priority:
// flag > config/env > walk-up from cwd > XDG data dir.
// The returned file may not exist yet; its directory does.
func DiscoverDB(flagPath string, cfg *Config) (string, error) {
	// 1. CLI flag
	if flagPath != "" {
		return ensureDir(flagPath)
	}

	// 2. Config file or NOTENODES_DB
	if cfg != nil && cfg.Database.Path != "" {
		return ensureDir(expandHome(cfg.Database.Path))
	}

	// 3. Walk up from CWD
	if dir, err := os.Getwd(); err == nil {
		for {
			candidate := filepath.Join(dir, DBFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no database found (use --db or set NOTENODES_DB): %w", err)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return ensureDir(filepath.Join(dataHome, "notenodes", "notes.db"))
}

func ensureDir(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	return path, nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
