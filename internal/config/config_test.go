package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTENODES_DB", "")
	t.Setenv("NOTENODES_LANG", "")
	t.Setenv("NOTENODES_LOG_LEVEL", "")
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/notes.db
  strict_parents: true
language: fr
logging:
  level: debug
  format: json
render:
  code_style: monokai
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.db", cfg.Database.Path)
	assert.True(t, cfg.Database.StrictParents)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "monokai", cfg.Render.CodeStyle)
	// Unset keys keep their defaults.
	assert.Equal(t, "auto", cfg.Render.TermStyle)
	assert.Equal(t, 100, cfg.Render.WordWrap)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_ValidationErrors(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: chatty\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid logging.level")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("NOTENODES_DB sets database path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NOTENODES_DB", "/data/notes.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/data/notes.db", cfg.Database.Path)
	})

	t.Run("NOTENODES_LANG and NOTENODES_LOG_LEVEL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NOTENODES_LANG", "fr")
		t.Setenv("NOTENODES_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "fr", cfg.Language)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty variables leave values alone", func(t *testing.T) {
		clearEnv(t)
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Language = "fr"
	cfg.Database.StrictParents = true

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDiscoverDB(t *testing.T) {
	t.Run("flag wins and directory is created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "notes.db")
		got, err := DiscoverDB(path, &Config{Database: DatabaseConfig{Path: "/elsewhere.db"}})
		require.NoError(t, err)
		assert.Equal(t, path, got)
		assert.DirExists(t, filepath.Dir(path))
	})

	t.Run("config path used without flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg", "notes.db")
		got, err := DiscoverDB("", &Config{Database: DatabaseConfig{Path: path}})
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("walks up to find .notenodes.db", func(t *testing.T) {
		root := t.TempDir()
		dbPath := filepath.Join(root, DBFileName)
		require.NoError(t, os.WriteFile(dbPath, nil, 0644))
		sub := filepath.Join(root, "x", "y")
		require.NoError(t, os.MkdirAll(sub, 0755))
		t.Chdir(sub)

		got, err := DiscoverDB("", DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, dbPath, got)
	})

	t.Run("falls back to XDG data home", func(t *testing.T) {
		data := t.TempDir()
		t.Setenv("XDG_DATA_HOME", data)
		t.Chdir(t.TempDir())

		got, err := DiscoverDB("", DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(data, "notenodes", "notes.db"), got)
	})
}
