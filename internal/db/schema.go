package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

const schemaNodes = `
CREATE TABLE IF NOT EXISTS nodes (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER REFERENCES nodes(id),
	title     TEXT NOT NULL,
	content   TEXT,
	collapsed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
`

const schemaSettings = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT
);
`

// External-content FTS5 index over title and content, kept in sync by triggers.
const schemaFTS = `
CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	title, content, content='nodes', content_rowid='id'
);
CREATE TRIGGER IF NOT EXISTS nodes_fts_ai AFTER INSERT ON nodes BEGIN
	INSERT INTO nodes_fts(rowid, title, content) VALUES (new.id, new.title, new.content);
END;
CREATE TRIGGER IF NOT EXISTS nodes_fts_ad AFTER DELETE ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
END;
CREATE TRIGGER IF NOT EXISTS nodes_fts_au AFTER UPDATE OF title, content ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
	INSERT INTO nodes_fts(rowid, title, content) VALUES (new.id, new.title, new.content);
END;
`

// Initialize creates the nodes and settings tables if they are missing.
// Safe to call on every startup.
func (d *DB) Initialize() error {
	err := d.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(schemaNodes); err != nil {
			return fmt.Errorf("creating nodes table: %w", err)
		}
		if _, err := tx.Exec(schemaSettings); err != nil {
			return fmt.Errorf("creating settings table: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Search is optional: a build without FTS5 still gets a working store.
	if err := d.withTx(func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'nodes_fts'`,
		).Scan(&existing); err != nil {
			return err
		}
		if _, err := tx.Exec(schemaFTS); err != nil {
			return err
		}
		// Rows written before the index existed must be indexed now, or the
		// update and delete triggers hit entries that are not there.
		if existing == 0 {
			if _, err := tx.Exec(`INSERT INTO nodes_fts(nodes_fts) VALUES('rebuild')`); err != nil {
				return fmt.Errorf("building full-text index: %w", err)
			}
		}
		d.fts = true
		return nil
	}); err != nil {
		d.log.Warn("full-text index unavailable, search falls back to LIKE", zap.Error(err))
	}
	return nil
}
