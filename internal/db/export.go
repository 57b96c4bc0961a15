package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// exportVersion is bumped when the dump layout changes incompatibly.
const exportVersion = 1

// Dump is the JSON document written by Export and read by Import
type Dump struct {
	Version    int       `json:"version"`
	ExportedAt int64     `json:"exported_at"` // Unix millis
	Nodes      []Node    `json:"nodes"`
	Settings   []Setting `json:"settings"`
}

// Export serialises every node and setting as indented JSON
func (d *DB) Export() ([]byte, error) {
	nodes, err := d.AllNodes()
	if err != nil {
		return nil, err
	}
	settings, err := d.AllSettings()
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []Node{}
	}
	if settings == nil {
		settings = []Setting{}
	}
	return json.MarshalIndent(Dump{
		Version:    exportVersion,
		ExportedAt: time.Now().UnixMilli(),
		Nodes:      nodes,
		Settings:   settings,
	}, "", "  ")
}

// Import appends the nodes of a dump under fresh ids and upserts its
// settings, all in one transaction. Parent links are remapped to the new
// ids; a parent missing from the dump leaves the node at the root level.
// A dump with repeated ids or with parent links that form a cycle is
// rejected and nothing is written. Returns the number of nodes imported.
func (d *DB) Import(data []byte) (int, error) {
	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return 0, fmt.Errorf("parsing dump: %w", err)
	}
	if dump.Version > exportVersion {
		return 0, fmt.Errorf("unsupported dump version %d", dump.Version)
	}

	err := d.withTx(func(tx *sql.Tx) error {
		newIDs := make(map[int64]int64, len(dump.Nodes))
		for _, n := range dump.Nodes {
			if n.Title == "" {
				return fmt.Errorf("node %d: %w", n.ID, ErrEmptyTitle)
			}
			if _, dup := newIDs[n.ID]; dup {
				return fmt.Errorf("duplicate node id %d in dump", n.ID)
			}
			res, err := tx.Exec(
				`INSERT INTO nodes (title, parent_id, content, collapsed) VALUES (?, NULL, ?, ?)`,
				n.Title, n.Content, n.Collapsed,
			)
			if err != nil {
				return fmt.Errorf("importing node %d: %w", n.ID, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			newIDs[n.ID] = id
		}

		for _, n := range dump.Nodes {
			if n.ParentID == nil {
				continue
			}
			parent, ok := newIDs[*n.ParentID]
			if !ok {
				continue
			}
			child := newIDs[n.ID]
			cyclic, err := reaches(tx, parent, child)
			if err != nil {
				return err
			}
			if cyclic {
				return fmt.Errorf("importing node %d under %d: %w", n.ID, *n.ParentID, ErrCycle)
			}
			if _, err := tx.Exec(`UPDATE nodes SET parent_id = ? WHERE id = ?`, parent, child); err != nil {
				return fmt.Errorf("linking node %d: %w", n.ID, err)
			}
		}

		for _, s := range dump.Settings {
			if err := setSetting(tx, s.Key, s.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(dump.Nodes), nil
}
