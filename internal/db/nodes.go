package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const nodeColumns = `id, parent_id, title, content, collapsed`

// deleteBatch bounds the number of ids bound into one DELETE statement.
const deleteBatch = 500

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// scanNode scans a row into a Node. The row must carry nodeColumns in order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var (
		n        Node
		parentID sql.NullInt64
		content  sql.NullString
	)
	if err := scanner.Scan(&n.ID, &parentID, &n.Title, &content, &n.Collapsed); err != nil {
		return n, err
	}
	if parentID.Valid {
		p := parentID.Int64
		n.ParentID = &p
	}
	n.Content = content.String
	return n, nil
}

func scanNodes(rows *sql.Rows) ([]Node, error) {
	defer rows.Close()
	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateNode inserts a node and returns its id. Ids grow monotonically and
// are never reused. The parent is not checked unless StrictParents is set.
func (d *DB) CreateNode(title string, opts CreateNodeOpts) (int64, error) {
	var id int64
	err := d.withTx(func(tx *sql.Tx) error {
		if d.StrictParents && opts.ParentID != nil {
			if err := requireNode(tx, *opts.ParentID); err != nil {
				return err
			}
		}
		res, err := tx.Exec(
			`INSERT INTO nodes (title, parent_id, content, collapsed) VALUES (?, ?, ?, ?)`,
			title, nullableID(opts.ParentID), opts.Content, opts.Collapsed,
		)
		if err != nil {
			return fmt.Errorf("creating node: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading node id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	d.log.Debug("node created", zap.Int64("id", id), zap.String("title", title))
	return id, nil
}

// GetNode returns a single node by ID, or nil if not found
func (d *DB) GetNode(id int64) (*Node, error) {
	var node *Node
	err := d.withTx(func(tx *sql.Tx) error {
		var err error
		node, err = getNode(tx, id)
		return err
	})
	return node, err
}

func getNode(q queryer, id int64) (*Node, error) {
	row := q.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading node %d: %w", id, err)
	}
	return &n, nil
}

func requireNode(q queryer, id int64) error {
	n, err := getNode(q, id)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("%w: %d", ErrParentNotFound, id)
	}
	return nil
}

// GetChildren returns the direct children of parentID ordered by id.
// A nil parentID returns the root-level nodes.
func (d *DB) GetChildren(parentID *int64) ([]Node, error) {
	var nodes []Node
	err := d.withTx(func(tx *sql.Tx) error {
		var (
			rows *sql.Rows
			err  error
		)
		if parentID == nil {
			rows, err = tx.Query(`SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id IS NULL ORDER BY id`)
		} else {
			rows, err = tx.Query(`SELECT `+nodeColumns+` FROM nodes WHERE parent_id = ? ORDER BY id`, *parentID)
		}
		if err != nil {
			return fmt.Errorf("listing children: %w", err)
		}
		nodes, err = scanNodes(rows)
		return err
	})
	return nodes, err
}

// AllNodes returns every node ordered by id
func (d *DB) AllNodes() ([]Node, error) {
	var nodes []Node
	err := d.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT ` + nodeColumns + ` FROM nodes ORDER BY id`)
		if err != nil {
			return fmt.Errorf("listing nodes: %w", err)
		}
		nodes, err = scanNodes(rows)
		return err
	})
	return nodes, err
}

// UpdateNode applies a partial update. Only non-nil fields are written.
// An empty update, or a missing id, is a no-op. A blank title is rejected
// with ErrEmptyTitle and nothing is written.
func (d *DB) UpdateNode(id int64, u NodeUpdate) error {
	if u.Empty() {
		return nil
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return ErrEmptyTitle
	}

	var (
		fields []string
		values []any
	)
	if u.Title != nil {
		fields = append(fields, "title = ?")
		values = append(values, *u.Title)
	}
	if u.Content != nil {
		fields = append(fields, "content = ?")
		values = append(values, *u.Content)
	}
	if u.Collapsed != nil {
		fields = append(fields, "collapsed = ?")
		values = append(values, *u.Collapsed)
	}
	values = append(values, id)

	err := d.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE nodes SET `+strings.Join(fields, ", ")+` WHERE id = ?`, values...)
		if err != nil {
			return fmt.Errorf("updating node %d: %w", id, err)
		}
		return nil
	})
	if err == nil {
		d.log.Debug("node updated", zap.Int64("id", id), zap.Strings("fields", fields))
	}
	return err
}

// SetCollapsed records the expanded/collapsed state of a node
func (d *DB) SetCollapsed(id int64, collapsed bool) error {
	return d.UpdateNode(id, NodeUpdate{Collapsed: &collapsed})
}

// DeleteNode removes id and its whole subtree and returns the number of
// rows removed. A missing id removes nothing.
func (d *DB) DeleteNode(id int64) (int, error) {
	var removed int
	err := d.withTx(func(tx *sql.Tx) error {
		n, err := getNode(tx, id)
		if err != nil || n == nil {
			return err
		}
		ids, err := descendants(tx, id)
		if err != nil {
			return err
		}
		ids = append(ids, id)

		for start := 0; start < len(ids); start += deleteBatch {
			end := min(start+deleteBatch, len(ids))
			batch := ids[start:end]
			args := make([]any, len(batch))
			for i, v := range batch {
				args[i] = v
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
			res, err := tx.Exec(`DELETE FROM nodes WHERE id IN (`+placeholders+`)`, args...)
			if err != nil {
				return fmt.Errorf("deleting nodes: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("deleting nodes: %w", err)
			}
			removed += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		d.log.Debug("subtree deleted", zap.Int64("id", id), zap.Int("removed", removed))
	}
	return removed, nil
}

// Descendants returns the ids of every transitive child of id, parents
// before their children.
func (d *DB) Descendants(id int64) ([]int64, error) {
	var ids []int64
	err := d.withTx(func(tx *sql.Tx) error {
		var err error
		ids, err = descendants(tx, id)
		return err
	})
	return ids, err
}

// descendants walks the subtree with an explicit work-list so that deep
// chains cannot exhaust the stack. Ids already seen are skipped, which
// keeps a corrupted parent cycle from looping forever.
func descendants(q queryer, id int64) ([]int64, error) {
	seen := map[int64]bool{id: true}
	var out []int64
	pending := []int64{id}

	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := childIDs(q, current)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			pending = append(pending, c)
		}
	}
	return out, nil
}

func childIDs(q queryer, parentID int64) ([]int64, error) {
	rows, err := q.Query(`SELECT id FROM nodes WHERE parent_id = ? ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing children of %d: %w", parentID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateNodeParent moves id under parentID, or to the root level when
// parentID is nil. The ancestor chain of parentID is walked first; if it
// reaches id the move fails with ErrCycle and nothing changes. The walk and
// the write share one transaction.
func (d *DB) UpdateNodeParent(id int64, parentID *int64) error {
	err := d.withTx(func(tx *sql.Tx) error {
		if parentID != nil {
			if d.StrictParents {
				if err := requireNode(tx, *parentID); err != nil {
					return err
				}
			}
			cyclic, err := reaches(tx, *parentID, id)
			if err != nil {
				return err
			}
			if cyclic {
				return fmt.Errorf("moving node %d under %d: %w", id, *parentID, ErrCycle)
			}
		}

		if _, err := tx.Exec(`UPDATE nodes SET parent_id = ? WHERE id = ?`, nullableID(parentID), id); err != nil {
			return fmt.Errorf("moving node %d: %w", id, err)
		}
		return nil
	})
	if errors.Is(err, ErrCycle) {
		d.log.Warn("move rejected", zap.Int64("id", id), zap.Int64p("parent", parentID))
		return err
	}
	if err == nil {
		d.log.Debug("node moved", zap.Int64("id", id), zap.Int64p("parent", parentID))
	}
	return err
}

// reaches walks parent links upward from start and reports whether target
// is on the chain, start included. The walk ends at a root, at a missing
// node, or at an id already visited.
func reaches(q queryer, start, target int64) (bool, error) {
	seen := make(map[int64]bool)
	current := &start
	for current != nil {
		if *current == target {
			return true, nil
		}
		if seen[*current] {
			return false, nil
		}
		seen[*current] = true

		n, err := getNode(q, *current)
		if err != nil {
			return false, err
		}
		if n == nil {
			return false, nil
		}
		current = n.ParentID
	}
	return false, nil
}

// Ancestors returns the chain of nodes above id, nearest parent first.
func (d *DB) Ancestors(id int64) ([]Node, error) {
	var chain []Node
	err := d.withTx(func(tx *sql.Tx) error {
		n, err := getNode(tx, id)
		if err != nil || n == nil {
			return err
		}
		seen := map[int64]bool{id: true}
		for next := n.ParentID; next != nil && !seen[*next]; {
			seen[*next] = true
			p, err := getNode(tx, *next)
			if err != nil {
				return err
			}
			if p == nil {
				break
			}
			chain = append(chain, *p)
			next = p.ParentID
		}
		return nil
	})
	return chain, err
}
