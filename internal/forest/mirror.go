package forest

import (
	"errors"
	"fmt"

	"notenodes/internal/db"
)

// ChildLister is the read side of the node store used to build a mirror
type ChildLister interface {
	GetChildren(parentID *int64) ([]db.Node, error)
}

// Item is one node of the in-memory tree mirror
type Item struct {
	Node     db.Node `json:"node"`
	Children []*Item `json:"children,omitempty"`
}

// SkipChildren can be returned by a WalkFunc to skip the item's subtree.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each item in pre-order with its depth (roots are 0)
type WalkFunc func(it *Item, depth int) error

// Load builds the mirror depth-first from repeated GetChildren calls,
// starting at the root level. It uses an explicit stack, so deep trees are fine.
func Load(src ChildLister) ([]*Item, error) {
	return LoadFrom(src, nil)
}

// LoadFrom builds the mirror of the children of parentID (the roots when nil).
func LoadFrom(src ChildLister, parentID *int64) ([]*Item, error) {
	top, err := src.GetChildren(parentID)
	if err != nil {
		return nil, fmt.Errorf("loading children: %w", err)
	}
	roots := wrap(top)

	seen := make(map[int64]bool)
	pending := append([]*Item(nil), roots...)
	for len(pending) > 0 {
		it := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if seen[it.Node.ID] {
			continue
		}
		seen[it.Node.ID] = true

		kids, err := src.GetChildren(&it.Node.ID)
		if err != nil {
			return nil, fmt.Errorf("loading children of %d: %w", it.Node.ID, err)
		}
		it.Children = wrap(kids)
		pending = append(pending, it.Children...)
	}
	return roots, nil
}

func wrap(nodes []db.Node) []*Item {
	items := make([]*Item, len(nodes))
	for i := range nodes {
		items[i] = &Item{Node: nodes[i]}
	}
	return items
}

// Walk visits items in pre-order. Returning SkipChildren from fn prunes
// that item's subtree; any other error stops the walk and is returned.
func Walk(items []*Item, fn WalkFunc) error {
	type frame struct {
		it    *Item
		depth int
	}
	pending := make([]frame, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		pending = append(pending, frame{items[i], 0})
	}
	for len(pending) > 0 {
		f := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		err := fn(f.it, f.depth)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		for i := len(f.it.Children) - 1; i >= 0; i-- {
			pending = append(pending, frame{f.it.Children[i], f.depth + 1})
		}
	}
	return nil
}

// Find returns the item for id, or nil
func Find(items []*Item, id int64) *Item {
	var found *Item
	_ = Walk(items, func(it *Item, _ int) error {
		if it.Node.ID == id {
			found = it
			return errStop
		}
		return nil
	})
	return found
}

var errStop = errors.New("stop")
