package forest

import (
	"sort"

	"notenodes/internal/db"
)

// NodeInfo is a lightweight node representation decoupled from DB types
type NodeInfo struct {
	ID           int64
	Title        string
	ParentID     *int64
	Collapsed    bool
	ContentBytes int
}

// Snapshot holds the parent relation of a whole store with a precomputed
// child index.
type Snapshot struct {
	Nodes    map[int64]*NodeInfo
	Children map[int64][]int64 // parent id -> child ids, ascending
	Roots    []int64           // nodes without a parent, ascending
	Dangling []int64           // nodes whose parent id has no node, ascending
}

// NewSnapshot builds a Snapshot from raw nodes
func NewSnapshot(nodes []*NodeInfo) *Snapshot {
	nodeMap := make(map[int64]*NodeInfo, len(nodes))
	for _, n := range nodes {
		nodeMap[n.ID] = n
	}

	children := make(map[int64][]int64)
	var roots, dangling []int64
	for _, n := range nodes {
		switch {
		case n.ParentID == nil:
			roots = append(roots, n.ID)
		case nodeMap[*n.ParentID] == nil:
			dangling = append(dangling, n.ID)
		default:
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}
	for _, ids := range children {
		sortIDs(ids)
	}
	sortIDs(roots)
	sortIDs(dangling)

	return &Snapshot{
		Nodes:    nodeMap,
		Children: children,
		Roots:    roots,
		Dangling: dangling,
	}
}

// FromNodes loads a Snapshot from store rows
func FromNodes(nodes []db.Node) *Snapshot {
	infos := make([]*NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		var parentID *int64
		if n.ParentID != nil {
			p := *n.ParentID
			parentID = &p
		}
		infos = append(infos, &NodeInfo{
			ID:           n.ID,
			Title:        n.Title,
			ParentID:     parentID,
			Collapsed:    n.Collapsed,
			ContentBytes: len(n.Content),
		})
	}
	return NewSnapshot(infos)
}

// FilterToSubtree returns a new snapshot holding rootID and its descendants,
// with rootID promoted to the root level.
func (s *Snapshot) FilterToSubtree(rootID int64) *Snapshot {
	root, ok := s.Nodes[rootID]
	if !ok {
		return NewSnapshot(nil)
	}

	top := *root
	top.ParentID = nil
	filtered := []*NodeInfo{&top}
	seen := map[int64]bool{rootID: true}
	pending := []int64{rootID}
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, c := range s.Children[id] {
			if seen[c] {
				continue
			}
			seen[c] = true
			filtered = append(filtered, s.Nodes[c])
			pending = append(pending, c)
		}
	}
	return NewSnapshot(filtered)
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *Snapshot) NodeIDs() []int64 {
	ids := make([]int64, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
