package forest

import "sort"

// DepthBucket is one bucket in the depth histogram
type DepthBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// WideNode is a node with many direct children
type WideNode struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Children int    `json:"children"`
}

// Report is the result of an integrity and shape check over a snapshot
type Report struct {
	TotalNodes     int           `json:"total_nodes"`
	RootCount      int           `json:"root_count"`
	LeafCount      int           `json:"leaf_count"`
	CollapsedCount int           `json:"collapsed_count"`
	ContentBytes   int64         `json:"content_bytes"`
	MaxDepth       int           `json:"max_depth"`
	NumTrees       int           `json:"num_trees"`
	LargestTree    int           `json:"largest_tree"`
	DanglingCount  int           `json:"dangling_count"`
	DanglingIDs    []int64       `json:"dangling_ids"`
	CycleCount     int           `json:"cycle_count"`
	CycleIDs       []int64       `json:"cycle_ids"`
	DepthHistogram []DepthBucket `json:"depth_histogram"`
	Widest         []WideNode    `json:"widest"`
}

// Healthy reports whether every parent link resolves and the parent
// relation is acyclic.
func (r *Report) Healthy() bool {
	return r.DanglingCount == 0 && r.CycleCount == 0
}

// Check analyzes a snapshot: tree count, depth distribution, widest nodes,
// dangling parent references and nodes whose ancestor chain never reaches a
// root (members of a cycle or hanging beneath one).
func Check(snap *Snapshot, topN int) *Report {
	total := len(snap.Nodes)
	if total == 0 {
		return &Report{DepthHistogram: defaultHistogram()}
	}

	// Trees via UnionFind over parent links
	nodeIDs := snap.NodeIDs()
	uf := NewUnionFind(nodeIDs)
	for _, id := range nodeIDs {
		if p := snap.Nodes[id].ParentID; p != nil {
			if _, ok := snap.Nodes[*p]; ok {
				uf.Union(id, *p)
			}
		}
	}
	components := uf.Components()
	largest := 0
	for _, c := range components {
		if len(c) > largest {
			largest = len(c)
		}
	}

	// Depths from every starting point: true roots and detached subtrees.
	depth := make(map[int64]int, total)
	type frame struct {
		id    int64
		depth int
	}
	var pending []frame
	for _, id := range snap.Roots {
		pending = append(pending, frame{id, 0})
	}
	for _, id := range snap.Dangling {
		pending = append(pending, frame{id, 0})
	}
	maxDepth := 0
	for len(pending) > 0 {
		f := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, seen := depth[f.id]; seen {
			continue
		}
		depth[f.id] = f.depth
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		for _, c := range snap.Children[f.id] {
			pending = append(pending, frame{c, f.depth + 1})
		}
	}

	var cycleIDs []int64
	buckets := [6]int{}
	var (
		leaves, collapsed int
		contentBytes      int64
		wide              []WideNode
	)
	for _, id := range nodeIDs {
		n := snap.Nodes[id]
		contentBytes += int64(n.ContentBytes)
		if n.Collapsed {
			collapsed++
		}
		kids := len(snap.Children[id])
		if kids == 0 {
			leaves++
		} else {
			wide = append(wide, WideNode{ID: id, Title: n.Title, Children: kids})
		}
		d, ok := depth[id]
		if !ok {
			cycleIDs = append(cycleIDs, id)
			continue
		}
		buckets[depthBucket(d)]++
	}

	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}

	sort.SliceStable(wide, func(i, j int) bool { return wide[i].Children > wide[j].Children })
	if len(wide) > topN {
		wide = wide[:topN]
	}

	dangling := append([]int64(nil), snap.Dangling...)
	danglingCount := len(dangling)
	if len(dangling) > topN {
		dangling = dangling[:topN]
	}
	cycleCount := len(cycleIDs)
	if len(cycleIDs) > topN {
		cycleIDs = cycleIDs[:topN]
	}

	return &Report{
		TotalNodes:     total,
		RootCount:      len(snap.Roots),
		LeafCount:      leaves,
		CollapsedCount: collapsed,
		ContentBytes:   contentBytes,
		MaxDepth:       maxDepth,
		NumTrees:       len(components),
		LargestTree:    largest,
		DanglingCount:  danglingCount,
		DanglingIDs:    dangling,
		CycleCount:     cycleCount,
		CycleIDs:       cycleIDs,
		DepthHistogram: histogram,
		Widest:         wide,
	}
}

func defaultHistogram() []DepthBucket {
	return []DepthBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16+"},
	}
}

func depthBucket(depth int) int {
	switch {
	case depth == 0:
		return 0
	case depth == 1:
		return 1
	case depth <= 3:
		return 2
	case depth <= 7:
		return 3
	case depth <= 15:
		return 4
	default:
		return 5
	}
}
