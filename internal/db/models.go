package db

// Node represents a row in the nodes table
type Node struct {
	ID        int64  `json:"id"`
	ParentID  *int64 `json:"parent_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Collapsed bool   `json:"collapsed"`
}

// IsRoot reports whether the node sits at the top level of the forest
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// Setting represents a row in the settings table
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CreateNodeOpts holds optional fields for node creation
type CreateNodeOpts struct {
	ParentID  *int64
	Content   string
	Collapsed bool
}

// NodeUpdate is a partial update. Nil fields are left untouched.
type NodeUpdate struct {
	Title     *string
	Content   *string
	Collapsed *bool
}

// Empty reports whether the update carries no field at all
func (u NodeUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Collapsed == nil
}

// ID returns a pointer to id, for use as a parent reference
func ID(id int64) *int64 {
	return &id
}
