package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abcTree builds A(1) > B(2) > C(3).
func abcTree(t *testing.T, d *DB) (a, b, c int64) {
	t.Helper()
	a = mustCreate(t, d, "A", nil)
	b = mustCreate(t, d, "B", &a)
	c = mustCreate(t, d, "C", &b)
	return a, b, c
}

func titles(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

func TestInitialize_Idempotent(t *testing.T) {
	d := openTestDB(t)
	id := mustCreate(t, d, "kept", nil)

	require.NoError(t, d.Initialize())
	require.NoError(t, d.Initialize())

	n, err := d.GetNode(id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "kept", n.Title)
}

func TestOpenDB_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")

	d, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, d.Initialize())
	id, err := d.CreateNode("durable", CreateNodeOpts{Content: "# heading", Collapsed: true})
	require.NoError(t, err)
	require.NoError(t, d.SetSetting("language", "fr"))
	require.NoError(t, d.Close())

	d, err = OpenDB(path)
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Initialize())

	n, err := d.GetNode(id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "# heading", n.Content)
	assert.True(t, n.Collapsed)

	lang, err := d.GetSetting("language", "en")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}

func TestInitialize_IndexesExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")

	// A store written before the full-text index existed.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id INTEGER,
			title TEXT NOT NULL,
			content TEXT,
			collapsed INTEGER DEFAULT 0,
			FOREIGN KEY(parent_id) REFERENCES nodes(id)
		);
		CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT);
		INSERT INTO nodes (title, content) VALUES ('Kubernetes', 'pods and services');
		INSERT INTO nodes (parent_id, title, content) VALUES (1, 'Helm', 'charts');
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	d, err := OpenDB(path)
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Initialize())

	got, err := d.SearchNodes("Kubernetes", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes"}, titles(got))

	require.NoError(t, d.UpdateNode(1, NodeUpdate{Content: strPtr("deployments")}))
	got, err = d.SearchNodes("deployments", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes"}, titles(got))
	got, err = d.SearchNodes("services", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	removed, err := d.DeleteNode(1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	got, err = d.SearchNodes("charts", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	// A second startup must not rebuild over a live index.
	require.NoError(t, d.Initialize())
	id := mustCreateContent(t, d, "Terraform", nil, "modules")
	got, err = d.SearchNodes("modules", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestCreateNode_MonotonicIDs(t *testing.T) {
	d := openTestDB(t)

	var last int64
	for i := 0; i < 20; i++ {
		id := mustCreate(t, d, "n", nil)
		assert.Greater(t, id, last)
		last = id
	}

	// Ids are not reused after the newest node is deleted.
	_, err := d.DeleteNode(last)
	require.NoError(t, err)
	next := mustCreate(t, d, "after delete", nil)
	assert.Greater(t, next, last)
}

func TestCreateNode_Defaults(t *testing.T) {
	d := openTestDB(t)
	id := mustCreate(t, d, "plain", nil)

	n, err := d.GetNode(id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Nil(t, n.ParentID)
	assert.True(t, n.IsRoot())
	assert.Equal(t, "", n.Content)
	assert.False(t, n.Collapsed)
}

func TestCreateNode_DanglingParentAccepted(t *testing.T) {
	d := openTestDB(t)

	id, err := d.CreateNode("orphan", CreateNodeOpts{ParentID: ID(999)})
	require.NoError(t, err)

	n, err := d.GetNode(id)
	require.NoError(t, err)
	require.NotNil(t, n.ParentID)
	assert.Equal(t, int64(999), *n.ParentID)
}

func TestCreateNode_StrictParentsRejectsDangling(t *testing.T) {
	d := openTestDB(t)
	d.StrictParents = true

	_, err := d.CreateNode("orphan", CreateNodeOpts{ParentID: ID(999)})
	require.ErrorIs(t, err, ErrParentNotFound)

	all, err := d.AllNodes()
	require.NoError(t, err)
	assert.Empty(t, all)

	root := mustCreate(t, d, "root", nil)
	_, err = d.CreateNode("child", CreateNodeOpts{ParentID: &root})
	assert.NoError(t, err)
}

func TestGetNode_Absent(t *testing.T) {
	d := openTestDB(t)
	n, err := d.GetNode(42)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestGetChildren(t *testing.T) {
	d := openTestDB(t)
	a, b, c := abcTree(t, d)
	d2 := mustCreate(t, d, "D", &a)
	e := mustCreate(t, d, "E", nil)

	roots, err := d.GetChildren(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "E"}, titles(roots))

	kids, err := d.GetChildren(&a)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, titles(kids))

	// Every node shows up exactly once among its parent's children.
	all, err := d.AllNodes()
	require.NoError(t, err)
	for _, n := range all {
		siblings, err := d.GetChildren(n.ParentID)
		require.NoError(t, err)
		count := 0
		for _, s := range siblings {
			if s.ID == n.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, "node %d", n.ID)
	}

	leaf, err := d.GetChildren(&c)
	require.NoError(t, err)
	assert.Empty(t, leaf)
	_ = b
	_ = d2
	_ = e
}

func TestUpdateNode_Partial(t *testing.T) {
	d := openTestDB(t)
	id, err := d.CreateNode("title", CreateNodeOpts{Content: "body"})
	require.NoError(t, err)

	require.NoError(t, d.UpdateNode(id, NodeUpdate{Content: strPtr("new body")}))
	n, err := d.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, "title", n.Title)
	assert.Equal(t, "new body", n.Content)
	assert.False(t, n.Collapsed)

	require.NoError(t, d.UpdateNode(id, NodeUpdate{Title: strPtr("renamed"), Collapsed: boolPtr(true)}))
	n, err = d.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", n.Title)
	assert.Equal(t, "new body", n.Content)
	assert.True(t, n.Collapsed)

	require.NoError(t, d.SetCollapsed(id, false))
	n, err = d.GetNode(id)
	require.NoError(t, err)
	assert.False(t, n.Collapsed)
}

func TestUpdateNode_EmptyUpdateIsNoop(t *testing.T) {
	d := openTestDB(t)
	id := mustCreate(t, d, "same", nil)

	require.NoError(t, d.UpdateNode(id, NodeUpdate{}))
	n, err := d.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, "same", n.Title)
}

func TestUpdateNode_MissingIDIsNoop(t *testing.T) {
	d := openTestDB(t)
	mustCreate(t, d, "only", nil)

	assert.NoError(t, d.UpdateNode(77, NodeUpdate{Title: strPtr("ghost")}))
	all, err := d.AllNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, titles(all))
}

func TestUpdateNode_EmptyTitleRejected(t *testing.T) {
	d := openTestDB(t)
	_, b, _ := abcTree(t, d)

	for _, title := range []string{"", "   "} {
		err := d.UpdateNode(b, NodeUpdate{Title: strPtr(title), Content: strPtr("ignored")})
		require.ErrorIs(t, err, ErrEmptyTitle)
	}

	n, err := d.GetNode(b)
	require.NoError(t, err)
	assert.Equal(t, "B", n.Title)
	assert.Equal(t, "", n.Content)
}

func TestDeleteNode_Subtree(t *testing.T) {
	d := openTestDB(t)
	a, b, c := abcTree(t, d)
	sibling := mustCreate(t, d, "B2", &a)
	other := mustCreate(t, d, "Other", nil)

	removed, err := d.DeleteNode(b)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for _, id := range []int64{b, c} {
		n, err := d.GetNode(id)
		require.NoError(t, err)
		assert.Nil(t, n, "node %d should be gone", id)
	}
	for _, id := range []int64{a, sibling, other} {
		n, err := d.GetNode(id)
		require.NoError(t, err)
		assert.NotNil(t, n, "node %d should survive", id)
	}

	kids, err := d.GetChildren(&a)
	require.NoError(t, err)
	assert.Equal(t, []string{"B2"}, titles(kids))
}

func TestDeleteNode_ScenarioLeavesRootWithoutChildren(t *testing.T) {
	d := openTestDB(t)
	a, b, _ := abcTree(t, d)

	_, err := d.DeleteNode(b)
	require.NoError(t, err)

	n, err := d.GetNode(a)
	require.NoError(t, err)
	require.NotNil(t, n)
	kids, err := d.GetChildren(&a)
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func TestDeleteNode_MissingIsNoop(t *testing.T) {
	d := openTestDB(t)
	mustCreate(t, d, "keep", nil)

	removed, err := d.DeleteNode(1234)
	require.NoError(t, err)
	assert.Zero(t, removed)

	all, err := d.AllNodes()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteNode_DeepChain(t *testing.T) {
	d := openTestDB(t)
	const depth = 3000

	root := mustCreate(t, d, "root", nil)
	parent := root
	for i := 0; i < depth; i++ {
		parent = mustCreate(t, d, "level", &parent)
	}
	keep := mustCreate(t, d, "keep", nil)

	removed, err := d.DeleteNode(root)
	require.NoError(t, err)
	assert.Equal(t, depth+1, removed)

	all, err := d.AllNodes()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestDescendants(t *testing.T) {
	d := openTestDB(t)
	a, b, c := abcTree(t, d)
	x := mustCreate(t, d, "X", &a)

	ids, err := d.Descendants(a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b, c, x}, ids)

	ids, err = d.Descendants(c)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateNodeParent_RejectsCycles(t *testing.T) {
	d := openTestDB(t)
	a, b, c := abcTree(t, d)

	cases := []struct {
		name   string
		node   int64
		parent int64
	}{
		{"self", a, a},
		{"child", a, b},
		{"grandchild", a, c},
		{"middle under leaf", b, c},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := d.UpdateNodeParent(tc.node, &tc.parent)
			require.ErrorIs(t, err, ErrCycle)
		})
	}

	// Tree unchanged.
	n, err := d.GetNode(a)
	require.NoError(t, err)
	assert.Nil(t, n.ParentID)
	n, err = d.GetNode(b)
	require.NoError(t, err)
	assert.Equal(t, a, *n.ParentID)
	n, err = d.GetNode(c)
	require.NoError(t, err)
	assert.Equal(t, b, *n.ParentID)
}

func TestUpdateNodeParent_Moves(t *testing.T) {
	d := openTestDB(t)
	a, b, c := abcTree(t, d)
	other := mustCreate(t, d, "Other", nil)

	// Leaf under an unrelated root.
	require.NoError(t, d.UpdateNodeParent(c, &other))
	n, err := d.GetNode(c)
	require.NoError(t, err)
	assert.Equal(t, other, *n.ParentID)

	// Ancestor under former descendant's new home is fine now.
	require.NoError(t, d.UpdateNodeParent(a, &c))
	n, err = d.GetNode(a)
	require.NoError(t, err)
	assert.Equal(t, c, *n.ParentID)

	// Back to root level.
	require.NoError(t, d.UpdateNodeParent(b, nil))
	roots, err := d.GetChildren(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "Other"}, titles(roots))
}

func TestUpdateNodeParent_MissingParentEndsWalk(t *testing.T) {
	d := openTestDB(t)
	a := mustCreate(t, d, "A", nil)

	require.NoError(t, d.UpdateNodeParent(a, ID(500)))
	n, err := d.GetNode(a)
	require.NoError(t, err)
	assert.Equal(t, int64(500), *n.ParentID)

	d.StrictParents = true
	err = d.UpdateNodeParent(a, ID(501))
	require.ErrorIs(t, err, ErrParentNotFound)
	n, err = d.GetNode(a)
	require.NoError(t, err)
	assert.Equal(t, int64(500), *n.ParentID)
}

func TestUpdateNodeParent_DeepChain(t *testing.T) {
	d := openTestDB(t)
	const depth = 2000

	root := mustCreate(t, d, "root", nil)
	leaf := root
	for i := 0; i < depth; i++ {
		leaf = mustCreate(t, d, "level", &leaf)
	}

	require.ErrorIs(t, d.UpdateNodeParent(root, &leaf), ErrCycle)
}

func TestUpdateNodeParent_CorruptCycleTerminates(t *testing.T) {
	d := openTestDB(t)
	x := mustCreate(t, d, "X", nil)
	y := mustCreate(t, d, "Y", &x)
	z := mustCreate(t, d, "Z", nil)

	// Forge a cycle X <-> Y behind the store's back.
	_, err := d.Conn().Exec(`UPDATE nodes SET parent_id = ? WHERE id = ?`, y, x)
	require.NoError(t, err)

	require.NoError(t, d.UpdateNodeParent(z, &x))

	chain, err := d.Ancestors(z)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, titles(chain))

	removed, err := d.DeleteNode(x)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestAncestors(t *testing.T) {
	d := openTestDB(t)
	_, _, c := abcTree(t, d)

	chain, err := d.Ancestors(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(chain))

	chain, err = d.Ancestors(999)
	require.NoError(t, err)
	assert.Empty(t, chain)
}
