package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTripIntoFreshStore(t *testing.T) {
	src := openTestDB(t)
	a, b, c := abcTree(t, src)
	require.NoError(t, src.SetCollapsed(b, true))
	require.NoError(t, src.UpdateNode(c, NodeUpdate{Content: strPtr("```go\nfmt.Println()\n```")}))
	require.NoError(t, src.SetSetting("language", "fr"))
	// A moved node whose parent has a higher id than itself.
	late := mustCreate(t, src, "Late", nil)
	require.NoError(t, src.UpdateNodeParent(a, &late))

	data, err := src.Export()
	require.NoError(t, err)

	dst := openTestDB(t)
	mustCreate(t, dst, "Existing", nil)
	n, err := dst.Import(data)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	roots, err := dst.GetChildren(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Existing", "Late"}, titles(roots))

	lateKids, err := dst.GetChildren(&roots[1].ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, titles(lateKids))

	aKids, err := dst.GetChildren(&lateKids[0].ID)
	require.NoError(t, err)
	require.Len(t, aKids, 1)
	assert.Equal(t, "B", aKids[0].Title)
	assert.True(t, aKids[0].Collapsed)

	cNodes, err := dst.GetChildren(&aKids[0].ID)
	require.NoError(t, err)
	require.Len(t, cNodes, 1)
	assert.Contains(t, cNodes[0].Content, "fmt.Println")

	lang, err := dst.GetSetting("language", "en")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}

func TestImport_DanglingParentBecomesRoot(t *testing.T) {
	d := openTestDB(t)
	data, err := json.Marshal(Dump{
		Version: 1,
		Nodes:   []Node{{ID: 7, ParentID: ID(99), Title: "stray"}},
	})
	require.NoError(t, err)

	_, err = d.Import(data)
	require.NoError(t, err)

	roots, err := d.GetChildren(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stray"}, titles(roots))
}

func TestImport_RejectsBadInput(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Import([]byte("not json"))
	assert.Error(t, err)

	_, err = d.Import([]byte(`{"version": 99}`))
	assert.ErrorContains(t, err, "unsupported dump version")

	_, err = d.Import([]byte(`{"version": 1, "nodes": [{"id": 1, "title": "ok"}, {"id": 2, "title": ""}]}`))
	require.ErrorIs(t, err, ErrEmptyTitle)

	all, err := d.AllNodes()
	require.NoError(t, err)
	assert.Empty(t, all, "failed import must not leave partial rows")
}

func TestImport_RejectsCycles(t *testing.T) {
	for name, dump := range map[string]string{
		"mutual": `{"version": 1, "nodes": [
			{"id": 1, "parent_id": 2, "title": "one"},
			{"id": 2, "parent_id": 1, "title": "two"}]}`,
		"self": `{"version": 1, "nodes": [{"id": 3, "parent_id": 3, "title": "self"}]}`,
		"long": `{"version": 1, "nodes": [
			{"id": 1, "parent_id": 3, "title": "a"},
			{"id": 2, "parent_id": 1, "title": "b"},
			{"id": 3, "parent_id": 2, "title": "c"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			d := openTestDB(t)
			mustCreate(t, d, "Existing", nil)

			_, err := d.Import([]byte(dump))
			require.ErrorIs(t, err, ErrCycle)

			all, err := d.AllNodes()
			require.NoError(t, err)
			assert.Equal(t, []string{"Existing"}, titles(all))
		})
	}
}

func TestImport_RejectsDuplicateIDs(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Import([]byte(`{"version": 1, "nodes": [
		{"id": 1, "title": "first"},
		{"id": 1, "title": "again"}]}`))
	require.ErrorContains(t, err, "duplicate node id 1")

	all, err := d.AllNodes()
	require.NoError(t, err)
	assert.Empty(t, all)
}
