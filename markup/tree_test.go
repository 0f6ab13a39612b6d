package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTree returns:
//
//	Root (el-1)
//	  A (el-2)
//	    A1 (el-3)
//	  B (el-4)
func testTree(t *testing.T) []*Node {
	t.Helper()
	res := Parse("<Root><A><A1/></A><B/></Root>", nil, nil)
	require.Empty(t, res.Warnings)
	return res.Roots
}

func childIDs(n *Node) []string {
	ids := []string{}
	for _, c := range n.Children {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestFindWithParent(t *testing.T) {
	roots := testTree(t)

	loc, ok := FindWithParent(roots, "el-3")
	require.True(t, ok)
	assert.Equal(t, "A1", loc.Node.Type)
	assert.Equal(t, "el-2", loc.Parent.ID)
	assert.Equal(t, 0, loc.Index)

	loc, ok = FindWithParent(roots, "el-4")
	require.True(t, ok)
	assert.Equal(t, "el-1", loc.Parent.ID)
	assert.Equal(t, 1, loc.Index)

	loc, ok = FindWithParent(roots, "el-1")
	require.True(t, ok)
	assert.Nil(t, loc.Parent)

	_, ok = FindWithParent(roots, "missing")
	assert.False(t, ok)
}

func TestPath(t *testing.T) {
	roots := testTree(t)

	path, ok := Path(roots, "el-3")
	require.True(t, ok)
	assert.Equal(t, []string{"el-1", "el-2"}, path)

	path, ok = Path(roots, "el-1")
	require.True(t, ok)
	assert.Empty(t, path)

	_, ok = Path(roots, "missing")
	assert.False(t, ok)
}

func TestIsDescendant(t *testing.T) {
	roots := testTree(t)

	assert.True(t, IsDescendant(roots, "el-1", "el-3"))
	assert.True(t, IsDescendant(roots, "el-2", "el-3"))
	assert.False(t, IsDescendant(roots, "el-2", "el-4"))
	assert.False(t, IsDescendant(roots, "el-3", "el-3"))
	assert.False(t, IsDescendant(roots, "el-3", "el-1"))
	assert.False(t, IsDescendant(roots, "missing", "el-1"))
}

func TestRemove(t *testing.T) {
	roots := testTree(t)
	before := dump(roots)

	out, removed := Remove(roots, "el-2")
	require.NotNil(t, removed)
	assert.Equal(t, "el-2", removed.ID)
	assert.Equal(t, 2, Count(out))
	assert.Equal(t, []string{"el-4"}, childIDs(out[0]))

	// the input is not modified
	assert.Equal(t, before, dump(roots))
	assert.Equal(t, 4, Count(roots))

	out, removed = Remove(roots, "missing")
	assert.Nil(t, removed)
	assert.Equal(t, roots, out)

	out, removed = Remove(roots, "el-1")
	assert.Equal(t, "el-1", removed.ID)
	assert.Empty(t, out)
}

func TestInsert(t *testing.T) {
	roots := testTree(t)

	out, err := Insert(roots, &Node{ID: "n1", Type: "New"}, "el-4", 0)
	require.NoError(t, err)
	loc, ok := FindWithParent(out, "n1")
	require.True(t, ok)
	assert.Equal(t, "el-4", loc.Parent.ID)
	assert.Empty(t, roots[0].Children[1].Children, "input must not change")

	// untouched subtrees are shared
	assert.Same(t, roots[0].Children[0], out[0].Children[0])

	out, err = Insert(roots, &Node{ID: "n2", Type: "New"}, "el-1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"el-2", "n2", "el-4"}, childIDs(out[0]))

	out, err = Insert(roots, &Node{ID: "n3", Type: "New"}, "", -1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "n3", out[1].ID)

	_, err = Insert(roots, &Node{ID: "n4"}, "missing", 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = Insert(roots, &Node{ID: "x", Children: []*Node{{ID: "el-3"}}}, "", 0)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = Insert(roots, nil, "", 0)
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	roots := testTree(t)

	out, err := Move(roots, "el-4", "el-2", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"el-2"}, childIDs(out[0]))
	assert.Equal(t, []string{"el-4", "el-3"}, childIDs(out[0].Children[0]))
	assert.Equal(t, 4, Count(out))

	out, err = Move(roots, "el-3", "", 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "el-3", out[0].ID)

	_, err = Move(roots, "el-2", "el-3", 0)
	assert.ErrorIs(t, err, ErrCycle)

	_, err = Move(roots, "el-2", "el-2", 0)
	assert.ErrorIs(t, err, ErrCycle)

	_, err = Move(roots, "missing", "el-2", 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = Move(roots, "el-2", "missing", 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSetAttr(t *testing.T) {
	roots := testTree(t)

	out, err := SetAttr(roots, "el-3", "width", Num(10))
	require.NoError(t, err)
	loc, _ := FindWithParent(out, "el-3")
	v, ok := loc.Node.Attr.Get("width")
	require.True(t, ok)
	assert.Equal(t, Num(10), v)

	_, ok = roots[0].Children[0].Children[0].Attr.Get("width")
	assert.False(t, ok, "input must not change")

	out, err = DeleteAttr(out, "el-3", "width")
	require.NoError(t, err)
	loc, _ = FindWithParent(out, "el-3")
	assert.Empty(t, loc.Node.Attr)

	_, err = SetAttr(roots, "missing", "width", Num(1))
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = DeleteAttr(roots, "missing", "width")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestClone(t *testing.T) {
	roots := Parse(`<A x="1"><B/></A>`, nil, nil).Roots
	c := Clone(roots)
	require.Equal(t, dump(roots), dump(c))

	c[0].Attr.Set("x", Str("2"))
	c[0].Children[0].Type = "C"
	assert.Equal(t, "| <A>\n|   x=\"1\"\n|   <B>\n", dump(roots))
}
