package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/sift/internal/core/difftree"
)

// ids: a.go 0, hunk 1 (lines 2 3), context 4 (line 5), hunk 6 (line 7),
// run.sh 8, mode 9, b.go 10, hunk 11 (line 12)
func fixture(t *testing.T) *difftree.Tree {
	t.Helper()
	tree, err := difftree.New([]difftree.File{
		{
			Path: "a.go",
			Sections: []difftree.Section{
				difftree.NewChanged(difftree.RemovedLine("x\n"), difftree.AddedLine("y\n")),
				difftree.NewUnchanged("ctx\n"),
				difftree.NewChanged(difftree.AddedLine("z\n")),
			},
		},
		{Path: "run.sh", Sections: []difftree.Section{difftree.NewModeChange(difftree.Unix(0o100755))}},
		{Path: "b.go", Sections: []difftree.Section{difftree.NewChanged(difftree.AddedLine("w\n"))}},
	})
	require.NoError(t, err)
	return tree
}

type rows []difftree.NodeID

func (r rows) Len() int { return len(r) }

func (r rows) RowOf(id difftree.NodeID) int {
	for i, n := range r {
		if n == id {
			return i
		}
	}
	return -1
}

func (r rows) ItemAt(row int) difftree.NodeID { return r[row] }

func ids(v ...difftree.NodeID) []difftree.NodeID { return v }

func TestState_ItemsSkipContext(t *testing.T) {
	s := New(fixture(t), false)

	assert.Equal(t, ids(0, 1, 2, 3, 6, 7, 8, 9, 10, 11, 12), s.Items())
	assert.Equal(t, difftree.NodeID(0), s.Cursor())
	assert.False(t, s.Visible(4))
	assert.False(t, s.Visible(5))
}

func TestState_StartCollapsed(t *testing.T) {
	s := New(fixture(t), true)
	assert.Equal(t, ids(0, 8, 10), s.Items())
}

func TestState_NextPrevStopAtEnds(t *testing.T) {
	s := New(fixture(t), false)

	assert.False(t, s.Prev())
	assert.Equal(t, difftree.NodeID(0), s.Cursor())

	s.Last()
	assert.Equal(t, difftree.NodeID(12), s.Cursor())
	assert.False(t, s.Next())

	assert.True(t, s.Prev())
	assert.Equal(t, difftree.NodeID(11), s.Cursor())
}

func TestState_SameKind(t *testing.T) {
	s := New(fixture(t), false)

	assert.True(t, s.NextSameKind())
	assert.Equal(t, difftree.NodeID(8), s.Cursor())
	assert.True(t, s.NextSameKind())
	assert.Equal(t, difftree.NodeID(10), s.Cursor())
	assert.False(t, s.NextSameKind())

	require.NoError(t, s.Focus(2))
	assert.True(t, s.NextSameKind())
	assert.Equal(t, difftree.NodeID(6), s.Cursor())
	assert.True(t, s.NextSameKind())
	assert.Equal(t, difftree.NodeID(11), s.Cursor(), "the mode marker is a different variant")
	assert.False(t, s.NextSameKind())

	require.NoError(t, s.Focus(12))
	assert.True(t, s.PrevSameKind())
	assert.Equal(t, difftree.NodeID(11), s.Cursor())
	assert.True(t, s.PrevSameKind())
	assert.Equal(t, difftree.NodeID(6), s.Cursor())
}

func TestState_CollapseMovesCursorOut(t *testing.T) {
	s := New(fixture(t), false)
	require.NoError(t, s.Focus(3))

	require.NoError(t, s.SetCollapsed(0, true))
	assert.Equal(t, difftree.NodeID(0), s.Cursor())
	assert.Equal(t, ids(0, 8, 9, 10, 11, 12), s.Items(), "other files stay expanded")

	// collapsing something that does not hold the cursor leaves it alone
	require.NoError(t, s.SetCollapsed(10, true))
	assert.Equal(t, difftree.NodeID(0), s.Cursor())

	require.ErrorIs(t, s.SetCollapsed(99, true), difftree.ErrInvalidReference)
}

func TestState_FoldOuterAndInner(t *testing.T) {
	s := New(fixture(t), false)
	require.NoError(t, s.Focus(3))

	// a line cannot fold, so it moves to its hunk
	assert.True(t, s.FoldOuter())
	assert.Equal(t, difftree.NodeID(1), s.Cursor())
	assert.False(t, s.Collapsed(1))

	// the expanded hunk folds in place
	assert.True(t, s.FoldOuter())
	assert.Equal(t, difftree.NodeID(1), s.Cursor())
	assert.True(t, s.Collapsed(1))
	assert.Equal(t, ids(0, 1, 6, 7, 8, 9, 10, 11, 12), s.Items())

	// the folded hunk moves out to its file
	assert.True(t, s.FoldOuter())
	assert.Equal(t, difftree.NodeID(0), s.Cursor())

	assert.True(t, s.Inner())
	assert.Equal(t, difftree.NodeID(1), s.Cursor())
	assert.True(t, s.Inner())
	assert.Equal(t, difftree.NodeID(2), s.Cursor())
	assert.False(t, s.Collapsed(1))

	assert.False(t, s.Inner(), "lines have no children")
	assert.False(t, s.Outer() && s.Outer() && s.Outer(), "outer stops at the file")
	assert.Equal(t, difftree.NodeID(0), s.Cursor())
}

func TestState_ModeMarkerIsNotFoldable(t *testing.T) {
	s := New(fixture(t), false)
	require.NoError(t, s.Focus(9))

	assert.False(t, s.ToggleFold())
	assert.True(t, s.Foldable(8))
}

func TestState_ExpandAllToggles(t *testing.T) {
	s := New(fixture(t), false)
	require.NoError(t, s.Focus(2))

	s.ExpandAll()
	assert.Equal(t, ids(0, 8, 10), s.Items())
	assert.Equal(t, difftree.NodeID(0), s.Cursor())

	s.ExpandAll()
	assert.Len(t, s.Items(), 11)
}

func TestState_FocusUnfoldsAncestors(t *testing.T) {
	s := New(fixture(t), true)

	require.NoError(t, s.Focus(12))
	assert.True(t, s.Visible(12))
	assert.False(t, s.Collapsed(10))

	require.ErrorIs(t, s.Focus(5), difftree.ErrInvalidReference)
	require.ErrorIs(t, s.Focus(4), difftree.ErrInvalidReference)
}

func TestState_Scrolling(t *testing.T) {
	s := New(fixture(t), false)
	// one decoration row stands in for the context line
	r := rows{0, 1, 2, 3, difftree.NoNode, 6, 7, 8, 9, 10, 11, 12}

	require.NoError(t, s.Focus(12))
	s.EnsureVisible(r, 4)
	assert.Equal(t, 8, s.Offset())

	s.ScrollLines(r, 4, -5)
	assert.Equal(t, 3, s.Offset())
	assert.Equal(t, difftree.NodeID(7), s.Cursor(), "cursor is pulled to the last visible item")

	s.ScrollLines(r, 4, 100)
	assert.Equal(t, 8, s.Offset(), "never scrolls past the end")
	assert.Equal(t, difftree.NodeID(9), s.Cursor())

	s.ScrollPage(r, 4, -10)
	assert.Equal(t, 0, s.Offset())
	assert.Equal(t, difftree.NodeID(3), s.Cursor())

	assert.False(t, s.FocusRow(r, 4))
	assert.True(t, s.FocusRow(r, 5))
	assert.Equal(t, difftree.NodeID(6), s.Cursor())
	assert.False(t, s.FocusRow(r, 40))
}
