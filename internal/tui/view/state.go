// Package view tracks which parts of a diff tree are folded, where the
// cursor is, and how far the viewport is scrolled. It never touches
// selection flags.
package view

import (
	"fmt"

	"github.com/colonyops/sift/internal/core/difftree"
)

// RowMap maps between tree nodes and rendered rows. Context rows and
// other decoration are rows but not items.
type RowMap interface {
	// Len is the number of rendered rows.
	Len() int
	// RowOf returns the row of an item, or -1 if it is not rendered.
	RowOf(id difftree.NodeID) int
	// ItemAt returns the item rendered at row, or NoNode for decoration.
	ItemAt(row int) difftree.NodeID
}

// State is the fold, cursor, and scroll state of one session.
type State struct {
	tree      *difftree.Tree
	collapsed map[difftree.NodeID]bool
	cursor    difftree.NodeID
	offset    int

	items []difftree.NodeID
	index map[difftree.NodeID]int
	stale bool
}

// New creates a view with the cursor on the first file. When collapsed is
// true every file starts folded.
func New(tree *difftree.Tree, collapsed bool) *State {
	s := &State{
		tree:      tree,
		collapsed: make(map[difftree.NodeID]bool),
		cursor:    difftree.NoNode,
		stale:     true,
	}
	if collapsed {
		for _, id := range tree.Roots() {
			s.collapsed[id] = true
		}
	}
	if items := s.Items(); len(items) > 0 {
		s.cursor = items[0]
	}
	return s
}

// IsItem reports whether a node can ever hold the cursor: files, selectable
// or hunk sections, and changed lines. Context lines and unchanged sections
// are decoration.
func IsItem(tree *difftree.Tree, id difftree.NodeID) bool {
	n, err := tree.Node(id)
	if err != nil {
		return false
	}
	switch n.Kind {
	case difftree.FileNode:
		return true
	case difftree.SectionNode:
		sec, _ := tree.Section(id)
		return sec.Kind != difftree.Unchanged
	default:
		return n.Leaf
	}
}

// Foldable reports whether a node has item children that folding would hide.
func (s *State) Foldable(id difftree.NodeID) bool {
	n, err := s.tree.Node(id)
	if err != nil || n.Kind == difftree.LineNode {
		return false
	}
	for _, c := range n.Children {
		if IsItem(s.tree, c) {
			return true
		}
	}
	return false
}

// Collapsed reports whether id is folded.
func (s *State) Collapsed(id difftree.NodeID) bool { return s.collapsed[id] }

// Items returns the logical item sequence: every item not hidden by a
// collapsed ancestor, in tree order.
func (s *State) Items() []difftree.NodeID {
	if !s.stale {
		return s.items
	}

	s.items = nil
	s.index = make(map[difftree.NodeID]int)
	var walk func(id difftree.NodeID)
	walk = func(id difftree.NodeID) {
		if !IsItem(s.tree, id) {
			return
		}
		s.index[id] = len(s.items)
		s.items = append(s.items, id)
		if s.collapsed[id] {
			return
		}
		n, _ := s.tree.Node(id)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range s.tree.Roots() {
		walk(root)
	}

	s.stale = false
	return s.items
}

// Visible reports whether an item is in the current logical sequence.
func (s *State) Visible(id difftree.NodeID) bool {
	s.Items()
	_, ok := s.index[id]
	return ok
}

// Cursor returns the focused item, or NoNode for an empty tree.
func (s *State) Cursor() difftree.NodeID { return s.cursor }

// Offset is the first rendered row in the viewport.
func (s *State) Offset() int { return s.offset }

func (s *State) cursorIndex() int {
	s.Items()
	if i, ok := s.index[s.cursor]; ok {
		return i
	}
	return -1
}

func (s *State) moveTo(i int) bool {
	items := s.Items()
	if len(items) == 0 {
		return false
	}
	i = max(0, min(i, len(items)-1))
	if items[i] == s.cursor {
		return false
	}
	s.cursor = items[i]
	return true
}

// Next moves the cursor down one item. It stops at the last item.
func (s *State) Next() bool { return s.moveTo(s.cursorIndex() + 1) }

// Prev moves the cursor up one item. It stops at the first item.
func (s *State) Prev() bool { return s.moveTo(s.cursorIndex() - 1) }

// First and Last jump to the ends of the sequence.
func (s *State) First() bool { return s.moveTo(0) }
func (s *State) Last() bool  { return s.moveTo(len(s.Items()) - 1) }

type kindKey struct {
	node    difftree.NodeKind
	section difftree.SectionKind
}

// headerKind is the kind of header a same-kind jump looks for from id:
// files jump between files, sections and lines between section headers of
// the same variant.
func (s *State) headerKind(id difftree.NodeID) kindKey {
	n, _ := s.tree.Node(id)
	switch n.Kind {
	case difftree.FileNode:
		return kindKey{node: difftree.FileNode}
	case difftree.LineNode:
		id = n.Parent
	}
	sec, _ := s.tree.Section(id)
	return kindKey{node: difftree.SectionNode, section: sec.Kind}
}

func (s *State) matches(id difftree.NodeID, want kindKey) bool {
	n, _ := s.tree.Node(id)
	if n.Kind != want.node {
		return false
	}
	if n.Kind == difftree.SectionNode {
		sec, _ := s.tree.Section(id)
		return sec.Kind == want.section
	}
	return true
}

// NextSameKind jumps to the next file when on a file, and to the next
// section header of the same variant when on a section or line.
func (s *State) NextSameKind() bool {
	i := s.cursorIndex()
	if i < 0 {
		return false
	}
	want := s.headerKind(s.cursor)
	items := s.Items()
	for j := i + 1; j < len(items); j++ {
		if s.matches(items[j], want) {
			return s.moveTo(j)
		}
	}
	return false
}

// PrevSameKind is NextSameKind in reverse.
func (s *State) PrevSameKind() bool {
	i := s.cursorIndex()
	if i < 0 {
		return false
	}
	want := s.headerKind(s.cursor)
	items := s.Items()
	for j := i - 1; j >= 0; j-- {
		if s.matches(items[j], want) {
			return s.moveTo(j)
		}
	}
	return false
}

// SetCollapsed folds or unfolds id. Folding a node whose subtree holds the
// cursor moves the cursor to id.
func (s *State) SetCollapsed(id difftree.NodeID, collapsed bool) error {
	if !s.tree.Valid(id) {
		return fmt.Errorf("%w: node %d", difftree.ErrInvalidReference, id)
	}
	if !s.Foldable(id) || s.collapsed[id] == collapsed {
		return nil
	}

	if collapsed {
		s.collapsed[id] = true
		if s.tree.Contains(id, s.cursor) {
			s.cursor = id
		}
	} else {
		delete(s.collapsed, id)
	}
	s.stale = true
	return nil
}

// ToggleFold flips the fold of the item under the cursor.
func (s *State) ToggleFold() bool {
	if !s.Foldable(s.cursor) {
		return false
	}
	_ = s.SetCollapsed(s.cursor, !s.collapsed[s.cursor])
	return true
}

// FoldOuter collapses the item under the cursor if it is an expanded
// foldable node, and otherwise moves to its enclosing item.
func (s *State) FoldOuter() bool {
	if s.Foldable(s.cursor) && !s.collapsed[s.cursor] {
		_ = s.SetCollapsed(s.cursor, true)
		return true
	}
	return s.Outer()
}

// Outer moves to the enclosing item regardless of fold state.
func (s *State) Outer() bool {
	n, err := s.tree.Node(s.cursor)
	if err != nil || n.Parent == difftree.NoNode {
		return false
	}
	s.cursor = n.Parent
	return true
}

// Inner unfolds the item under the cursor if needed and moves to its first
// child item.
func (s *State) Inner() bool {
	if !s.Foldable(s.cursor) {
		return false
	}
	_ = s.SetCollapsed(s.cursor, false)

	n, _ := s.tree.Node(s.cursor)
	for _, c := range n.Children {
		if IsItem(s.tree, c) {
			s.cursor = c
			return true
		}
	}
	return false
}

// ExpandAll unfolds everything when anything is folded, and otherwise folds
// every file, moving the cursor to its file.
func (s *State) ExpandAll() {
	anyCollapsed := false
	for id, c := range s.collapsed {
		if c && s.Foldable(id) {
			anyCollapsed = true
			break
		}
	}

	if anyCollapsed {
		clear(s.collapsed)
	} else {
		for _, id := range s.tree.Roots() {
			if s.Foldable(id) {
				s.collapsed[id] = true
			}
		}
		if s.cursor != difftree.NoNode {
			if f, err := s.tree.FileOf(s.cursor); err == nil && s.collapsed[f] {
				s.cursor = f
			}
		}
	}
	s.stale = true
}

// Focus moves the cursor to id, unfolding its ancestors if they hide it.
func (s *State) Focus(id difftree.NodeID) error {
	if !IsItem(s.tree, id) {
		return fmt.Errorf("%w: node %d cannot hold the cursor", difftree.ErrInvalidReference, id)
	}
	for p := s.parent(id); p != difftree.NoNode; p = s.parent(p) {
		if s.collapsed[p] {
			delete(s.collapsed, p)
			s.stale = true
		}
	}
	s.cursor = id
	return nil
}

func (s *State) parent(id difftree.NodeID) difftree.NodeID {
	n, err := s.tree.Node(id)
	if err != nil {
		return difftree.NoNode
	}
	return n.Parent
}

// EnsureVisible scrolls the minimum amount that puts the cursor's row inside
// a viewport of height rows.
func (s *State) EnsureVisible(rows RowMap, height int) {
	row := rows.RowOf(s.cursor)
	if row < 0 || height <= 0 {
		s.clampOffset(rows, height)
		return
	}
	if row < s.offset {
		s.offset = row
	}
	if row >= s.offset+height {
		s.offset = row - height + 1
	}
	s.clampOffset(rows, height)
}

func (s *State) clampOffset(rows RowMap, height int) {
	maxOffset := max(0, rows.Len()-max(height, 1))
	s.offset = max(0, min(s.offset, maxOffset))
}

// ScrollLines moves the viewport n rows (negative scrolls up) without moving it
// past either end, then pulls the cursor into the viewport if it fell out.
func (s *State) ScrollLines(rows RowMap, height, n int) {
	s.offset += n
	s.clampOffset(rows, height)
	if height <= 0 {
		return
	}

	row := rows.RowOf(s.cursor)
	switch {
	case row >= 0 && row < s.offset:
		s.focusRowRange(rows, s.offset, s.offset+height, 1)
	case row >= s.offset+height:
		s.focusRowRange(rows, s.offset+height-1, s.offset-1, -1)
	}
}

// ScrollPage scrolls by n viewports.
func (s *State) ScrollPage(rows RowMap, height, n int) {
	s.ScrollLines(rows, height, n*max(height, 1))
}

// focusRowRange moves the cursor to the first item row between from and to
// (exclusive), stepping by dir.
func (s *State) focusRowRange(rows RowMap, from, to, dir int) {
	for r := from; r != to; r += dir {
		if r < 0 || r >= rows.Len() {
			return
		}
		if id := rows.ItemAt(r); id != difftree.NoNode {
			s.cursor = id
			return
		}
	}
}

// FocusRow moves the cursor to the item rendered at row. Rows without an
// item leave the cursor where it is.
func (s *State) FocusRow(rows RowMap, row int) bool {
	if row < 0 || row >= rows.Len() {
		return false
	}
	id := rows.ItemAt(row)
	if id == difftree.NoNode {
		return false
	}
	s.cursor = id
	return true
}
