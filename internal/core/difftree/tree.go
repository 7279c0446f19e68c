package difftree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a malformed or self-contradictory set of files
	// handed to New.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidReference marks an id that does not exist in the tree or
	// does not name the expected kind of node.
	ErrInvalidReference = errors.New("invalid reference")
)

// NodeID addresses a node in a Tree. IDs are dense, start at 0, and are
// assigned in pre-order, so a subtree occupies a contiguous id range.
type NodeID int

// NoNode is returned where no node applies, such as the parent of a file.
const NoNode NodeID = -1

// NodeKind distinguishes the three levels of the tree.
type NodeKind int

const (
	FileNode NodeKind = iota
	SectionNode
	LineNode
)

func (k NodeKind) String() string {
	switch k {
	case FileNode:
		return "file"
	case SectionNode:
		return "section"
	case LineNode:
		return "line"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is an arena entry. File, Section and Line index into the tree's
// copy of the caller's files; Section and Line are -1 where they do not
// apply.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Parent   NodeID
	Children []NodeID
	File     int
	Section  int
	Line     int
	Leaf     bool

	// OldLine and NewLine are set on line nodes; 0 means the line does not
	// exist on that side.
	OldLine int
	NewLine int

	end       NodeID // one past the last id in this subtree
	leafStart int    // range into Tree.leaves
	leafEnd   int
}

// Tree is the immutable-shape diff tree stored as an arena.
type Tree struct {
	files  []File
	nodes  []Node
	roots  []NodeID
	leaves []NodeID

	maxLine int
}

// New validates files and builds a Tree from a private copy of them.
// Validation failures wrap ErrInvalidInput.
func New(files []File) (*Tree, error) {
	if err := Validate(files); err != nil {
		return nil, err
	}

	t := &Tree{files: make([]File, len(files))}
	for i, f := range files {
		t.files[i] = f.clone()
	}

	for fi, f := range t.files {
		fileID := t.add(Node{Kind: FileNode, Parent: NoNode, File: fi, Section: -1, Line: -1})
		t.roots = append(t.roots, fileID)

		var before, after int
		for si, s := range f.Sections {
			secID := t.add(Node{
				Kind:    SectionNode,
				Parent:  fileID,
				File:    fi,
				Section: si,
				Line:    -1,
				Leaf:    s.Selectable(),
			})
			t.nodes[fileID].Children = append(t.nodes[fileID].Children, secID)

			if s.OldStart > 0 {
				before = s.OldStart - 1
			}
			if s.NewStart > 0 {
				after = s.NewStart - 1
			}

			for li, line := range s.Lines {
				n := Node{
					Kind:    LineNode,
					Parent:  secID,
					File:    fi,
					Section: si,
					Line:    li,
					Leaf:    s.Kind == Changed,
				}
				switch line.Kind {
				case Context:
					before++
					after++
					n.OldLine, n.NewLine = before, after
				case Removed:
					before++
					n.OldLine = before
				case Added:
					after++
					n.NewLine = after
				}
				t.maxLine = max(t.maxLine, before, after)

				lineID := t.add(n)
				t.nodes[secID].Children = append(t.nodes[secID].Children, lineID)
				t.close(lineID)
			}
			t.close(secID)
		}
		t.close(fileID)
	}

	return t, nil
}

func (t *Tree) add(n Node) NodeID {
	n.ID = NodeID(len(t.nodes))
	n.leafStart = len(t.leaves)
	if n.Leaf {
		t.leaves = append(t.leaves, n.ID)
	}
	t.nodes = append(t.nodes, n)
	return n.ID
}

func (t *Tree) close(id NodeID) {
	t.nodes[id].end = NodeID(len(t.nodes))
	t.nodes[id].leafEnd = len(t.leaves)
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the file node ids in order.
func (t *Tree) Roots() []NodeID { return t.roots }

// Leaves returns every selectable node id in order.
func (t *Tree) Leaves() []NodeID { return t.leaves }

// Valid reports whether id exists in the tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns the arena entry for id.
func (t *Tree) Node(id NodeID) (Node, error) {
	if !t.Valid(id) {
		return Node{}, fmt.Errorf("%w: node %d", ErrInvalidReference, id)
	}
	return t.nodes[id], nil
}

// IsLeaf reports whether id is a selectable node.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.Valid(id) && t.nodes[id].Leaf
}

// LeavesUnder returns the leaves in the subtree rooted at id, including id
// itself when it is a leaf.
func (t *Tree) LeavesUnder(id NodeID) ([]NodeID, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, err
	}
	return t.leaves[n.leafStart:n.leafEnd], nil
}

// Contains reports whether child lies in the subtree rooted at ancestor.
func (t *Tree) Contains(ancestor, child NodeID) bool {
	if !t.Valid(ancestor) || !t.Valid(child) {
		return false
	}
	return child >= ancestor && child < t.nodes[ancestor].end
}

// FileOf returns the file node that contains id.
func (t *Tree) FileOf(id NodeID) (NodeID, error) {
	n, err := t.Node(id)
	if err != nil {
		return NoNode, err
	}
	return t.roots[n.File], nil
}

// Depth is 0 for files, 1 for sections and 2 for lines.
func (t *Tree) Depth(id NodeID) int {
	if !t.Valid(id) {
		return 0
	}
	return int(t.nodes[id].Kind)
}

// File returns the content of a file node.
func (t *Tree) File(id NodeID) (File, error) {
	n, err := t.kind(id, FileNode)
	if err != nil {
		return File{}, err
	}
	return t.files[n.File], nil
}

// Section returns the content of a section node.
func (t *Tree) Section(id NodeID) (Section, error) {
	n, err := t.kind(id, SectionNode)
	if err != nil {
		return Section{}, err
	}
	return t.files[n.File].Sections[n.Section], nil
}

// Line returns the content of a line node.
func (t *Tree) Line(id NodeID) (Line, error) {
	n, err := t.kind(id, LineNode)
	if err != nil {
		return Line{}, err
	}
	return t.files[n.File].Sections[n.Section].Lines[n.Line], nil
}

func (t *Tree) kind(id NodeID, want NodeKind) (Node, error) {
	n, err := t.Node(id)
	if err != nil {
		return Node{}, err
	}
	if n.Kind != want {
		return Node{}, fmt.Errorf("%w: node %d is a %s, not a %s", ErrInvalidReference, id, n.Kind, want)
	}
	return n, nil
}

// InitialFlag returns the Selected value the caller supplied for a leaf.
func (t *Tree) InitialFlag(id NodeID) bool {
	if !t.IsLeaf(id) {
		return false
	}
	n := t.nodes[id]
	sec := t.files[n.File].Sections[n.Section]
	if n.Kind == LineNode {
		return sec.Lines[n.Line].Selected
	}
	return sec.Selected
}

// Annotate returns a copy of the files with each leaf's Selected replaced by
// flag(leaf).
func (t *Tree) Annotate(flag func(NodeID) bool) []File {
	out := make([]File, len(t.files))
	for i, f := range t.files {
		out[i] = f.clone()
	}
	for _, id := range t.leaves {
		n := t.nodes[id]
		sec := &out[n.File].Sections[n.Section]
		if n.Kind == LineNode {
			sec.Lines[n.Line].Selected = flag(id)
		} else {
			sec.Selected = flag(id)
		}
	}
	return out
}

// Files returns a copy of the files as supplied to New.
func (t *Tree) Files() []File {
	return t.Annotate(t.InitialFlag)
}

// LineNumbers reports the before and after line number of a line node. A
// side the line does not exist on reports 0. Numbers are 1-based and count
// every line of the file, including context, unless a section sets its
// own start lines.
func (t *Tree) LineNumbers(id NodeID) (before, after int, err error) {
	n, err := t.kind(id, LineNode)
	if err != nil {
		return 0, 0, err
	}
	return n.OldLine, n.NewLine, nil
}

// MaxLineNumber is the largest line number on either side of any file.
func (t *Tree) MaxLineNumber() int { return t.maxLine }
