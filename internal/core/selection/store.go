// Package selection owns the per-leaf selection flags of a diff tree and
// keeps them consistent with the repository state they describe.
package selection

import (
	"fmt"
	"slices"

	"github.com/colonyops/sift/internal/core/difftree"
)

// Status is the aggregate selection state of a node.
type Status int

const (
	Unselected Status = iota
	Partial
	Full
)

func (s Status) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Store holds one flag per leaf plus per-node counters of selected and total
// leaves, so aggregate queries never walk a subtree.
type Store struct {
	tree   *difftree.Tree
	shapes []fileShape

	flags    []bool
	selected []int
	total    []int
}

// New creates a store seeded from the Selected values in the tree and
// settles any inconsistency in them.
func New(tree *difftree.Tree) *Store {
	s := &Store{
		tree:     tree,
		shapes:   shapesOf(tree),
		flags:    make([]bool, tree.Len()),
		selected: make([]int, tree.Len()),
		total:    make([]int, tree.Len()),
	}

	for _, id := range tree.Leaves() {
		s.walkUp(id, func(n difftree.NodeID) { s.total[n]++ })
	}

	initial := make([]bool, tree.Len())
	for _, id := range tree.Leaves() {
		initial[id] = tree.InitialFlag(id)
	}
	cascade(s.shapes, initial, nil)
	for _, id := range tree.Leaves() {
		if initial[id] {
			s.set(id, true)
		}
	}

	return s
}

// Tree returns the tree the store annotates.
func (s *Store) Tree() *difftree.Tree { return s.tree }

func (s *Store) walkUp(id difftree.NodeID, fn func(difftree.NodeID)) {
	for id != difftree.NoNode {
		fn(id)
		n, _ := s.tree.Node(id)
		id = n.Parent
	}
}

func (s *Store) set(id difftree.NodeID, v bool) {
	if s.flags[id] == v {
		return
	}
	s.flags[id] = v
	delta := -1
	if v {
		delta = 1
	}
	s.walkUp(id, func(n difftree.NodeID) { s.selected[n] += delta })
}

// Flag returns the flag of a leaf.
func (s *Store) Flag(id difftree.NodeID) (bool, error) {
	if !s.tree.IsLeaf(id) {
		return false, fmt.Errorf("%w: node %d is not selectable", difftree.ErrInvalidReference, id)
	}
	return s.flags[id], nil
}

// Status returns the aggregate state of any node. A node with no leaves
// below it reports Unselected.
func (s *Store) Status(id difftree.NodeID) (Status, error) {
	if !s.tree.Valid(id) {
		return Unselected, fmt.Errorf("%w: node %d", difftree.ErrInvalidReference, id)
	}
	return s.status(id), nil
}

func (s *Store) status(id difftree.NodeID) Status {
	switch sel := s.selected[id]; {
	case sel == 0:
		return Unselected
	case sel == s.total[id]:
		return Full
	default:
		return Partial
	}
}

// Counts returns the number of selected leaves and the number of leaves.
func (s *Store) Counts() (selected, total int) {
	for _, root := range s.tree.Roots() {
		selected += s.selected[root]
		total += s.total[root]
	}
	return selected, total
}

// Toggle flips one leaf, settles the cascade, and returns every node whose
// displayed state changed.
func (s *Store) Toggle(id difftree.NodeID) ([]difftree.NodeID, error) {
	if !s.tree.IsLeaf(id) {
		return nil, fmt.Errorf("%w: node %d is not selectable", difftree.ErrInvalidReference, id)
	}
	return s.apply(map[difftree.NodeID]bool{id: !s.flags[id]}), nil
}

// ToggleSubtree deselects every leaf under id when all of them are
// selected, and selects every leaf otherwise.
func (s *Store) ToggleSubtree(id difftree.NodeID) ([]difftree.NodeID, error) {
	leaves, err := s.tree.LeavesUnder(id)
	if err != nil {
		return nil, err
	}

	target := s.status(id) != Full
	changes := make(map[difftree.NodeID]bool, len(leaves))
	for _, leaf := range leaves {
		changes[leaf] = target
	}
	return s.apply(changes), nil
}

// ToggleAll inverts every leaf.
func (s *Store) ToggleAll() []difftree.NodeID {
	changes := make(map[difftree.NodeID]bool, len(s.tree.Leaves()))
	for _, leaf := range s.tree.Leaves() {
		changes[leaf] = !s.flags[leaf]
	}
	return s.apply(changes)
}

// ToggleAllUniform deselects everything when everything is selected and
// selects everything otherwise.
func (s *Store) ToggleAllUniform() []difftree.NodeID {
	selected, total := s.Counts()
	target := selected != total || total == 0
	changes := make(map[difftree.NodeID]bool, total)
	for _, leaf := range s.tree.Leaves() {
		changes[leaf] = target
	}
	return s.apply(changes)
}

// apply sets the requested flags, settles the cascade with those leaves as
// the explicit set, and commits the result in one step.
func (s *Store) apply(changes map[difftree.NodeID]bool) []difftree.NodeID {
	next := slices.Clone(s.flags)
	explicit := make(idSet, len(changes))
	for id, v := range changes {
		next[id] = v
		explicit[id] = struct{}{}
	}
	cascade(s.shapes, next, explicit)

	var flipped []difftree.NodeID
	for _, id := range s.tree.Leaves() {
		if next[id] != s.flags[id] {
			flipped = append(flipped, id)
		}
	}
	if len(flipped) == 0 {
		return nil
	}

	before := make(map[difftree.NodeID]Status)
	for _, id := range flipped {
		s.walkUp(id, func(n difftree.NodeID) {
			if _, ok := before[n]; !ok {
				before[n] = s.status(n)
			}
		})
	}

	for _, id := range flipped {
		s.set(id, next[id])
	}

	changed := make([]difftree.NodeID, 0, len(before))
	for id, st := range before {
		if s.tree.IsLeaf(id) || s.status(id) != st {
			changed = append(changed, id)
		}
	}
	slices.Sort(changed)
	return changed
}

// Files returns the caller's files annotated with the current flags.
func (s *Store) Files() []difftree.File {
	return s.tree.Annotate(func(id difftree.NodeID) bool { return s.flags[id] })
}

// Flags returns a copy of the flag vector indexed by node id. Non-leaf
// entries are always false.
func (s *Store) Flags() []bool {
	return slices.Clone(s.flags)
}
