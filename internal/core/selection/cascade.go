package selection

import "github.com/colonyops/sift/internal/core/difftree"

// fileShape is the part of a file the cascade rules look at.
type fileShape struct {
	marker   difftree.NodeID // mode-change section, or NoNode
	deletion bool            // marker removes the file
	creation bool            // file did not exist before
	added    []difftree.NodeID
	removed  []difftree.NodeID
}

func shapesOf(tree *difftree.Tree) []fileShape {
	shapes := make([]fileShape, 0, len(tree.Roots()))
	for _, fileID := range tree.Roots() {
		f, _ := tree.File(fileID)
		shape := fileShape{marker: difftree.NoNode, creation: f.IsCreation()}

		leaves, _ := tree.LeavesUnder(fileID)
		for _, id := range leaves {
			n, _ := tree.Node(id)
			if n.Kind == difftree.SectionNode {
				sec := f.Sections[n.Section]
				if sec.Kind == difftree.ModeChange {
					shape.marker = id
					shape.deletion = sec.Mode.IsAbsent()
				}
				continue
			}

			switch f.Sections[n.Section].Lines[n.Line].Kind {
			case difftree.Added:
				shape.added = append(shape.added, id)
			case difftree.Removed:
				shape.removed = append(shape.removed, id)
			}
		}

		shapes = append(shapes, shape)
	}
	return shapes
}

// Cascade returns a copy of flags in which every file's implied operation is
// consistent. explicit names the leaves the user changed in the mutation
// being settled; the rules prefer to adjust leaves outside that set.
//
//   - A selected delete marker forces every Removed line selected, unless the
//     user just deselected one of those lines, in which case the marker is
//     deselected instead.
//   - A selected Added line in a created file forces the creation marker
//     selected, unless the user just deselected the marker, in which case
//     every Added line is deselected.
//   - Explicitly selecting a creation marker while no Added line is selected
//     selects every Added line.
//
// With no explicit leaves only corrective flips happen, so running Cascade on
// its own output is a no-op.
func Cascade(tree *difftree.Tree, flags []bool, explicit []difftree.NodeID) []bool {
	out := append([]bool(nil), flags...)
	cascade(shapesOf(tree), out, newIDSet(explicit))
	return out
}

type idSet map[difftree.NodeID]struct{}

func newIDSet(ids []difftree.NodeID) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id difftree.NodeID) bool {
	_, ok := s[id]
	return ok
}

// cascade settles flags in place and reports whether anything flipped.
func cascade(shapes []fileShape, flags []bool, explicit idSet) bool {
	flipped := false
	// Each rule leaves its file in a state no rule fires on, so this
	// settles within two passes.
	for changed := true; changed; {
		changed = false
		for _, shape := range shapes {
			if shape.marker == difftree.NoNode {
				continue
			}
			if settleFile(shape, flags, explicit) {
				changed = true
				flipped = true
			}
		}
	}
	return flipped
}

func settleFile(shape fileShape, flags []bool, explicit idSet) bool {
	marker := shape.marker

	switch {
	case shape.deletion:
		if !flags[marker] {
			return false
		}

		userDeselected := false
		pending := false
		for _, id := range shape.removed {
			if flags[id] {
				continue
			}
			pending = true
			if explicit.has(id) {
				userDeselected = true
			}
		}
		if !pending {
			return false
		}

		if userDeselected && !explicit.has(marker) {
			flags[marker] = false
			return true
		}
		setAll(flags, shape.removed, true)
		return true

	case shape.creation:
		anyAdded := false
		for _, id := range shape.added {
			if flags[id] {
				anyAdded = true
				break
			}
		}

		switch {
		case !flags[marker] && anyAdded:
			if explicit.has(marker) {
				setAll(flags, shape.added, false)
			} else {
				flags[marker] = true
			}
			return true
		case flags[marker] && !anyAdded && len(shape.added) > 0 && explicit.has(marker):
			setAll(flags, shape.added, true)
			return true
		}
	}

	return false
}

func setAll(flags []bool, ids []difftree.NodeID, v bool) {
	for _, id := range ids {
		flags[id] = v
	}
}
