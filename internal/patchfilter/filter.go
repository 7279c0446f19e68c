package patchfilter

import (
	"fmt"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/colonyops/sift/internal/core/difftree"
)

// Filter returns a patch holding only the selected changes. files must be
// the annotated result of p.Tree(), in order. Unselected added lines are
// dropped, unselected removed lines become context, and hunk headers are
// recomputed. Files with nothing selected are left out, except renames and
// copies, which are kept because they cannot be deselected. Binary patches
// are kept whole or dropped.
func (p *Patch) Filter(files []difftree.File) (*Patch, error) {
	if len(files) != len(p.Files) {
		return nil, fmt.Errorf("%w: %d files for a patch of %d", ErrMismatch, len(files), len(p.Files))
	}

	out := &Patch{Preamble: p.Preamble}
	for i, f := range p.Files {
		nf, err := filterFile(f, files[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", files[i].DisplayPath(), err)
		}
		if nf != nil {
			out.Files = append(out.Files, nf)
		}
	}
	return out, nil
}

func filterFile(f *gitdiff.File, af difftree.File) (*gitdiff.File, error) {
	var (
		modeSel, binSel bool
		flags           []bool
	)
	for _, s := range af.Sections {
		switch s.Kind {
		case difftree.ModeChange:
			modeSel = s.Selected
		case difftree.Binary:
			binSel = s.Selected
		default:
			for _, l := range s.Lines {
				flags = append(flags, l.Selected)
			}
		}
	}

	structural := f.IsRename || f.IsCopy

	if f.IsBinary {
		if binSel || modeSel || structural {
			return f, nil
		}
		return nil, nil
	}

	out := &gitdiff.File{
		OldName:  f.OldName,
		NewName:  f.NewName,
		IsNew:    f.IsNew,
		IsDelete: f.IsDelete,
		IsCopy:   f.IsCopy,
		IsRename: f.IsRename,
		Score:    f.Score,
	}

	switch {
	case f.IsNew:
		if !modeSel {
			return nil, nil
		}
		out.NewMode = f.NewMode
	case f.IsDelete:
		if modeSel {
			out.OldMode = f.OldMode
		} else {
			// The file stays; any selected removals become an edit.
			out.IsDelete = false
			out.NewName = f.OldName
		}
	case modeChanged(f) && modeSel:
		out.OldMode, out.NewMode = f.OldMode, f.NewMode
	}

	next := 0
	var delta int64
	for _, frag := range f.TextFragments {
		n := len(frag.Lines)
		if next+n > len(flags) {
			return nil, fmt.Errorf("%w: fewer lines than the patch", ErrMismatch)
		}
		nfrag := filterFragment(frag, flags[next:next+n], delta)
		next += n
		delta += nfrag.NewLines - nfrag.OldLines
		if nfrag.LinesAdded+nfrag.LinesDeleted > 0 {
			out.TextFragments = append(out.TextFragments, nfrag)
		}
	}
	if next != len(flags) {
		return nil, fmt.Errorf("%w: more lines than the patch", ErrMismatch)
	}

	if len(out.TextFragments) == 0 && out.OldMode == 0 && out.NewMode == 0 && !out.IsNew && !out.IsDelete && !structural {
		return nil, nil
	}
	return out, nil
}

// filterFragment applies one fragment's flags. delta is how far earlier
// kept changes have shifted new-side line numbers.
func filterFragment(frag *gitdiff.TextFragment, flags []bool, delta int64) *gitdiff.TextFragment {
	out := &gitdiff.TextFragment{
		Comment:     frag.Comment,
		OldPosition: frag.OldPosition,
	}

	for i, l := range frag.Lines {
		switch {
		case l.Op == gitdiff.OpAdd && !flags[i]:
			continue
		case l.Op == gitdiff.OpDelete && !flags[i]:
			l.Op = gitdiff.OpContext
		}
		out.Lines = append(out.Lines, l)

		switch l.Op {
		case gitdiff.OpContext:
			out.OldLines++
			out.NewLines++
			if out.LinesAdded+out.LinesDeleted == 0 {
				out.LeadingContext++
			} else {
				out.TrailingContext++
			}
		case gitdiff.OpAdd:
			out.NewLines++
			out.LinesAdded++
			out.TrailingContext = 0
		case gitdiff.OpDelete:
			out.OldLines++
			out.LinesDeleted++
			out.TrailingContext = 0
		}
	}

	// An empty side's position names the line before the hunk.
	first := frag.OldPosition
	if frag.OldLines == 0 {
		first++
	}
	out.NewPosition = first + delta
	if out.NewLines == 0 {
		out.NewPosition--
	}
	return out
}
