// Package patchfilter turns a unified patch into a diff tree and writes back
// a patch holding only the selected changes.
package patchfilter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/colonyops/sift/internal/core/difftree"
)

// ErrMismatch is returned when annotated files do not line up with the patch
// they were built from.
var ErrMismatch = errors.New("selection does not match patch")

// Patch is a parsed unified patch.
type Patch struct {
	// Preamble is any text before the first file, such as a commit header.
	Preamble string
	Files    []*gitdiff.File
}

// Parse reads a unified or git-style patch.
func Parse(r io.Reader) (*Patch, error) {
	files, preamble, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return &Patch{Preamble: preamble, Files: files}, nil
}

// String renders the patch in git diff format.
func (p *Patch) String() string {
	var sb strings.Builder
	sb.WriteString(p.Preamble)
	for _, f := range p.Files {
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Tree converts the patch into difftree files, one per patched file, with
// every change unselected. Binary patches become a single Binary section.
func (p *Patch) Tree() []difftree.File {
	files := make([]difftree.File, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, treeFile(f))
	}
	return files
}

func treeFile(f *gitdiff.File) difftree.File {
	out := difftree.File{Path: f.NewName, Mode: modeOf(f.OldMode)}
	if f.IsDelete {
		out.Path = f.OldName
	}
	if (f.IsRename || f.IsCopy) && f.OldName != f.NewName {
		out.OldPath = f.OldName
	}

	switch {
	case f.IsNew:
		out.Mode = difftree.Absent
		out.Sections = append(out.Sections, difftree.NewModeChange(modeOf(f.NewMode)))
	case f.IsDelete:
		out.Sections = append(out.Sections, difftree.NewModeChange(difftree.Absent))
	case modeChanged(f):
		out.Sections = append(out.Sections, difftree.NewModeChange(modeOf(f.NewMode)))
	}

	if f.IsBinary {
		out.Sections = append(out.Sections, difftree.NewBinary(
			binaryDesc(f.OldOIDPrefix, !f.IsNew),
			binaryDesc(f.NewOIDPrefix, !f.IsDelete),
		))
		return out
	}

	for _, frag := range f.TextFragments {
		out.Sections = append(out.Sections, fragmentSections(frag)...)
	}
	return out
}

// fragmentSections splits a fragment into runs of context and change lines,
// keeping the fragment's line order. The first run carries the fragment's
// start lines.
func fragmentSections(frag *gitdiff.TextFragment) []difftree.Section {
	var (
		sections []difftree.Section
		context  []string
		changed  []difftree.Line
	)
	flush := func() {
		if len(context) > 0 {
			sections = append(sections, difftree.NewUnchanged(context...))
			context = nil
		}
		if len(changed) > 0 {
			sections = append(sections, difftree.NewChanged(changed...))
			changed = nil
		}
	}

	for _, l := range frag.Lines {
		switch l.Op {
		case gitdiff.OpContext:
			if len(changed) > 0 {
				flush()
			}
			context = append(context, l.Line)
		case gitdiff.OpDelete:
			if len(context) > 0 {
				flush()
			}
			changed = append(changed, difftree.RemovedLine(l.Line))
		case gitdiff.OpAdd:
			if len(context) > 0 {
				flush()
			}
			changed = append(changed, difftree.AddedLine(l.Line))
		}
	}
	flush()

	// A missing side (new or deleted file) is at position 0, which leaves
	// that side numbered from 1.
	if len(sections) > 0 {
		sections[0].OldStart = int(frag.OldPosition)
		sections[0].NewStart = int(frag.NewPosition)
	}
	return sections
}

// modeOf maps a patch mode to a difftree mode. Patches without mode lines
// leave it zero, which difftree reads as a regular file.
func modeOf(m os.FileMode) difftree.FileMode {
	return difftree.Unix(uint32(m))
}

func modeChanged(f *gitdiff.File) bool {
	return f.OldMode != 0 && f.NewMode != 0 && f.OldMode != f.NewMode
}

func binaryDesc(oid string, exists bool) string {
	switch {
	case !exists:
		return ""
	case oid == "":
		return "binary"
	default:
		return "binary " + oid
	}
}
