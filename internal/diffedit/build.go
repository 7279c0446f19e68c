package diffedit

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/colonyops/sift/internal/core/difftree"
)

// Options selects what Build compares.
type Options struct {
	// DirDiff compares two directory trees instead of two files.
	DirDiff bool
	// Include and Exclude are doublestar globs matched against paths
	// relative to the roots. An empty Include matches everything.
	Include []string
	Exclude []string
}

// Diff is the reviewable difference between two sides plus where its files
// live on disk.
type Diff struct {
	Files []difftree.File
	// LeftRoot and RightRoot prefix each file's path. Both are empty when
	// comparing two files, whose paths are then used as given.
	LeftRoot, RightRoot string
}

// LeftPath is where f's before side lives.
func (d *Diff) LeftPath(f difftree.File) string {
	p := f.Path
	if f.OldPath != "" {
		p = f.OldPath
	}
	return filepath.Join(d.LeftRoot, filepath.FromSlash(p))
}

// RightPath is where f's after side lives and where results are written.
func (d *Diff) RightPath(f difftree.File) string {
	return filepath.Join(d.RightRoot, filepath.FromSlash(f.Path))
}

// Build compares left and right. Paths whose mode and contents are equal on
// both sides are left out. Every change starts unselected.
func Build(fsys Filesystem, left, right string, opts Options) (*Diff, error) {
	if err := checkGlobs(opts.Include, opts.Exclude); err != nil {
		return nil, err
	}

	if !opts.DirDiff {
		f, changed, err := buildFile(fsys, left, right, left, right)
		if err != nil {
			return nil, err
		}
		d := &Diff{}
		if changed {
			d.Files = append(d.Files, f)
		}
		return d, nil
	}

	paths, err := fsys.DiffPaths(left, right)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	d := &Diff{LeftRoot: left, RightRoot: right}
	for _, p := range paths {
		if !matches(p, opts.Include, opts.Exclude) {
			continue
		}
		native := filepath.FromSlash(p)
		f, changed, err := buildFile(fsys, filepath.Join(left, native), filepath.Join(right, native), p, p)
		if err != nil {
			return nil, err
		}
		if changed {
			d.Files = append(d.Files, f)
		}
	}
	return d, nil
}

func checkGlobs(groups ...[]string) error {
	for _, globs := range groups {
		for _, g := range globs {
			if !doublestar.ValidatePattern(g) {
				return fmt.Errorf("invalid glob %q", g)
			}
		}
	}
	return nil
}

func matches(p string, include, exclude []string) bool {
	if len(include) > 0 && !matchAny(include, p) {
		return false
	}
	return !matchAny(exclude, p)
}

func matchAny(globs []string, p string) bool {
	for _, g := range globs {
		// A pattern without a slash matches the base name anywhere.
		target := p
		if !strings.Contains(g, "/") {
			target = path.Base(p)
		}
		if ok, _ := doublestar.Match(g, target); ok {
			return true
		}
	}
	return false
}

// buildFile diffs one pair of paths. The display names become the File's
// OldPath and Path.
func buildFile(fsys Filesystem, leftPath, rightPath, leftName, rightName string) (difftree.File, bool, error) {
	l, err := fsys.ReadFile(leftPath)
	if err != nil {
		return difftree.File{}, false, err
	}
	r, err := fsys.ReadFile(rightPath)
	if err != nil {
		return difftree.File{}, false, err
	}

	f := difftree.File{Path: rightName, Mode: l.Mode}
	if leftName != rightName {
		f.OldPath = leftName
	}

	if !l.Mode.Equal(r.Mode) {
		f.Sections = append(f.Sections, difftree.NewModeChange(r.Mode))
	}

	switch {
	case l.Mode.IsAbsent() && r.Mode.IsAbsent():
	case l.Binary || r.Binary:
		if l.Hash != r.Hash || l.Mode.IsAbsent() != r.Mode.IsAbsent() {
			f.Sections = append(f.Sections, difftree.NewBinary(l.Description(), r.Description()))
		}
	default:
		f.Sections = append(f.Sections, textSections(l.Text, r.Text)...)
	}

	return f, hasChange(f), nil
}

func hasChange(f difftree.File) bool {
	for _, s := range f.Sections {
		if s.Kind != difftree.Unchanged {
			return true
		}
	}
	return false
}

// textSections line-diffs two texts into alternating unchanged and changed
// sections. Within a changed section removed lines come first.
func textSections(before, after string) []difftree.Section {
	if before == after {
		if before == "" {
			return nil
		}
		return []difftree.Section{difftree.NewUnchanged(splitLines(before)...)}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		sections       []difftree.Section
		removed, added []difftree.Line
	)
	flush := func() {
		if len(removed)+len(added) == 0 {
			return
		}
		sections = append(sections, difftree.NewChanged(append(removed, added...)...))
		removed, added = nil, nil
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			sections = append(sections, difftree.NewUnchanged(splitLines(d.Text)...))
		case diffmatchpatch.DiffDelete:
			for _, l := range splitLines(d.Text) {
				removed = append(removed, difftree.RemovedLine(l))
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range splitLines(d.Text) {
				added = append(added, difftree.AddedLine(l))
			}
		}
	}
	flush()
	return sections
}

// splitLines splits after every newline, keeping it. A final line without
// a newline is kept as is.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
