package difftree

import "strings"

// ContentsKind identifies the shape of a file's resulting contents.
type ContentsKind int

const (
	// ContentsUnchanged means the file is left as it was.
	ContentsUnchanged ContentsKind = iota
	// ContentsAbsent means the file should not exist.
	ContentsAbsent
	// ContentsBinary means the binary side described by Old/New applies.
	ContentsBinary
	// ContentsText means the file holds Text.
	ContentsText
)

// Contents is the result of applying one side of a file's selection.
type Contents struct {
	Kind ContentsKind
	Text string
	Old  string
	New  string
	Mode FileMode
}

type contentsBuilder struct {
	kind ContentsKind
	text strings.Builder
	old  string
	new  string
}

func (b *contentsBuilder) push(s string) {
	switch b.kind {
	case ContentsUnchanged:
		b.kind = ContentsText
		b.text.WriteString(s)
	case ContentsText:
		b.text.WriteString(s)
	}
}

func (b *contentsBuilder) binary(oldDesc, newDesc string) {
	b.kind = ContentsBinary
	b.old, b.new = oldDesc, newDesc
	b.text.Reset()
}

func (b *contentsBuilder) build(mode FileMode) Contents {
	c := Contents{Kind: b.kind, Mode: mode, Old: b.old, New: b.new}
	if b.kind == ContentsText {
		c.Text = b.text.String()
	}
	if mode.IsAbsent() {
		c = Contents{Kind: ContentsAbsent, Mode: Absent}
	}
	return c
}

// SelectedContents computes what the file looks like when only the
// selected changes are applied, and what it looks like when only the
// unselected changes are applied.
func (f File) SelectedContents() (selected, unselected Contents) {
	selMode, unselMode := f.Mode, f.Mode
	if i := f.ModeSection(); i >= 0 {
		if f.Sections[i].Selected {
			selMode = f.Sections[i].Mode
		} else {
			unselMode = f.Sections[i].Mode
		}
	}

	var sel, unsel contentsBuilder
	for _, s := range f.Sections {
		switch s.Kind {
		case Unchanged:
			for _, l := range s.Lines {
				sel.push(l.Text)
				unsel.push(l.Text)
			}
		case Changed:
			for _, l := range s.Lines {
				keep := (l.Kind == Added) == l.Selected
				if keep {
					sel.push(l.Text)
				} else {
					unsel.push(l.Text)
					// A file that still exists with every line removed is
					// emptied, never reported as unchanged.
					if !selMode.IsAbsent() {
						sel.push("")
					}
				}
			}
		case Binary:
			if s.Selected {
				sel.binary(s.Old, s.New)
				unsel = contentsBuilder{}
			} else {
				sel = contentsBuilder{}
				unsel.binary(s.Old, s.New)
			}
		}
	}

	// Newly created empty files still need to be written.
	if f.Mode.IsAbsent() && !selMode.IsAbsent() && sel.kind == ContentsUnchanged {
		sel.push("")
	}
	if f.Mode.IsAbsent() && !unselMode.IsAbsent() && unsel.kind == ContentsUnchanged {
		unsel.push("")
	}

	return sel.build(selMode), unsel.build(unselMode)
}
