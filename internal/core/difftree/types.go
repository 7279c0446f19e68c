// Package difftree holds the reviewable content of a diff: files made of
// sections made of lines. The shape is fixed once a Tree is built; only
// selection flags change during a session and those live elsewhere.
package difftree

import "fmt"

// LineKind tags a line as context or as one side of a change.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

var lineKindNames = map[LineKind]string{
	Context: "context",
	Added:   "added",
	Removed: "removed",
}

func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

func (k LineKind) MarshalText() ([]byte, error) {
	name, ok := lineKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown line kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *LineKind) UnmarshalText(text []byte) error {
	for kind, name := range lineKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", string(text))
}

// SectionKind identifies the variant of a Section.
type SectionKind int

const (
	// Unchanged is a run of context lines. Not selectable.
	Unchanged SectionKind = iota
	// Changed is a hunk of added and removed lines, each selectable.
	Changed
	// ModeChange is the file's mode-change marker, selectable as one unit.
	ModeChange
	// Binary is an opaque binary change, selectable as one unit.
	Binary
)

var sectionKindNames = map[SectionKind]string{
	Unchanged:  "unchanged",
	Changed:    "changed",
	ModeChange: "file_mode",
	Binary:     "binary",
}

func (k SectionKind) String() string {
	if name, ok := sectionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SectionKind(%d)", int(k))
}

func (k SectionKind) MarshalText() ([]byte, error) {
	name, ok := sectionKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown section kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *SectionKind) UnmarshalText(text []byte) error {
	for kind, name := range sectionKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown section kind %q", string(text))
}

// Line is a single line of content. Text includes the trailing newline, if
// the line has one.
type Line struct {
	Kind     LineKind `json:"kind"`
	Text     string   `json:"text"`
	Selected bool     `json:"selected,omitempty"`
}

// Section is one run of a file's content. Which fields are meaningful
// depends on Kind:
//
//   - Unchanged: Lines (all Context)
//   - Changed: Lines (Added or Removed) with per-line Selected
//   - ModeChange: Mode (the mode after the change) and Selected
//   - Binary: Old and New descriptions and Selected
//
// OldStart and NewStart, when set on an Unchanged or Changed section, give
// the line number of its first line on each side. Numbering otherwise
// continues from the previous section, starting at 1. Hunks taken from a
// patch set them since the lines between hunks are not in the tree.
type Section struct {
	Kind     SectionKind `json:"kind"`
	Lines    []Line      `json:"lines,omitempty"`
	OldStart int         `json:"old_start,omitempty"`
	NewStart int         `json:"new_start,omitempty"`
	Mode     FileMode    `json:"mode,omitzero"`
	Old      string      `json:"old,omitempty"`
	New      string      `json:"new,omitempty"`
	Selected bool        `json:"selected,omitempty"`
}

// Selectable reports whether the section itself is a leaf.
func (s Section) Selectable() bool {
	return s.Kind == ModeChange || s.Kind == Binary
}

// File is one path in the diff. Mode is the mode before the change; Absent
// means the file did not exist.
type File struct {
	OldPath  string    `json:"old_path,omitempty"`
	Path     string    `json:"path"`
	Mode     FileMode  `json:"mode"`
	Sections []Section `json:"sections"`
}

// IsCreation reports whether the file did not exist before the change.
func (f File) IsCreation() bool {
	return f.Mode.IsAbsent()
}

// ModeSection returns the index of the file's ModeChange section, or -1.
func (f File) ModeSection() int {
	for i, s := range f.Sections {
		if s.Kind == ModeChange {
			return i
		}
	}
	return -1
}

// IsDeletion reports whether the file carries a delete marker.
func (f File) IsDeletion() bool {
	i := f.ModeSection()
	return i >= 0 && f.Sections[i].Mode.IsAbsent()
}

// DisplayPath renders "old => new" for renames.
func (f File) DisplayPath() string {
	if f.OldPath != "" && f.OldPath != f.Path {
		return f.OldPath + " => " + f.Path
	}
	return f.Path
}

func (f File) clone() File {
	out := f
	out.Sections = make([]Section, len(f.Sections))
	for i, s := range f.Sections {
		out.Sections[i] = s
		if s.Lines != nil {
			out.Sections[i].Lines = append([]Line(nil), s.Lines...)
		}
	}
	return out
}

// NewUnchanged builds a context section from raw line texts.
func NewUnchanged(texts ...string) Section {
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Line{Kind: Context, Text: t}
	}
	return Section{Kind: Unchanged, Lines: lines}
}

// NewChanged builds a hunk from added and removed lines.
func NewChanged(lines ...Line) Section {
	return Section{Kind: Changed, Lines: lines}
}

// NewModeChange builds a mode-change marker with the given after-mode.
func NewModeChange(after FileMode) Section {
	return Section{Kind: ModeChange, Mode: after}
}

// NewBinary builds a binary change marker. Empty descriptions mean the side
// does not exist.
func NewBinary(oldDesc, newDesc string) Section {
	return Section{Kind: Binary, Old: oldDesc, New: newDesc}
}

// AddedLine returns an unselected added line.
func AddedLine(text string) Line { return Line{Kind: Added, Text: text} }

// RemovedLine returns an unselected removed line.
func RemovedLine(text string) Line { return Line{Kind: Removed, Text: text} }
