package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/selection"
	"github.com/colonyops/sift/internal/tui/view"
)

// Fixed chrome around the text columns of a line row:
// indent, checkbox, and a space before the gutter; space, sign, and space
// after it; and the separator between the two columns.
const (
	lineIndent = 4
	checkWidth = 3
	linePrefix = lineIndent + checkWidth + 1
	signWidth  = 3
	separator  = " │ "
	sepWidth   = 3
)

// Options controls geometry and text handling.
type Options struct {
	MaxContentWidth int
	MinColumnWidth  int
	ContextLines    int
	AmbiguousWide   bool
}

// DefaultOptions matches the defaults of the config file.
func DefaultOptions() Options {
	return Options{
		MaxContentWidth: 120,
		MinColumnWidth:  20,
		ContextLines:    3,
	}
}

// Engine lays out one tree. It caches column solutions across frames.
type Engine struct {
	tree    *difftree.Tree
	opts    Options
	solver  *Solver
	measure *Measure
	gutter  int
}

// NewEngine returns an engine for tree.
func NewEngine(tree *difftree.Tree, opts Options) *Engine {
	return &Engine{
		tree:    tree,
		opts:    opts,
		solver:  NewSolver(opts.MaxContentWidth, opts.MinColumnWidth),
		measure: NewMeasure(opts.AmbiguousWide),
		gutter:  len(strconv.Itoa(max(tree.MaxLineNumber(), 1))),
	}
}

// Measure exposes the engine's text measurer for header and status rows.
func (e *Engine) Measure() *Measure { return e.measure }

// Columns resolves line-row geometry for a terminal width.
func (e *Engine) Columns(width int) Columns {
	fixed := linePrefix + e.gutter + signWidth
	if w, ok := e.solver.Split(width - fixed - sepWidth); ok {
		return Columns{Left: w, Right: w, Gutter: e.gutter}
	}
	return Columns{Unified: true, Left: max(width-fixed, 0), Gutter: e.gutter}
}

// Role tags a span so the caller can pick a style.
type Role int

const (
	RoleText Role = iota
	RoleMuted
	RoleFile
	RoleSection
	RoleCheckbox
	RoleGutter
	RoleAdded
	RoleRemoved
	RoleContext
	RoleSeparator
)

// Span is a run of cells sharing a role.
type Span struct {
	Role  Role
	Cells []Cell
}

// DrawRow is one row ready to draw.
type DrawRow struct {
	Node    difftree.NodeID
	Item    bool
	Focused bool
	Spans   []Span
	// CheckStart and CheckEnd bound the checkbox columns; equal when the
	// row has no checkbox. FoldStart and FoldEnd do the same for the fold
	// marker of a foldable row.
	CheckStart, CheckEnd int
	FoldStart, FoldEnd   int
}

// Text renders the row without styles.
func (r DrawRow) Text() string {
	var sb strings.Builder
	for _, sp := range r.Spans {
		sb.WriteString(String(sp.Cells))
	}
	return sb.String()
}

// StatusSource reports aggregate selection state.
type StatusSource interface {
	Status(id difftree.NodeID) (selection.Status, error)
}

// Frame renders height rows of doc starting at the view's offset.
func (e *Engine) Frame(doc *Document, v *view.State, sel StatusSource, height int) []DrawRow {
	start := min(v.Offset(), doc.Len())
	end := min(start+max(height, 0), doc.Len())

	out := make([]DrawRow, 0, end-start)
	for i := start; i < end; i++ {
		row := doc.Row(i)
		focused := row.Item && row.Node == v.Cursor()
		out = append(out, e.render(doc, row, v, sel, focused))
	}
	return out
}

func (e *Engine) render(doc *Document, row Row, v *view.State, sel StatusSource, focused bool) DrawRow {
	var b rowBuilder
	dr := DrawRow{Node: row.Node, Item: row.Item, Focused: focused}

	switch row.Kind {
	case FileRow:
		dr.FoldStart, dr.FoldEnd = b.fold(v, row.Node)
		b.text(RoleText, " ")
		dr.CheckStart, dr.CheckEnd = b.checkbox(status(sel, row.Node), focused)
		b.text(RoleText, " ")
		e.fileLabel(&b, row.Node)
	case SectionRow:
		b.text(RoleText, "  ")
		dr.FoldStart, dr.FoldEnd = b.fold(v, row.Node)
		b.text(RoleText, " ")
		dr.CheckStart, dr.CheckEnd = b.checkbox(status(sel, row.Node), focused)
		b.text(RoleText, " ")
		b.cells(RoleSection, e.measure.Cells(e.sectionLabel(row.Node)))
	case LineRow:
		b.text(RoleText, "    ")
		dr.CheckStart, dr.CheckEnd = b.checkbox(status(sel, row.Node), focused)
		b.text(RoleText, " ")
		e.lineBody(&b, doc.Columns, row.Node)
	case ContextRow:
		b.text(RoleText, "        ")
		e.lineBody(&b, doc.Columns, row.Node)
	case GapRow:
		b.text(RoleText, "        ")
		b.cells(RoleMuted, PadLeft(e.measure.Cells("⋮"), doc.Columns.Gutter))
	}

	dr.Spans = fit(b.spans, doc.Width)
	return dr
}

func status(sel StatusSource, id difftree.NodeID) selection.Status {
	st, err := sel.Status(id)
	if err != nil {
		return selection.Unselected
	}
	return st
}

func foldMarker(v *view.State, id difftree.NodeID) string {
	switch {
	case !v.Foldable(id):
		return "   "
	case v.Collapsed(id):
		return "[+]"
	default:
		return "[-]"
	}
}

// Checkbox returns the glyph for a status. The focused item uses round
// brackets so the cursor is visible without colour.
func Checkbox(st selection.Status, focused bool) string {
	mark := " "
	switch st {
	case selection.Full:
		mark = "●"
	case selection.Partial:
		mark = "◐"
	}
	if focused {
		return "(" + mark + ")"
	}
	return "[" + mark + "]"
}

func (e *Engine) fileLabel(b *rowBuilder, id difftree.NodeID) {
	f, _ := e.tree.File(id)
	b.cells(RoleFile, e.measure.Cells(f.DisplayPath()))

	added, removed := 0, 0
	for _, s := range f.Sections {
		for _, l := range s.Lines {
			switch l.Kind {
			case difftree.Added:
				added++
			case difftree.Removed:
				removed++
			}
		}
	}
	if added > 0 || removed > 0 {
		b.text(RoleMuted, "  ")
		b.text(RoleAdded, fmt.Sprintf("+%d", added))
		b.text(RoleMuted, " ")
		b.text(RoleRemoved, fmt.Sprintf("-%d", removed))
	}
}

func (e *Engine) sectionLabel(id difftree.NodeID) string {
	sec, _ := e.tree.Section(id)
	node, _ := e.tree.Node(id)
	file, _ := e.tree.File(node.Parent)

	switch sec.Kind {
	case difftree.ModeChange:
		switch {
		case sec.Mode.IsAbsent():
			return "Delete file"
		case file.IsCreation():
			return "Create file with mode " + sec.Mode.String()
		default:
			return fmt.Sprintf("Change mode %s → %s", file.Mode, sec.Mode)
		}
	case difftree.Binary:
		return fmt.Sprintf("Binary contents: %s → %s", describe(sec.Old), describe(sec.New))
	default:
		fileNode, _ := e.tree.Node(node.Parent)
		n, idx := 0, 0
		for _, c := range fileNode.Children {
			s, _ := e.tree.Section(c)
			if s.Kind != difftree.Changed {
				continue
			}
			n++
			if c == id {
				idx = n
			}
		}
		return fmt.Sprintf("Section %d/%d", idx, n)
	}
}

func describe(desc string) string {
	if desc == "" {
		return "(absent)"
	}
	return desc
}

// lineBody writes gutter, sign, and text columns. Context rows number by
// the after side; removed lines by the before side.
func (e *Engine) lineBody(b *rowBuilder, cols Columns, id difftree.NodeID) {
	line, _ := e.tree.Line(id)
	before, after, _ := e.tree.LineNumbers(id)

	num, sign, role := after, ' ', RoleContext
	switch line.Kind {
	case difftree.Removed:
		num, sign, role = before, '-', RoleRemoved
	case difftree.Added:
		sign, role = '+', RoleAdded
	}

	b.cells(RoleGutter, PadLeft(e.measure.Cells(strconv.Itoa(num)), cols.Gutter))
	b.text(role, " "+string(sign)+" ")

	text := e.measure.LineCells(line.Text)
	if cols.Unified {
		// The single column is the after side. Removed rows keep their
		// gutter and checkbox so they stay selectable, but show no text.
		if line.Kind != difftree.Removed {
			b.cells(role, Truncate(text, cols.Left))
		}
		return
	}

	var left, right []Cell
	switch line.Kind {
	case difftree.Removed:
		left = text
	case difftree.Added:
		right = text
	default:
		left, right = text, text
	}
	b.cells(role, Pad(Truncate(left, cols.Left), cols.Left))
	b.text(RoleSeparator, separator)
	b.cells(role, Truncate(right, cols.Right))
}

type rowBuilder struct {
	spans []Span
	x     int
}

func (b *rowBuilder) cells(role Role, cells []Cell) {
	if len(cells) == 0 {
		return
	}
	b.spans = append(b.spans, Span{Role: role, Cells: cells})
	b.x += Width(cells)
}

func (b *rowBuilder) text(role Role, s string) {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, Cell{Rune: r, Width: 1})
	}
	b.cells(role, cells)
}

func (b *rowBuilder) fold(v *view.State, id difftree.NodeID) (start, end int) {
	start = b.x
	b.text(RoleMuted, foldMarker(v, id))
	if !v.Foldable(id) {
		return start, start
	}
	return start, b.x
}

func (b *rowBuilder) checkbox(st selection.Status, focused bool) (start, end int) {
	start = b.x
	b.text(RoleCheckbox, Checkbox(st, focused))
	return start, b.x
}

// fit truncates a row to width, putting the ellipsis in the span that
// crosses the edge.
func fit(spans []Span, width int) []Span {
	total := 0
	for _, sp := range spans {
		total += Width(sp.Cells)
	}
	if total <= width {
		return spans
	}
	if width <= 0 {
		return nil
	}

	out := make([]Span, 0, len(spans))
	used := 0
	for _, sp := range spans {
		w := Width(sp.Cells)
		if used+w <= width-1 {
			out = append(out, sp)
			used += w
			continue
		}

		var cells []Cell
		for _, c := range sp.Cells {
			if used+c.Width > width-1 {
				break
			}
			cells = append(cells, c)
			used += c.Width
		}
		cells = append(cells, Cell{Rune: ellipsis, Width: 1})
		out = append(out, Span{Role: sp.Role, Cells: cells})
		break
	}
	return out
}
