package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	tabWidth  = 4
	ellipsis  = '…'
	newline   = '⏎'
	invalid   = '�'
	delGlyph  = '␡'
	tabGlyph  = '→'
	ctrlFirst = 0x2400
)

// Cell is one grapheme cluster as it will be drawn. Width is 1 or 2.
type Cell struct {
	Rune  rune
	Comb  []rune
	Width int
}

// Measure turns text into drawable cells. Every cell it produces is
// printable and one or two columns wide, so the caller's column math never
// drifts from what the terminal shows.
type Measure struct {
	cond *runewidth.Condition
}

// NewMeasure returns a Measure. ambiguousWide treats East Asian ambiguous
// characters as two columns.
func NewMeasure(ambiguousWide bool) *Measure {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = ambiguousWide
	return &Measure{cond: cond}
}

// Cells converts a label to cells.
func (m *Measure) Cells(s string) []Cell {
	var cells []Cell
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cells = m.cluster(cells, g.Runes())
	}
	return cells
}

// LineCells converts the text of a diff line. A trailing newline becomes a
// visible marker; a line without one shows nothing extra.
func (m *Measure) LineCells(text string) []Cell {
	body, hasNewline := strings.CutSuffix(text, "\n")
	cells := m.Cells(body)
	if hasNewline {
		cells = append(cells, Cell{Rune: newline, Width: 1})
	}
	return cells
}

func (m *Measure) cluster(cells []Cell, runes []rune) []Cell {
	if isControl(runes[0]) {
		for _, r := range runes {
			cells = append(cells, controlCells(r)...)
		}
		return cells
	}

	w := m.cond.StringWidth(string(runes))
	if w <= 0 {
		return append(cells, Cell{Rune: invalid, Width: 1})
	}

	c := Cell{Rune: runes[0], Width: min(w, 2)}
	if len(runes) > 1 {
		c.Comb = runes[1:]
	}
	return append(cells, c)
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0)
}

func controlCells(r rune) []Cell {
	switch {
	case r == '\t':
		cells := []Cell{{Rune: tabGlyph, Width: 1}}
		for range tabWidth - 1 {
			cells = append(cells, Cell{Rune: ' ', Width: 1})
		}
		return cells
	case r < 0x20:
		return []Cell{{Rune: ctrlFirst + r, Width: 1}}
	case r == 0x7f:
		return []Cell{{Rune: delGlyph, Width: 1}}
	case isControl(r):
		return []Cell{{Rune: invalid, Width: 1}}
	default:
		return []Cell{{Rune: r, Width: 1}}
	}
}

// Width sums the cell widths.
func Width(cells []Cell) int {
	w := 0
	for _, c := range cells {
		w += c.Width
	}
	return w
}

// Truncate fits cells into width columns, ending with an ellipsis when
// anything was cut.
func Truncate(cells []Cell, width int) []Cell {
	if width <= 0 {
		return nil
	}
	if Width(cells) <= width {
		return cells
	}

	out := make([]Cell, 0, width)
	used := 0
	for _, c := range cells {
		if used+c.Width > width-1 {
			break
		}
		out = append(out, c)
		used += c.Width
	}
	return append(out, Cell{Rune: ellipsis, Width: 1})
}

// Pad appends spaces until cells are width columns wide.
func Pad(cells []Cell, width int) []Cell {
	for w := Width(cells); w < width; w++ {
		cells = append(cells, Cell{Rune: ' ', Width: 1})
	}
	return cells
}

// PadLeft right-aligns cells in width columns.
func PadLeft(cells []Cell, width int) []Cell {
	n := width - Width(cells)
	if n <= 0 {
		return cells
	}
	out := make([]Cell, 0, n+len(cells))
	for range n {
		out = append(out, Cell{Rune: ' ', Width: 1})
	}
	return append(out, cells...)
}

// String renders cells back to text. Used by tests and the CLI preview.
func String(cells []Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteRune(c.Rune)
		for _, r := range c.Comb {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
