// Package layout turns the visible part of a diff tree into rows of
// drawable cells: which rows exist, how wide each column is, and what every
// cell shows. It draws nothing itself.
package layout

import (
	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/tui/view"
)

// RowKind says what a rendered row shows.
type RowKind int

const (
	FileRow RowKind = iota
	SectionRow
	LineRow
	ContextRow
	GapRow
)

// Row is one rendered row. Node is the row's source: the file, section, or
// line it shows, or the unchanged section a gap row abbreviates.
type Row struct {
	Kind RowKind
	Node difftree.NodeID
	Item bool
}

// Columns is the resolved geometry of line rows.
type Columns struct {
	// Unified is true when the width only allows one text column.
	Unified bool
	// Left and Right are the text column widths. Unified uses Left only.
	Left, Right int
	// Gutter is the width of the line number column.
	Gutter int
}

// Document is every row of the current logical sequence with its
// decoration, for one terminal width.
type Document struct {
	Width   int
	Columns Columns

	rows  []Row
	rowOf map[difftree.NodeID]int
}

var _ view.RowMap = (*Document)(nil)

func (d *Document) Len() int { return len(d.rows) }

// Row returns row i.
func (d *Document) Row(i int) Row { return d.rows[i] }

func (d *Document) RowOf(id difftree.NodeID) int {
	if r, ok := d.rowOf[id]; ok {
		return r
	}
	return -1
}

func (d *Document) ItemAt(row int) difftree.NodeID {
	if row < 0 || row >= len(d.rows) || !d.rows[row].Item {
		return difftree.NoNode
	}
	return d.rows[row].Node
}

func (d *Document) add(kind RowKind, id difftree.NodeID, item bool) {
	if item {
		d.rowOf[id] = len(d.rows)
	}
	d.rows = append(d.rows, Row{Kind: kind, Node: id, Item: item})
}

// Build lays out every row the view currently shows at the given width.
func (e *Engine) Build(v *view.State, width int) *Document {
	doc := &Document{
		Width:   width,
		Columns: e.Columns(width),
		rowOf:   make(map[difftree.NodeID]int),
	}

	for _, fileID := range e.tree.Roots() {
		doc.add(FileRow, fileID, true)
		if v.Collapsed(fileID) {
			continue
		}

		file, _ := e.tree.Node(fileID)
		for i, secID := range file.Children {
			sec, _ := e.tree.Section(secID)
			if sec.Kind == difftree.Unchanged {
				e.context(doc, secID, i > 0, i < len(file.Children)-1)
				continue
			}

			doc.add(SectionRow, secID, true)
			if sec.Kind != difftree.Changed || v.Collapsed(secID) {
				continue
			}
			secNode, _ := e.tree.Node(secID)
			for _, lineID := range secNode.Children {
				doc.add(LineRow, lineID, true)
			}
		}
	}
	return doc
}

// context adds an unchanged run, keeping only the lines next to a change
// and replacing each skipped stretch with one gap row.
func (e *Engine) context(doc *Document, secID difftree.NodeID, afterChange, beforeChange bool) {
	sec, _ := e.tree.Node(secID)
	n := len(sec.Children)
	k := max(e.opts.ContextLines, 0)

	keep := make([]bool, n)
	for j := range n {
		keep[j] = (afterChange && j < k) || (beforeChange && j >= n-k)
	}

	gap := false
	for j, lineID := range sec.Children {
		if keep[j] {
			doc.add(ContextRow, lineID, false)
			gap = false
			continue
		}
		if !gap {
			doc.add(GapRow, secID, false)
			gap = true
		}
	}
}
