package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/colonyops/sift/internal/core/styles"
	"github.com/colonyops/sift/internal/tui/dispatch"
	"github.com/colonyops/sift/internal/tui/layout"
)

// Screen rows: a header, the body, and a status bar.
const (
	bodyTop      = 1
	chromeHeight = 2
)

func (s *session) bodyHeight() int {
	_, h := s.term.Size()
	return max(h-chromeHeight, 0)
}

// draw lays out and flushes one frame.
func (s *session) draw() error {
	width, height := s.term.Size()
	body := s.bodyHeight()

	s.doc = s.engine.Build(s.view, width)
	if s.follow {
		s.view.EnsureVisible(s.doc, body)
	}
	s.frame = s.engine.Frame(s.doc, s.view, s.store, body)

	s.term.Clear()
	s.drawHeader(width)
	if s.state == help {
		s.drawHelp(width, body)
	} else {
		for i, row := range s.frame {
			s.drawRow(bodyTop+i, width, row)
		}
	}
	if height > 1 {
		s.drawStatus(height-1, width)
	}

	if err := s.term.Show(); err != nil {
		return ioError("show frame", err)
	}
	return nil
}

func (s *session) drawHeader(width int) {
	title := " sift"
	if s.opts.Title != "" {
		title += "  " + s.opts.Title
	}
	if s.message != "" {
		first, _, _ := strings.Cut(s.message, "\n")
		title += "  │ " + first
	}
	s.fill(0, width, styles.Screen.Header)
	s.put(0, 0, width, s.engine.Measure().Cells(title), styles.Screen.Header)
}

func (s *session) drawStatus(y, width int) {
	s.fill(y, width, styles.Screen.Status)
	m := s.engine.Measure()

	if s.notice != "" {
		style := styles.Screen.Status
		if s.noticeErr {
			style = styles.Screen.Error
		}
		s.put(0, y, width, m.Cells(" "+s.notice), style)
		return
	}

	selected, total := s.store.Counts()
	counts := fmt.Sprintf(" %d/%d selected", selected, total)
	if s.opts.ReadOnly {
		counts += " (read-only)"
	}
	x := s.put(0, y, width, m.Cells(counts), styles.Screen.Status)

	for _, a := range []dispatch.Action{dispatch.Toggle, dispatch.Confirm, dispatch.Cancel, dispatch.Help} {
		key := s.keyFor(a)
		if key == "" {
			continue
		}
		x = s.put(x, y, width, m.Cells("  "+key), styles.Screen.StatusKey)
		x = s.put(x, y, width, m.Cells(" "+a.String()), styles.Screen.Status)
	}
}

// keyFor returns the first key bound to a.
func (s *session) keyFor(a dispatch.Action) string {
	for _, e := range s.keys.Help() {
		if e.Action == a && len(e.Keys) > 0 {
			return e.Keys[0]
		}
	}
	return ""
}

func (s *session) drawHelp(width, height int) {
	entries := s.keys.Help()
	m := s.engine.Measure()

	keyWidth := 0
	for _, e := range entries {
		keyWidth = max(keyWidth, layout.Width(m.Cells(strings.Join(e.Keys, ", "))))
	}

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, " Keys (any key to close)", "")
	for _, e := range entries {
		keys := layout.String(layout.Pad(m.Cells(strings.Join(e.Keys, ", ")), keyWidth))
		lines = append(lines, "  "+keys+"  "+e.Description)
	}

	for i, line := range lines {
		if i >= height {
			break
		}
		style := styles.Screen.Base
		if i == 0 {
			style = styles.Screen.File
		}
		s.put(0, bodyTop+i, width, m.Cells(line), style)
	}
}

func (s *session) drawRow(y, width int, row layout.DrawRow) {
	x := 0
	for _, sp := range row.Spans {
		x = s.put(x, y, width, sp.Cells, s.roleStyle(sp.Role, row.Focused))
	}
	if row.Focused {
		focus := styles.Screen.Base.Background(styles.Screen.FocusBackground)
		for ; x < width; x++ {
			s.term.SetContent(x, y, ' ', nil, focus)
		}
	}
}

func (s *session) roleStyle(role layout.Role, focused bool) tcell.Style {
	st := styles.Screen
	var style tcell.Style
	switch role {
	case layout.RoleMuted:
		style = st.Muted
	case layout.RoleFile:
		style = st.File
	case layout.RoleSection:
		style = st.Section
	case layout.RoleCheckbox:
		style = st.Checkbox
	case layout.RoleGutter:
		style = st.Gutter
	case layout.RoleAdded:
		style = st.Added
	case layout.RoleRemoved:
		style = st.Removed
	case layout.RoleContext:
		style = st.Context
	case layout.RoleSeparator:
		style = st.Separator
	default:
		style = st.Base
	}
	if focused {
		style = style.Background(st.FocusBackground)
	}
	return style
}

// put draws cells from x, stopping at width, and returns the next column.
func (s *session) put(x, y, width int, cells []layout.Cell, style tcell.Style) int {
	for _, c := range cells {
		if x+c.Width > width {
			break
		}
		s.term.SetContent(x, y, c.Rune, c.Comb, style)
		x += c.Width
	}
	return x
}

func (s *session) fill(y, width int, style tcell.Style) {
	for x := range width {
		s.term.SetContent(x, y, ' ', nil, style)
	}
}
