package diffedit

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/styles"
)

// Action is what applying a selection does to one right-hand file.
type Action int

const (
	// Keep leaves the contents alone and only sets the mode.
	Keep Action = iota
	// Restore copies the left-hand file over the right-hand one.
	Restore
	// Write replaces the right-hand file with new text.
	Write
	// Remove deletes the right-hand file.
	Remove
)

func (a Action) String() string {
	switch a {
	case Restore:
		return "restore"
	case Write:
		return "write"
	case Remove:
		return "remove"
	default:
		return "keep"
	}
}

// Change is one planned filesystem operation.
type Change struct {
	Action Action
	Path   string
	// Source is the left-hand file Restore copies from.
	Source string
	Text   string
	Mode   difftree.FileMode
}

// Plan computes the changes that make the right-hand side equal the left
// side plus the selected changes. files is the annotated selection for d.
func Plan(d *Diff, files []difftree.File) []Change {
	changes := make([]Change, 0, len(files))
	for _, f := range files {
		sel, _ := f.SelectedContents()
		c := Change{Path: d.RightPath(f), Mode: sel.Mode}

		switch sel.Kind {
		case difftree.ContentsAbsent:
			c.Action = Remove
		case difftree.ContentsUnchanged:
			c.Action, c.Source = Restore, d.LeftPath(f)
		case difftree.ContentsBinary:
			c.Action = Keep
		case difftree.ContentsText:
			c.Action, c.Text = Write, sel.Text
		}
		changes = append(changes, c)
	}
	return changes
}

// Apply performs the planned changes in order and stops at the first error.
func Apply(fsys Filesystem, changes []Change) error {
	for _, c := range changes {
		var err error
		switch c.Action {
		case Remove:
			err = fsys.RemoveFile(c.Path)
		case Restore:
			err = fsys.CopyFile(c.Source, c.Path, c.Mode)
		case Keep:
			err = fsys.Chmod(c.Path, c.Mode)
		case Write:
			err = fsys.WriteFile(c.Path, c.Text, c.Mode)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", c.Action, c.Path, err)
		}
	}
	return nil
}

// WriteSummary prints one styled line per change, cut to width columns
// when width is positive.
func WriteSummary(w io.Writer, changes []Change, width int) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, styles.TextMutedStyle.Render("no changes"))
		return err
	}

	for _, c := range changes {
		var verb, detail string
		switch c.Action {
		case Remove:
			verb = styles.TextErrorStyle.Render("remove ")
		case Restore:
			verb = styles.TextWarningStyle.Render("restore")
			detail = "from " + c.Source
		case Keep:
			verb = styles.TextMutedStyle.Render("keep   ")
			detail = "mode " + c.Mode.String()
		case Write:
			verb = styles.TextSuccessStyle.Render("write  ")
			detail = fmt.Sprintf("%d lines, mode %s", len(splitLines(c.Text)), c.Mode)
		}

		line := verb + " " + styles.TextForegroundBoldStyle.Render(c.Path)
		if detail != "" {
			line += " " + styles.TextMutedStyle.Render(detail)
		}
		if width > 0 && ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
