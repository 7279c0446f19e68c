package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/colonyops/sift/pkg/executil"
)

// Editor edits the commit message. The session leaves the terminal while
// Edit runs and re-enters it afterwards.
type Editor interface {
	Edit(ctx context.Context, message string) (string, error)
}

// ExternalEditor opens the message in an external program such as $EDITOR.
type ExternalEditor struct {
	Exec executil.Executor
	// Command is a shell command line; the file path is appended as its
	// last argument.
	Command string
	// Dir is where the temporary file is created. Empty means os.TempDir.
	Dir string
}

// Edit writes message to a temporary file, runs the editor on it, and reads
// the result back. Trailing newlines the editor adds are dropped.
func (e *ExternalEditor) Edit(ctx context.Context, message string) (string, error) {
	f, err := os.CreateTemp(e.Dir, "sift-message-*.txt")
	if err != nil {
		return message, fmt.Errorf("create message file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(message); err != nil {
		_ = f.Close()
		return message, fmt.Errorf("write message file: %w", err)
	}
	if err := f.Close(); err != nil {
		return message, fmt.Errorf("close message file: %w", err)
	}

	// Run through the shell so Command may carry its own flags ("code --wait").
	if err := e.Exec.RunTTY(ctx, "sh", "-c", e.Command+` "$@"`, "sift-editor", path); err != nil {
		return message, fmt.Errorf("run editor: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return message, fmt.Errorf("read message file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
