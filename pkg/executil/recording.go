package executil

import (
	"context"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
	TTY  bool
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	// Key is the command name (e.g., "git").
	Outputs map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error

	// OnRun, if set, runs for every command before it returns, standing in
	// for the command's side effects (an editor writing its file).
	OnRun func(RecordedCommand) error
}

var _ Executor = (*RecordingExecutor)(nil)

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(RecordedCommand{Cmd: cmd, Args: args})
}

// RunDir records the command with directory and returns configured output/error.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(RecordedCommand{Dir: dir, Cmd: cmd, Args: args})
}

// RunTTY records an interactive command and returns the configured error.
func (e *RecordingExecutor) RunTTY(ctx context.Context, cmd string, args ...string) error {
	_, err := e.record(RecordedCommand{Cmd: cmd, Args: args, TTY: true})
	return err
}

func (e *RecordingExecutor) record(rc RecordedCommand) ([]byte, error) {
	e.mu.Lock()
	e.Commands = append(e.Commands, rc)
	hook := e.OnRun
	out := e.Outputs[rc.Cmd]
	err := e.Errors[rc.Cmd]
	e.mu.Unlock()

	if hook != nil {
		if hookErr := hook(rc); hookErr != nil {
			return out, hookErr
		}
	}
	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
