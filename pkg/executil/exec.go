// Package executil runs external programs behind an interface so callers can
// swap in a recorder under test.
package executil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunDir executes a command in a specific directory.
	RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error)
	// RunTTY executes a command attached to the process's terminal and waits
	// for it. Used for interactive programs such as editors.
	RunTTY(ctx context.Context, cmd string, args ...string) error
}

// RealExecutor calls actual commands.
type RealExecutor struct {
	// Stdin, Stdout and Stderr override the streams RunTTY attaches. Nil
	// means the process's own.
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// RunDir executes a command in a specific directory.
func (e *RealExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s in %s: %w", cmd, dir, err)
	}
	return out, nil
}

// RunTTY executes a command with the terminal's streams.
func (e *RealExecutor) RunTTY(ctx context.Context, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = orDefault[io.Reader](e.Stdin, os.Stdin)
	c.Stdout = orDefault[io.Writer](e.Stdout, os.Stdout)
	c.Stderr = orDefault[io.Writer](e.Stderr, os.Stderr)
	if err := c.Run(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
