// Package diffedit compares two files or two directory trees, turns the
// differences into a diff tree for review, and writes the reviewed
// selection back into the right-hand side.
package diffedit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/colonyops/sift/internal/core/difftree"
)

// FileInfo is what a side of the comparison holds at one path.
type FileInfo struct {
	// Mode is difftree.Absent when nothing exists at the path.
	Mode difftree.FileMode
	// Binary is set for contents with a NUL byte or invalid UTF-8. Text is
	// empty for binary files.
	Binary bool
	Text   string
	Hash   string
	Size   int64
}

// Description is how a binary side is shown to the user.
func (fi FileInfo) Description() string {
	if fi.Mode.IsAbsent() {
		return ""
	}
	return fmt.Sprintf("%s (%d bytes)", fi.Hash, fi.Size)
}

// Filesystem is the storage diffedit reads and writes.
type Filesystem interface {
	// DiffPaths lists the slash-separated paths, relative to each root, of
	// every regular file under left or right, sorted and without duplicates.
	DiffPaths(left, right string) ([]string, error)
	// ReadFile reads a file. A missing file is not an error; it reports an
	// Absent mode.
	ReadFile(path string) (FileInfo, error)
	// WriteFile writes text with mode, creating parent directories.
	WriteFile(path, text string, mode difftree.FileMode) error
	// CopyFile replaces to with the contents of from and sets mode.
	CopyFile(from, to string, mode difftree.FileMode) error
	// Chmod changes a file's mode.
	Chmod(path string, mode difftree.FileMode) error
	// RemoveFile deletes a file. A missing file is not an error.
	RemoveFile(path string) error
}

// RealFS is the operating system's filesystem.
type RealFS struct{}

var _ Filesystem = RealFS{}

func (RealFS) DiffPaths(left, right string) ([]string, error) {
	var paths []string
	for _, root := range []string{left, right} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == root {
					return fs.SkipDir
				}
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("relative path of %s: %w", path, err)
			}
			paths = append(paths, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func (RealFS) ReadFile(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{Mode: difftree.Absent}, nil
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("read %s: is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("read %s: %w", path, err)
	}
	return NewFileInfo(data, unixBits(st.Mode())), nil
}

func (RealFS) WriteFile(path, text string, mode difftree.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), fs.FileMode(mode.Bits()).Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return RealFS{}.Chmod(path, mode)
}

func (RealFS) CopyFile(from, to string, mode difftree.FileMode) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", to, err)
	}
	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(mode.Bits()).Perm())
	if err != nil {
		return fmt.Errorf("copy to %s: %w", to, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy %s to %s: %w", from, to, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("copy to %s: %w", to, err)
	}
	return RealFS{}.Chmod(to, mode)
}

func (RealFS) Chmod(path string, mode difftree.FileMode) error {
	if err := os.Chmod(path, fs.FileMode(mode.Bits()).Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

func (RealFS) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// regularFile is the S_IFREG type bit of a unix mode.
const regularFile = 0o100000

func unixBits(m fs.FileMode) difftree.FileMode {
	return difftree.Unix(regularFile | uint32(m.Perm()))
}

// NewFileInfo classifies data read from a file with the given mode.
func NewFileInfo(data []byte, mode difftree.FileMode) FileInfo {
	sum := sha256.Sum256(data)
	fi := FileInfo{
		Mode: mode,
		Hash: hex.EncodeToString(sum[:])[:12],
		Size: int64(len(data)),
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		fi.Binary = true
		return fi
	}
	fi.Text = string(data)
	return fi
}
