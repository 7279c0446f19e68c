package diffedit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/sift/internal/core/difftree"
	"github.com/colonyops/sift/internal/core/selection"
)

type memFile struct {
	data []byte
	mode difftree.FileMode
}

// memFS keeps files in a map keyed by slash path.
type memFS struct {
	files map[string]memFile
}

func newMemFS(files map[string]string) *memFS {
	m := &memFS{files: map[string]memFile{}}
	for p, data := range files {
		m.files[p] = memFile{data: []byte(data), mode: difftree.Unix(difftree.DefaultBits)}
	}
	return m
}

func (m *memFS) DiffPaths(left, right string) ([]string, error) {
	var out []string
	for p := range m.files {
		for _, root := range []string{left, right} {
			if rel, ok := strings.CutPrefix(p, root+"/"); ok {
				out = append(out, rel)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (m *memFS) ReadFile(path string) (FileInfo, error) {
	f, ok := m.files[path]
	if !ok {
		return FileInfo{Mode: difftree.Absent}, nil
	}
	return NewFileInfo(f.data, f.mode), nil
}

func (m *memFS) WriteFile(path, text string, mode difftree.FileMode) error {
	m.files[path] = memFile{data: []byte(text), mode: mode}
	return nil
}

func (m *memFS) CopyFile(from, to string, mode difftree.FileMode) error {
	f, ok := m.files[from]
	if !ok {
		return fmt.Errorf("copy %s: %w", from, os.ErrNotExist)
	}
	m.files[to] = memFile{data: bytes.Clone(f.data), mode: mode}
	return nil
}

func (m *memFS) Chmod(path string, mode difftree.FileMode) error {
	f, ok := m.files[path]
	if !ok {
		return fmt.Errorf("chmod %s: %w", path, os.ErrNotExist)
	}
	f.mode = mode
	m.files[path] = f
	return nil
}

func (m *memFS) RemoveFile(path string) error {
	delete(m.files, path)
	return nil
}

func (m *memFS) text(path string) (string, bool) {
	f, ok := m.files[path]
	return string(f.data), ok
}

func dirFixture() *memFS {
	fsys := newMemFS(map[string]string{
		"left/same.txt":  "same\n",
		"left/mod.txt":   "a\nb\nc\n",
		"left/gone.txt":  "bye\n",
		"left/bin.dat":   "\x00\x01",
		"left/run.sh":    "echo\n",
		"right/same.txt": "same\n",
		"right/mod.txt":  "a\nB\nc\n",
		"right/new.txt":  "hi\nthere",
		"right/bin.dat":  "\x00\x02\x03",
		"right/run.sh":   "echo\n",
	})
	f := fsys.files["right/run.sh"]
	f.mode = difftree.Unix(0o100755)
	fsys.files["right/run.sh"] = f
	return fsys
}

func paths(files []difftree.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestBuild_SingleFile(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"old.txt": "a\nb\nc\n",
		"new.txt": "a\nB\nc\n",
	})

	d, err := Build(fsys, "old.txt", "new.txt", Options{})
	require.NoError(t, err)
	require.Len(t, d.Files, 1)

	f := d.Files[0]
	assert.Equal(t, "new.txt", f.Path)
	assert.Equal(t, "old.txt", f.OldPath)
	assert.Equal(t, []difftree.Section{
		difftree.NewUnchanged("a\n"),
		difftree.NewChanged(difftree.RemovedLine("b\n"), difftree.AddedLine("B\n")),
		difftree.NewUnchanged("c\n"),
	}, f.Sections)

	assert.Equal(t, "old.txt", d.LeftPath(f))
	assert.Equal(t, "new.txt", d.RightPath(f))
}

func TestBuild_SingleFileUnchanged(t *testing.T) {
	fsys := newMemFS(map[string]string{"a": "x\n", "b": "x\n"})

	d, err := Build(fsys, "a", "b", Options{})
	require.NoError(t, err)
	assert.Empty(t, d.Files)
}

func TestBuild_DirDiff(t *testing.T) {
	fsys := dirFixture()

	d, err := Build(fsys, "left", "right", Options{DirDiff: true})
	require.NoError(t, err)
	require.Equal(t, []string{"bin.dat", "gone.txt", "mod.txt", "new.txt", "run.sh"}, paths(d.Files))

	byPath := map[string]difftree.File{}
	for _, f := range d.Files {
		byPath[f.Path] = f
	}

	bin := byPath["bin.dat"]
	oldInfo := NewFileInfo([]byte("\x00\x01"), difftree.Unix(difftree.DefaultBits))
	newInfo := NewFileInfo([]byte("\x00\x02\x03"), difftree.Unix(difftree.DefaultBits))
	assert.Equal(t, []difftree.Section{difftree.NewBinary(oldInfo.Description(), newInfo.Description())}, bin.Sections)
	assert.Contains(t, newInfo.Description(), "(3 bytes)")

	gone := byPath["gone.txt"]
	assert.True(t, gone.IsDeletion())
	assert.Equal(t, difftree.NewChanged(difftree.RemovedLine("bye\n")), gone.Sections[1])

	created := byPath["new.txt"]
	assert.True(t, created.IsCreation())
	assert.Equal(t, difftree.NewChanged(difftree.AddedLine("hi\n"), difftree.AddedLine("there")), created.Sections[1])

	run := byPath["run.sh"]
	assert.Equal(t, []difftree.Section{
		difftree.NewModeChange(difftree.Unix(0o100755)),
		difftree.NewUnchanged("echo\n"),
	}, run.Sections)

	_, err = difftree.New(d.Files)
	require.NoError(t, err, "built files are always a valid tree")
}

func TestBuild_Globs(t *testing.T) {
	fsys := dirFixture()

	d, err := Build(fsys, "left", "right", Options{
		DirDiff: true,
		Include: []string{"*.txt"},
		Exclude: []string{"gone.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod.txt", "new.txt"}, paths(d.Files))

	_, err = Build(fsys, "left", "right", Options{DirDiff: true, Include: []string{"[unclosed"}})
	require.Error(t, err)
}

func TestPlanApply(t *testing.T) {
	tests := []struct {
		name   string
		choose func(*selection.Store)
		want   map[string]string
		absent []string
	}{
		{
			name:   "nothing selected resets the right side",
			choose: func(*selection.Store) {},
			want: map[string]string{
				"right/mod.txt":  "a\nb\nc\n",
				"right/gone.txt": "bye\n",
				"right/bin.dat":  "\x00\x01",
				"right/same.txt": "same\n",
			},
			absent: []string{"right/new.txt"},
		},
		{
			name:   "everything selected keeps the right side",
			choose: func(s *selection.Store) { s.ToggleAllUniform() },
			want: map[string]string{
				"right/mod.txt": "a\nB\nc\n",
				"right/new.txt": "hi\nthere",
				"right/bin.dat": "\x00\x02\x03",
			},
			absent: []string{"right/gone.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := dirFixture()
			d, err := Build(fsys, "left", "right", Options{DirDiff: true})
			require.NoError(t, err)

			tree, err := difftree.New(d.Files)
			require.NoError(t, err)
			store := selection.New(tree)
			tt.choose(store)

			require.NoError(t, Apply(fsys, Plan(d, store.Files())))

			for p, want := range tt.want {
				got, ok := fsys.text(p)
				require.True(t, ok, p)
				assert.Equal(t, want, got, p)
			}
			for _, p := range tt.absent {
				_, ok := fsys.text(p)
				assert.False(t, ok, p)
			}
		})
	}
}

func TestPlan_PartialSelection(t *testing.T) {
	fsys := dirFixture()
	d, err := Build(fsys, "left", "right", Options{DirDiff: true, Include: []string{"run.sh", "mod.txt"}})
	require.NoError(t, err)

	tree, err := difftree.New(d.Files)
	require.NoError(t, err)
	store := selection.New(tree)

	// mod.txt: file 0, context 1-2, hunk 3, removed 4, added 5. Taking only
	// the removal deletes the line.
	_, err = store.Toggle(4)
	require.NoError(t, err)

	changes := Plan(d, store.Files())
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Action: Write, Path: "right/mod.txt", Text: "a\nc\n", Mode: difftree.Unix(difftree.DefaultBits)}, changes[0])
	assert.Equal(t, Change{Action: Write, Path: "right/run.sh", Text: "echo\n", Mode: difftree.Unix(difftree.DefaultBits)}, changes[1],
		"an unselected mode change writes the old mode back")
}

func TestWriteSummary(t *testing.T) {
	changes := []Change{
		{Action: Write, Path: "right/a.txt", Text: "x\ny\n", Mode: difftree.Unix(difftree.DefaultBits)},
		{Action: Remove, Path: "right/b.txt"},
		{Action: Restore, Path: "right/c.txt", Source: "left/c.txt"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, changes, 0))

	lines := strings.Split(strings.TrimSpace(ansi.Strip(buf.String())), "\n")
	assert.Equal(t, []string{
		"write   right/a.txt 2 lines, mode 100644",
		"remove  right/b.txt",
		"restore right/c.txt from left/c.txt",
	}, lines)

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, changes, 16))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 16)
	}

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, nil, 0))
	assert.Equal(t, "no changes", strings.TrimSpace(ansi.Strip(buf.String())))
}

func TestRealFS(t *testing.T) {
	dir := t.TempDir()
	left, right := filepath.Join(dir, "left"), filepath.Join(dir, "right")
	fsys := RealFS{}

	require.NoError(t, fsys.WriteFile(filepath.Join(left, "sub", "a.txt"), "one\n", difftree.Unix(difftree.DefaultBits)))
	require.NoError(t, fsys.WriteFile(filepath.Join(right, "sub", "a.txt"), "two\n", difftree.Unix(0o100755)))
	require.NoError(t, fsys.WriteFile(filepath.Join(right, "b.bin"), "\x00", difftree.Unix(difftree.DefaultBits)))

	got, err := fsys.DiffPaths(left, right)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.bin", "sub/a.txt"}, got)

	info, err := fsys.ReadFile(filepath.Join(right, "sub", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "two\n", info.Text)
	assert.Equal(t, "100755", info.Mode.String())

	info, err = fsys.ReadFile(filepath.Join(right, "b.bin"))
	require.NoError(t, err)
	assert.True(t, info.Binary)

	info, err = fsys.ReadFile(filepath.Join(left, "missing"))
	require.NoError(t, err)
	assert.True(t, info.Mode.IsAbsent())

	require.NoError(t, fsys.CopyFile(filepath.Join(left, "sub", "a.txt"), filepath.Join(right, "sub", "a.txt"), difftree.Unix(difftree.DefaultBits)))
	info, err = fsys.ReadFile(filepath.Join(right, "sub", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", info.Text)
	assert.Equal(t, "100644", info.Mode.String())

	require.NoError(t, fsys.RemoveFile(filepath.Join(right, "b.bin")))
	require.NoError(t, fsys.RemoveFile(filepath.Join(right, "b.bin")), "removing twice is fine")

	got, err = fsys.DiffPaths(left, filepath.Join(dir, "nowhere"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/a.txt"}, got)
}
