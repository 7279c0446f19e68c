package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"a","count":2}`), 0o644))

	fr := &FileReader[doc]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, doc{Name: "a", Count: 2}, got)
	assert.Equal(t, path, fr.Source())

	fr = &FileReader[doc]{stdin: strings.NewReader(`{"name":"b"}`)}
	got, err = fr.Read()
	require.NoError(t, err)
	assert.Equal(t, doc{Name: "b"}, got)
	assert.Equal(t, "stdin", fr.Source())
}

func TestFileReader_Errors(t *testing.T) {
	fr := &FileReader[doc]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}
	_, err := fr.Read()
	require.ErrorContains(t, err, "open file")

	fr = &FileReader[doc]{stdin: strings.NewReader(`{"name":`)}
	_, err = fr.Read()
	require.ErrorContains(t, err, "decode JSON")
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, doc{Name: "a", Count: 1}))
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"count\": 1\n}\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	err := WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"json_error"`)
}
