package iojson

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func TestFileReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Barrier","stock":4}`), 0o644))

	fr := &FileReader[item]{fileFlagValue: path}
	assert.True(t, fr.Provided())

	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, item{Name: "Barrier", Stock: 4}, got)
}

func TestFileReader_Stdin(t *testing.T) {
	fr := &FileReader[item]{stdin: strings.NewReader(`{"name":"Cable"}`)}
	assert.False(t, fr.Provided())

	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, "Cable", got.Name)
}

func TestFileReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		fr   *FileReader[item]
	}{
		{name: "missing file", fr: &FileReader[item]{fileFlagValue: filepath.Join(t.TempDir(), "nope.json")}},
		{name: "bad json", fr: &FileReader[item]{stdin: strings.NewReader(`{"name":`)}},
		{name: "unknown field", fr: &FileReader[item]{stdin: strings.NewReader(`{"title":"x"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fr.Read()
			require.Error(t, err)
		})
	}
}
