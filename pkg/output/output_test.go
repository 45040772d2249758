package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want string
	}{
		{"empty", map[string]string{}, "{}\n"},
		{"single", map[string]string{"a": "b"}, "{\"a\": \"b\"}\n"},
		{"sorted", map[string]string{"x": "y", "a": "b"}, "{\"a\": \"b\",\n \"x\": \"y\"}\n"},
		{"escaped key", map[string]string{"t\":\n:": "v"}, "{\"t\\\":\\n:\": \"v\"}\n"},
		{"slash and backslash", map[string]string{"k": `a/b\c`}, "{\"k\": \"a\\/b\\\\c\"}\n"},
		{"control and unicode", map[string]string{"k": "\x01é"}, "{\"k\": \"\\u0001\\u00E9\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatJSON(tt.in))
		})
	}
}

func TestFormatProperties(t *testing.T) {
	got := FormatProperties(map[string]string{
		"lib-b.version": "Bo.Bc",
		"lib-a.version": "Ao.Ac",
	})
	assert.Equal(t, "lib-a.version=Ao.Ac\nlib-b.version=Bo.Bc\n", got)
}

func TestFormatPropertiesEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want string
	}{
		{"key space", map[string]string{"a b": "c d"}, "a\\ b=c d\n"},
		{"leading value space", map[string]string{"k": " v"}, "k=\\ v\n"},
		{"separators", map[string]string{"k:=": "#!"}, "k\\:\\==\\#\\!\n"},
		{"controls", map[string]string{"k": "a\tb\nc"}, "k=a\\tb\\nc\n"},
		{"unicode", map[string]string{"k": "ü"}, "k=\\u00FC\n"},
		{"astral", map[string]string{"k": "\U0001F600"}, "k=\\uD83D\\uDE00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatProperties(tt.in))
		})
	}
}

func TestFormatMavenConfig(t *testing.T) {
	got := FormatMavenConfig(map[string]string{"b.version": "2", "a.version": "1"})
	assert.Equal(t, "-Da.version=1\n-Db.version=2\n", got)
}

func TestFormatProjectList(t *testing.T) {
	assert.Equal(t, ":lib-a,:lib-b", FormatProjectList([]string{"lib-a", "lib-b"}))
	assert.Equal(t, "", FormatProjectList(nil))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target", PropertiesFile)
	require.NoError(t, WriteFile(path, "a=b\n"))
	require.NoError(t, WriteFile(path, "a=c\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a=c\n", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
