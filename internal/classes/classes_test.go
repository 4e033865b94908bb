package classes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_names.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	names, err := Load(writeFile(t, "numberplate\r\ncar\n\n\n"))
	require.NoError(t, err)
	require.Equal(t, Names{"numberplate", "car"}, names)

	name, err := names.Resolve(1)
	require.NoError(t, err)
	require.Equal(t, "car", name)
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(writeFile(t, "\n\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestResolveOutOfRange(t *testing.T) {
	names := Names{"numberplate"}

	for _, id := range []int{-1, 1, 42} {
		_, err := names.Resolve(id)
		require.True(t, errors.Is(err, ErrUnknownClass), "id %d", id)
	}
}
