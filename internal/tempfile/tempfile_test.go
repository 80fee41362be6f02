package tempfile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestNextReturnsUniqueNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, err := New(fs, "/spill")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := a.Next("run")
		require.False(t, seen[name], "name %s reused", name)
		seen[name] = true
	}

	exists, err := afero.DirExists(fs, "/spill")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRemoveAllDeletesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, err := New(fs, "/spill")
	require.NoError(t, err)

	f, err := fs.Create(a.Next("run"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, a.RemoveAll())
	exists, err := afero.DirExists(fs, "/spill")
	require.NoError(t, err)
	require.False(t, exists)
}
