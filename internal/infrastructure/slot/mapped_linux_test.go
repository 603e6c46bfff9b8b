package slot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapped_WriteVisibleToReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.bin")
	require.NoError(t, os.WriteFile(path, []byte("old data that is longer than the slot"), 0o644))

	m, err := OpenMapped(path, 8)
	require.NoError(t, err)

	require.NoError(t, m.Write([]byte{1, 2, 3, 4}))
	require.NoError(t, m.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, data)

	assert.Error(t, m.Write(make([]byte, 9)))

	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
	assert.Error(t, m.Write([]byte{1}))
}
