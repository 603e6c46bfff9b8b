package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/remote"
)

type discard struct{}

func (discard) Write([]byte) error { return nil }

func TestQueueFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.txt")
	require.NoError(t, os.WriteFile(path, []byte("# boot\npress PLUS\n\nwait 2s\nhold RIGHT 1500ms\n"), 0o644))

	seq := remote.NewSequencer(discard{})
	n, err := queueFile(seq, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, seq.Pending())
}

func TestQueueFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.txt")
	require.NoError(t, os.WriteFile(path, []byte("press A\nfly\n"), 0o644))

	seq := remote.NewSequencer(discard{})
	_, err := queueFile(seq, path)
	assert.ErrorIs(t, err, remote.ErrBadStep)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 0, seq.Pending())
}
