package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnakamura/examdeck/internal/testutil"
)

func TestReadImageFile(t *testing.T) {
	t.Run("encodes file bytes as a data uri", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diagram.png")
		require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644))

		got, err := readImageFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"), got)
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "image.unknownext")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		got, err := readImageFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "data:application/octet-stream;base64,"), got)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := readImageFile(filepath.Join(t.TempDir(), "nope.png"))
		assert.Error(t, err)
	})
}

func TestExamAddAndList(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)

	oldConfigFile := configFile
	configFile = cfgPath
	defer func() { configFile = oldConfigFile }()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"exam", "add", "Midterm", "--subject", "Biology"})
	require.NoError(t, cmd.Execute())

	// The database was created in the configured storage directory.
	_, err := os.Stat(filepath.Join(tmpDir, "examdeck.db"))
	require.NoError(t, err)

	listCmd := newRootCommand()
	listCmd.SetArgs([]string{"exam", "list"})
	assert.NoError(t, listCmd.Execute())
}
