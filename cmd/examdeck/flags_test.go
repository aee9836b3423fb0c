package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFlag(t *testing.T) {
	var flag FormatFlag

	require.NoError(t, flag.Set("yaml"))
	assert.Equal(t, "yaml", flag.String())

	require.NoError(t, flag.Set("json"))
	assert.Equal(t, "json", flag.String())

	assert.Error(t, flag.Set("xml"))
	assert.Equal(t, "FormatFlag", flag.Type())
}

func TestModeFlag(t *testing.T) {
	var flag ModeFlag

	require.NoError(t, flag.Set("replace"))
	assert.Equal(t, "replace", flag.String())

	require.NoError(t, flag.Set("merge"))
	assert.Equal(t, "merge", flag.String())

	assert.Error(t, flag.Set("append"))
	assert.Equal(t, "ModeFlag", flag.Type())
}
