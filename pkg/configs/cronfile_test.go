// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCronConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ebextensions")

	path, err := WriteCronConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cron.config"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "* * * * * root /usr/local/bin/pst process")
	assert.Contains(t, string(data), "/etc/cron.d/go-simple-tasks")
}

func TestWriteCronConfigRefusesOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ebextensions")

	_, err := WriteCronConfig(dir, false)
	require.NoError(t, err)

	_, err = WriteCronConfig(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = WriteCronConfig(dir, true)
	assert.NoError(t, err)
}
