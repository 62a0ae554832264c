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

func writeJobsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJobsFile(t *testing.T) {
	path := writeJobsFile(t, `
jobs:
  - name: nightly_report
    schedule: "0 3 * * *"
    handler: generate_report
    args:
      format: csv
  - name: heartbeat
    schedule: "@every 1m"
    handler: ping
`)

	file, err := LoadJobsFile(path)
	require.NoError(t, err)
	require.Len(t, file.Jobs, 2)

	assert.Equal(t, "nightly_report", file.Jobs[0].Name)
	assert.Equal(t, "0 3 * * *", file.Jobs[0].Schedule)
	assert.Equal(t, "generate_report", file.Jobs[0].Handler)
	assert.Equal(t, "csv", file.Jobs[0].Args["format"])

	assert.Equal(t, "heartbeat", file.Jobs[1].Name)
	assert.Nil(t, file.Jobs[1].Args)
}

func TestLoadJobsFileValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing name", "jobs:\n  - schedule: \"* * * * *\"\n    handler: ping\n"},
		{"missing schedule", "jobs:\n  - name: x\n    handler: ping\n"},
		{"missing handler", "jobs:\n  - name: x\n    schedule: \"* * * * *\"\n"},
		{"malformed yaml", "jobs: [\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadJobsFile(writeJobsFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadJobsFileMissing(t *testing.T) {
	_, err := LoadJobsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
