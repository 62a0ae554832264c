// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCronDir is where WriteCronConfig places its output, matching
// the Elastic Beanstalk extensions layout.
const DefaultCronDir = ".ebextensions"

// cronConfigTemplate installs a system cron entry that runs the
// processor every minute on the host.
const cronConfigTemplate = `files:
    "/etc/cron.d/go-simple-tasks":
        mode: "000644"
        owner: root
        group: root
        content: |
            * * * * * root /usr/local/bin/pst process
commands:
    remove_old_cron:
        command: "rm -f /etc/cron.d/go-simple-tasks.bak"
    restart_cron:
        command: "service crond restart"
`

// WriteCronConfig generates deployment settings that run `pst process`
// once a minute via system cron. The file is not rewritten when it
// already exists unless overwrite is set. Returns the written path.
func WriteCronConfig(dir string, overwrite bool) (string, error) {
	if dir == "" {
		dir = DefaultCronDir
	}
	path := filepath.Join(dir, "cron.config")

	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("file %s already exists (use --overwrite to regenerate)", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(cronConfigTemplate), 0644); err != nil {
		return "", fmt.Errorf("failed to write cron config: %w", err)
	}
	return path, nil
}
