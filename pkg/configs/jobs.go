// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobsFile is the YAML document declaring recurring jobs for the
// scheduler.
type JobsFile struct {
	Jobs []JobConfig `yaml:"jobs"`
}

// JobConfig declares one recurring job.
type JobConfig struct {
	Name     string         `yaml:"name"`
	Schedule string         `yaml:"schedule"` // Cron expression
	Handler  string         `yaml:"handler"`  // Registered handler name
	Args     map[string]any `yaml:"args,omitempty"`
}

// LoadJobsFile reads and validates a recurring-jobs YAML file. Schedule
// expressions are validated later, when the scheduler registers them.
func LoadJobsFile(path string) (JobsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobsFile{}, fmt.Errorf("failed to read jobs file %s: %w", path, err)
	}

	var file JobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return JobsFile{}, fmt.Errorf("failed to parse jobs file %s: %w", path, err)
	}

	for i, job := range file.Jobs {
		if job.Name == "" {
			return JobsFile{}, fmt.Errorf("jobs[%d]: name cannot be empty", i)
		}
		if job.Schedule == "" {
			return JobsFile{}, fmt.Errorf("job %q: schedule cannot be empty", job.Name)
		}
		if job.Handler == "" {
			return JobsFile{}, fmt.Errorf("job %q: handler cannot be empty", job.Name)
		}
	}

	return file, nil
}
