// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

// Command pst manages a PostgreSQL-backed task queue: create its table,
// process due tasks, run recurring jobs, and drain in-progress work
// before shutdown. Binaries built on the library register their
// handlers in tasks.DefaultRegistry before handing control to the
// command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/loganhenson/go-simple-tasks/pkg/configs"
	"github.com/loganhenson/go-simple-tasks/pkg/db"
	"github.com/loganhenson/go-simple-tasks/pkg/tasks"
)

var (
	flagDatabaseURL string
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "pst",
	Short:         "PostgreSQL-backed task scheduler and processor",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var setupTablesCmd = &cobra.Command{
	Use:   "setup-tables",
	Short: "Create the tasks table if it doesn't already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Setup(cmd.Context()); err != nil {
			return err
		}
		log.Info().Msg("Tasks table is ready")
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run all due tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		workers, _ := cmd.Flags().GetInt("workers")
		if workers > 0 {
			cfg.Workers = workers
		}
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.PollInterval
		}

		store, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		processor := tasks.NewProcessor(store, tasks.DefaultRegistry, tasks.ProcessorOptions{
			Workers:   cfg.Workers,
			BatchSize: cfg.BatchSize,
			Logger:    log,
		})

		if watch {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go tasks.HandleShutdownSignals(cancel, log)

			if err := processor.Watch(ctx, interval); err != nil && err != context.Canceled {
				return err
			}
			return nil
		}

		stats, err := processor.ProcessDue(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().
			Int("processed", stats.Processed).
			Int("succeeded", stats.Succeeded).
			Int("failed", stats.Failed).
			Msg("Done")
		return nil
	},
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Block until no tasks are in progress (prestop hook)",
	Long: `Polls the tasks table on a fixed delay and exits successfully once no
tasks are marked in_progress. Intended as an orchestration prestop hook
so instances finish in-flight work before terminating. Database errors
abort immediately with a non-zero exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.PollInterval
		}

		store, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		drainer := tasks.NewDrainer(store, interval, log)
		if err := drainer.Wait(cmd.Context()); err != nil {
			return err
		}
		log.Info().Msg("All tasks complete. Proceeding with shutdown.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a queue status summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		status, err := store.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(status.Summary())
		return nil
	},
}

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run recurring jobs from a YAML file until signaled",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		jobsPath, _ := cmd.Flags().GetString("jobs")
		jobsFile, err := configs.LoadJobsFile(jobsPath)
		if err != nil {
			return err
		}

		store, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		scheduler := tasks.NewScheduler(store, tasks.DefaultRegistry, log)
		for _, job := range jobsFile.Jobs {
			if _, err := scheduler.Add(job.Name, job.Schedule, job.Handler, job.Args); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go tasks.HandleShutdownSignals(cancel, log)

		scheduler.Run(ctx)
		return nil
	},
}

var cronConfigCmd = &cobra.Command{
	Use:   "cron-config",
	Short: "Generate deployment cron settings that run `pst process` every minute",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := loadConfig()
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		path, err := configs.WriteCronConfig(dir, overwrite)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Cron settings generated")
		return nil
	},
}

// loadConfig resolves configuration and builds the CLI logger.
func loadConfig() (configs.Config, zerolog.Logger, error) {
	cfg, err := configs.Load()
	if err != nil {
		return configs.Config{}, zerolog.Nop(), err
	}

	if flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
		if err := configs.ValidateDatabaseURL(cfg.DatabaseURL); err != nil {
			return configs.Config{}, zerolog.Nop(), err
		}
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return configs.Config{}, zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	return cfg, log, nil
}

// Execute runs the pst command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	processCmd.Flags().Int("workers", 0, "Concurrent task executors")
	processCmd.Flags().Bool("watch", false, "Keep polling for due tasks until signaled")
	processCmd.Flags().Duration("interval", 0, "Polling interval in watch mode")

	drainCmd.Flags().Duration("interval", 0, "Delay between drain polls")

	schedulerCmd.Flags().String("jobs", "jobs.yaml", "Path to the recurring-jobs YAML file")

	cronConfigCmd.Flags().String("dir", configs.DefaultCronDir, "Output directory")
	cronConfigCmd.Flags().Bool("overwrite", false, "Regenerate the file if it already exists")

	rootCmd.AddCommand(setupTablesCmd, processCmd, drainCmd, statusCmd, schedulerCmd, cronConfigCmd)
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
