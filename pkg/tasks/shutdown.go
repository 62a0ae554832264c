// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// HandleShutdownSignals sets up signal handlers for SIGINT (Ctrl+C) and
// SIGTERM. When either signal is received, it cancels the provided
// context so processors and schedulers can finish in-flight tasks. If
// shutdown doesn't complete within 10 seconds, it hard-kills the
// process. This function should be called in a goroutine at startup.
func HandleShutdownSignals(cancel context.CancelFunc, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if sig := <-sigChan; sig != nil {
		log.Warn().Str("signal", sig.String()).
			Msg("Shutdown signal received. Finishing in-flight tasks... (press Ctrl+C again to force exit)")
		cancel()
	}

	select {
	case sig := <-sigChan:
		if sig != nil {
			log.Error().Msg("Second interrupt received. Forcing immediate exit...")
			os.Exit(1)
		}
	case <-time.After(10 * time.Second):
		log.Error().Msg("Shutdown timeout reached (10 seconds). Forcing exit to prevent hang...")
		os.Exit(1)
	}
}
