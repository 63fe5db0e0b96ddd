// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/logging"
)

// app carries what the persistent pre-run loads for every subcommand.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "occurlog",
		Short:        "Occurrence logging and geographic dashboard",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logging.Init(logging.Config{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				Caller:    cfg.Logging.Caller,
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newUserCmd(a),
		newLocationCmd(a),
		newSeedCmd(a),
	)
	return root
}

// openDB opens the configured database. Callers close it.
func (a *app) openDB() (*database.DB, error) {
	db, err := database.New(&a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// closeDB closes db and logs a failure; used in defers.
func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
