// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import or export locations and occurrences as YAML",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import a seed file; existing occurrences are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			result, err := db.ImportSeedFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d locations and %d occurrences (%d duplicates skipped)\n",
				result.Locations, result.Occurrences, result.Duplicates)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: `Export every location and occurrence ("-" writes to stdout)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if args[0] == "-" {
				return db.ExportSeed(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()
			return db.ExportSeed(cmd.Context(), f)
		},
	})
	return cmd
}
