// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/occurrence"
)

func newLocationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "map <label> <latitude> <longitude>",
		Short: "Set the coordinates of an existing location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[1], err)
			}
			lon, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[2], err)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := occurrence.NewService(db, events.Discard).MapLocation(cmd.Context(), args[0], lat, lon, "cli"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mapped %q to %g, %g\n", args[0], lat, lon)
			return nil
		},
	})
	return cmd
}
