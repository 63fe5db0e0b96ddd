// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/occurlog/internal/auth"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a))
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var (
		admin    bool
		password string
	)

	cmd := &cobra.Command{
		Use:   "add <username> <email>",
		Short: "Create an account",
		Long: "Create an account. Without --password the password is read from the\n" +
			"first line of standard input.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readLine(cmd); err != nil {
					return err
				}
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			accounts := auth.NewService(db, auth.ServiceConfig{})
			user, err := accounts.CreateUser(cmd.Context(), auth.NewUser{
				Username: args[0],
				Email:    args[1],
				Password: password,
				Admin:    admin,
			}, auth.SourceCLI, auth.SourceCLI)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			role := "user"
			if user.Admin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", role, user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator rights")
	cmd.Flags().StringVar(&password, "password", "", "password (visible in the process list; prefer stdin)")
	return cmd
}

func readLine(cmd *cobra.Command) (string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errors.New("no password given on standard input")
	}
	line := strings.TrimRight(scanner.Text(), "\r")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func newUserListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			users, err := db.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(users)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tADMIN\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Email, u.Admin, u.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
