package main

import (
	"fmt"

	"github.com/ceemowww/comtrack2/internal/infrastructure/migration"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect the ledger schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *migration.Migrator, _ string) error {
			return m.Up()
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied version and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *migration.Migrator, path string) error {
			status, err := m.Status(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d, dirty %t, pending %d\n", status.Version, status.Dirty, status.Pending)
			return nil
		})
	},
}

func init() {
	migrateCmd.PersistentFlags().String("path", "migrations", "Path to the migrations directory")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withMigrator(cmd *cobra.Command, fn func(m *migration.Migrator, path string) error) error {
	path, _ := cmd.Flags().GetString("path")
	m, err := migration.Open(state.cfg.Database.DSN(), path, state.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m, path)
}
