package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"github.com/stemsi/majorcatalog/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrationDir string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply catalog schema migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&migrationDir, "path", "migrations", "path to migration files")

	open := func() (*migrate.Migrate, error) {
		cfg := config.Load()
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
		m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("migration failed to initialize: %w", err)
		}
		return m, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("up failed: %w", err)
				}
				cmd.Println("Migrated up successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("down failed: %w", err)
				}
				cmd.Println("Migrated down successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("version failed: %w", err)
				}
				cmd.Printf("Version: %d, Dirty: %t\n", version, dirty)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version: %w", err)
				}
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				if err := m.Force(v); err != nil {
					return fmt.Errorf("force failed: %w", err)
				}
				cmd.Printf("Forced version to %d\n", v)
				return nil
			},
		},
	)

	return root
}
