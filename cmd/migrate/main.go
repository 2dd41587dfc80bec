package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/config"
	"github.com/pageza/larder/backend/internal/database"
	"github.com/pageza/larder/backend/internal/logging"
)

var dsn string

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply or roll back the PostgreSQL schema migrations",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logger, err := open()
		if err != nil {
			return err
		}
		defer db.Close()
		applied, err := database.ApplyMigrations(cmd.Context(), db, logger)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := open()
		if err != nil {
			return err
		}
		defer db.Close()
		name, err := database.Rollback(cmd.Context(), db)
		if errors.Is(err, database.ErrNoMigrations) {
			fmt.Fprintln(cmd.OutOrStdout(), "no migrations to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s\n", name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the embedded migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrations, err := database.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migrations {
			fmt.Fprintln(cmd.OutOrStdout(), m.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"),
		"PostgreSQL connection string (defaults to DATABASE_URL, then the DB_* settings)")
	rootCmd.AddCommand(upCmd, downCmd, listCmd)
}

// open connects with --dsn, or builds the DSN from the service configuration.
func open() (*sql.DB, *zap.Logger, error) {
	logger, err := logging.New(config.GetEnvironment(), "info")
	if err != nil {
		return nil, nil, err
	}
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		dsn = database.PostgresDSN(cfg)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
