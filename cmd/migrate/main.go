package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/storage/db"
)

type migrateOptions struct {
	DatabaseURL string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the jobtracker database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")

	cmd.AddCommand(
		newStepCommand(opts, "up", "Apply all pending migrations", db.RunMigrations),
		newStepCommand(opts, "status", "Print applied and pending migrations", db.MigrationStatus),
		newStepCommand(opts, "down", "Roll back the most recent migration", db.RollbackLast),
	)
	return cmd
}

func newStepCommand(opts *migrateOptions, use, short string, step func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sqlDB, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return step(ctx, sqlDB)
		},
	}
}

func (o *migrateOptions) connect(ctx context.Context) (*sql.DB, error) {
	url := strings.TrimSpace(o.DatabaseURL)
	if url == "" {
		url = strings.TrimSpace(config.Load().DatabaseURL)
	}
	if url == "" {
		return nil, errors.New("database url required: set DATABASE_URL or --database-url")
	}
	return db.Connect(ctx, url, db.OptionsFromEnv(db.DefaultMigrateOptions()))
}
