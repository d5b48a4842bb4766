package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/city-intranet-api/pkg/config"
	"github.com/noah-isme/city-intranet-api/pkg/database"
)

var (
	migrateRollback bool

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			direction := database.MigrateUp
			if migrateRollback {
				direction = database.MigrateDown
			}
			return runMigration(cmd.Context(), direction)
		},
	}

	migrateStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd.Context(), database.MigrateStatus)
		},
	}
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigration(ctx context.Context, direction database.MigrateDirection) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return database.Migrate(ctx, db.DB, direction)
}
