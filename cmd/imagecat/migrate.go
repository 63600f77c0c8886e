package main

import (
	"fmt"

	"github.com/dfryer1193/imagecat/shared/db/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or upgrades the catalog schema and exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.DBPath))
		if err := database.Connect(); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", cfg.DBPath, err)
		}
		if err := database.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}

		log.Info().Str("db_path", cfg.DBPath).Msg("Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
