package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/imagecat/shared/db"
	"github.com/rs/zerolog/log"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
// Each migration should be idempotent and safe to run multiple times
var migrations = []migration{
	{
		version: 1,
		name:    "create_images_table",
		up: `
			CREATE TABLE IF NOT EXISTS images (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				size INTEGER NOT NULL,
				width INTEGER NOT NULL,
				height INTEGER NOT NULL,
				type TEXT NOT NULL,
				date_added TEXT NOT NULL,
				file_path TEXT NOT NULL
			);
		`,
	},
	{
		version: 2,
		name:    "index_images_file_path",
		up: `
			CREATE INDEX IF NOT EXISTS idx_images_file_path
			ON images(file_path);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(sqlDB *sql.DB) error {
	ctx := context.Background()

	_, err := sqlDB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = sqlDB.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue // Already applied
		}

		err := db.RunInTransaction(ctx, sqlDB, func(txCtx context.Context) error {
			executor := db.GetExecutor(txCtx, sqlDB)

			if _, err := executor.ExecContext(txCtx, m.up); err != nil {
				return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
			}

			_, err := executor.ExecContext(txCtx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.version,
				m.name,
			)
			if err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info().Int("version", m.version).Str("name", m.name).Msg("Applied migration")
	}

	return nil
}
