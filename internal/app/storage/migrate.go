package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"skillswap/internal/pkg/logx"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

// runMigrations applies the embedded migrations for dialect to db.
func runMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := migrationsDir(dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Local storage migrations applied", "dialect", dir, "applied", len(results))
	return nil
}
