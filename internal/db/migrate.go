package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jjudge-oj/userapi/config"
)

// DefaultMigrationsDir is relative to the repository root.
const DefaultMigrationsDir = "internal/db/migrations"

// NewMigrator opens a migrator over the SQL files in dir.
func NewMigrator(cfg config.DatabaseConfig, dir string) (*migrate.Migrate, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	migrator, err := migrate.New("file://"+filepath.ToSlash(abs), PostgresURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}

// MigrateUp applies every pending up migration. No pending change is not an error.
func MigrateUp(cfg config.DatabaseConfig, dir string) error {
	migrator, err := NewMigrator(cfg, dir)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations, or all of them when steps < 1.
func MigrateDown(cfg config.DatabaseConfig, dir string, steps int) error {
	migrator, err := NewMigrator(cfg, dir)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if steps > 0 {
		err = migrator.Steps(-steps)
	} else {
		err = migrator.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	return nil
}
