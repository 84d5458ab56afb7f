package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SscSPs/account_ledger/migrations"
)

// MigratePostgres applies all embedded postgres migrations.
// A temporary database/sql handle over the pgx stdlib driver is used and closed afterwards.
func MigratePostgres(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database connection for migrations: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("create postgres driver instance for migrations: %w", err)
	}
	return runMigrations(migrations.PostgresFS, "postgres", driver, logger)
}

// MigrateSQLite applies all embedded sqlite migrations to the database file at path.
func MigrateSQLite(path string, logger *slog.Logger) error {
	migrationDB, err := OpenSQLite(path)
	if err != nil {
		return err
	}

	driver, err := migratesqlite.WithInstance(migrationDB, &migratesqlite.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return fmt.Errorf("create sqlite driver instance for migrations: %w", err)
	}
	return runMigrations(migrations.SQLiteFS, "sqlite", driver, logger)
}

// runMigrations applies every "up" migration under dir and closes the migrate
// instance, which also closes the database handle behind driver.
func runMigrations(fsys fs.FS, dir string, driver migratedb.Driver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("open embedded %s migrations: %w", dir, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", dir, upErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.", slog.String("store", dir))
	} else {
		logger.Info("Database migrations applied successfully.", slog.String("store", dir))
	}
	return nil
}
