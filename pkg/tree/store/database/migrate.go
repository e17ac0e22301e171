package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/database/migrations"
)

const migrationsTable = "schema_migrations"

// MigrationStatus reports the schema version of a PostgreSQL database.
type MigrationStatus struct {
	Version uint `json:"version" yaml:"version"`
	Dirty   bool `json:"dirty" yaml:"dirty"`
	// Applied is false when no migration has ever run.
	Applied bool `json:"applied" yaml:"applied"`
}

// newMigrator opens a dedicated database/sql connection for golang-migrate.
// The caller closes both the migrator and the connection.
func newMigrator(ctx context.Context, dsn string) (*migrate.Migrate, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, db, nil
}

// runMigrations applies every pending migration. golang-migrate takes a
// PostgreSQL advisory lock, so concurrent instances do not race.
func runMigrations(ctx context.Context, dsn string) (*MigrationStatus, error) {
	logger.InfoCtx(ctx, "Running database migrations")

	m, db, err := newMigrator(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.InfoCtx(ctx, "No migrations to apply (database is up to date)")
	case err != nil:
		return nil, fmt.Errorf("migration failed: %w", err)
	default:
		logger.InfoCtx(ctx, "Migrations completed successfully")
	}

	status, err := versionOf(m)
	if err != nil {
		return nil, err
	}
	if status.Dirty {
		logger.WarnCtx(ctx, "Database schema is in dirty state - manual intervention may be required",
			"version", status.Version)
	} else if status.Applied {
		logger.InfoCtx(ctx, "Current schema version", "version", status.Version)
	}
	return status, nil
}

func versionOf(m *migrate.Migrate) (*MigrationStatus, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// RunMigrations applies pending migrations for cfg. SQLite databases are
// migrated by New and need no separate step.
func RunMigrations(ctx context.Context, cfg *Config) (*MigrationStatus, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Type != DatabaseTypePostgres {
		return nil, fmt.Errorf("migrations are only managed for postgres, got %s", cfg.Type)
	}
	return runMigrations(ctx, cfg.Postgres.DSN())
}

// MigrationVersion returns the current schema version without applying
// anything.
func MigrationVersion(ctx context.Context, cfg *Config) (*MigrationStatus, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Type != DatabaseTypePostgres {
		return nil, fmt.Errorf("migrations are only managed for postgres, got %s", cfg.Type)
	}

	m, db, err := newMigrator(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer m.Close()

	return versionOf(m)
}
