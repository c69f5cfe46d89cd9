package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"finch/internal/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func (db *DB) migrationProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}

	dialect := goose.DialectSQLite3
	if db.dialect == Postgres {
		dialect = goose.DialectPostgres
	}

	return goose.NewProvider(dialect, db.conn, fsys)
}

// Migrate applies all pending schema migrations. Running it against an up to date schema is a
// no-op.
func (db *DB) Migrate(ctx context.Context) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return errors.New(errors.StoreCustom, "failed to load migrations", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return classify(fmt.Errorf("failed to run migrations: %w", err), errors.StoreExec)
	}

	for _, r := range results {
		db.logger.Info("Applied migration",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return classify(err, errors.StoreQuery)
	}

	db.logger.Debug("Database schema is up to date", "version", version)
	return nil
}

// SchemaVersion returns the latest applied migration version
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return 0, errors.New(errors.StoreCustom, "failed to load migrations", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, classify(err, errors.StoreQuery)
	}
	return version, nil
}
