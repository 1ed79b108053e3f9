// Package migrations embeds the SQL schema for every supported dialect and applies
// it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

func dir(dialect goose.Dialect) (string, error) {
	switch dialect {
	case goose.DialectPostgres:
		return "postgres", nil
	case goose.DialectSQLite3:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, logger zerolog.Logger) error {
	name, err := dir(dialect)
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(files, name)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", name, err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info().
			Str("component", "migrations").
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("migration applied")
	}
	return nil
}
