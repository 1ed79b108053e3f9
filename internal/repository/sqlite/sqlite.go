// Package sqlite implements the repository contracts on an embedded SQLite file,
// for single-node deployments and tests that need a real database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/migrations"
)

// Open opens (creating if needed) the database file at path and applies migrations.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer at a time; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if err := migrations.Up(ctx, db, goose.DialectSQLite3, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info().Str("path", path).Msg("Successfully opened SQLite database")
	return db, nil
}

// q is implemented by both *sql.DB and *sql.Tx.
type q interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func getQ(ctx context.Context, db *sql.DB) q {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

type txManager struct{ db *sql.DB }

func NewTxManager(db *sql.DB) repository.TxManager { return &txManager{db: db} }

// WithinTx runs fn in a transaction. A nested call joins the outer transaction.
func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

type pinger struct{ db *sql.DB }

func NewPinger(db *sql.DB) repository.Pinger { return &pinger{db: db} }

func (p *pinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// mapError translates SQLite constraint failures to repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var sqErr *msqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return repository.ErrAlreadyExists
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return repository.ErrConflict
		}
	}
	return err
}

var (
	_ repository.TxManager = (*txManager)(nil)
	_ repository.Pinger    = (*pinger)(nil)
)
