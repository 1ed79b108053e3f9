package repository

import (
	"context"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution. Repositories called with the ctx handed
// to fn take part in the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// MatchRepository stores concluded matches.
type MatchRepository interface {
	// Create inserts the record. A zero PlayedAt is replaced by the current UTC time.
	Create(ctx context.Context, m model.MatchRecord) (model.MatchRecord, error)
	GetByID(ctx context.Context, id int64) (model.MatchRecord, error)
	// GetByKey finds the record stored under a match key. A second Create with the
	// same non-empty key fails with ErrAlreadyExists.
	GetByKey(ctx context.Context, key string) (model.MatchRecord, error)
	// List returns matches most recent first.
	List(ctx context.Context, p Page) (PageResult[model.MatchRecord], error)
}

// StatsRepository stores the frozen per-match stat rows.
type StatsRepository interface {
	Create(ctx context.Context, row model.MatchStatRow) (model.MatchStatRow, error)
	ListByMatch(ctx context.Context, matchID int64) ([]model.MatchStatRow, error)
	// ListByPlayer returns the player's rows, most recent match first.
	ListByPlayer(ctx context.Context, player string, limit int) ([]model.MatchStatRow, error)
}

// PlayerRepository maintains career totals.
type PlayerRepository interface {
	// Accumulate adds one match worth of counters to the player's career, creating the
	// player on first sight. The stored team becomes team.
	Accumulate(ctx context.Context, name, team string, line model.StatLine) error
	// IncrementMVP returns ErrNotFound for an unknown player.
	IncrementMVP(ctx context.Context, name string) error
	GetByName(ctx context.Context, name string) (model.PlayerCareer, error)
	// Leaderboard orders by points descending, then name.
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}
