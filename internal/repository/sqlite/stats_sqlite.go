package sqlite

import (
	"context"
	"database/sql"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

const statColumns = `id, match_id, player, team, points, aces, attacks, blocks, digs, errors`

type statsRepository struct{ db *sql.DB }

func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Create(ctx context.Context, s model.MatchStatRow) (model.MatchStatRow, error) {
	row := getQ(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO match_stats (match_id, player, team, points, aces, attacks, blocks, digs, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+statColumns,
		s.MatchID, s.Player, s.Team, s.Points, s.Aces, s.Attacks, s.Blocks, s.Digs, s.Errors,
	)
	var out model.MatchStatRow
	if err := row.Scan(statDest(&out)...); err != nil {
		return model.MatchStatRow{}, mapError(err)
	}
	return out, nil
}

func (r *statsRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.MatchStatRow, error) {
	return r.list(ctx, `SELECT `+statColumns+` FROM match_stats WHERE match_id = ? ORDER BY id`, matchID)
}

func (r *statsRepository) ListByPlayer(ctx context.Context, player string, limit int) ([]model.MatchStatRow, error) {
	return r.list(ctx,
		`SELECT `+statColumns+` FROM match_stats WHERE player = ? ORDER BY match_id DESC LIMIT ?`,
		player, repository.SanitizeLimit(limit))
}

func (r *statsRepository) list(ctx context.Context, query string, args ...any) ([]model.MatchStatRow, error) {
	rows, err := getQ(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	res := make([]model.MatchStatRow, 0, 12)
	for rows.Next() {
		var it model.MatchStatRow
		if err := rows.Scan(statDest(&it)...); err != nil {
			return nil, mapError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

func statDest(s *model.MatchStatRow) []any {
	return []any{&s.ID, &s.MatchID, &s.Player, &s.Team, &s.Points, &s.Aces, &s.Attacks, &s.Blocks, &s.Digs, &s.Errors}
}

var _ repository.StatsRepository = (*statsRepository)(nil)
