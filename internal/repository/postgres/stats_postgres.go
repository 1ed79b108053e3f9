package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

const statColumns = `id, match_id, player, team, points, aces, attacks, blocks, digs, errors`

type statsRepository struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Create(ctx context.Context, s model.MatchStatRow) (model.MatchStatRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchStatRow{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO match_stats (match_id, player, team, points, aces, attacks, blocks, digs, errors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+statColumns,
		s.MatchID, s.Player, s.Team, s.Points, s.Aces, s.Attacks, s.Blocks, s.Digs, s.Errors,
	)
	var out model.MatchStatRow
	if err := row.Scan(statDest(&out)...); err != nil {
		return model.MatchStatRow{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *statsRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.MatchStatRow, error) {
	return r.list(ctx,
		`SELECT `+statColumns+` FROM match_stats WHERE match_id = $1 ORDER BY id`, matchID)
}

func (r *statsRepository) ListByPlayer(ctx context.Context, player string, limit int) ([]model.MatchStatRow, error) {
	return r.list(ctx,
		`SELECT `+statColumns+` FROM match_stats WHERE player = $1 ORDER BY match_id DESC LIMIT $2`,
		player, repository.SanitizeLimit(limit))
}

func (r *statsRepository) list(ctx context.Context, sql string, args ...any) ([]model.MatchStatRow, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.MatchStatRow, 0, 12)
	for rows.Next() {
		var it model.MatchStatRow
		if err := rows.Scan(statDest(&it)...); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

func statDest(s *model.MatchStatRow) []any {
	return []any{&s.ID, &s.MatchID, &s.Player, &s.Team, &s.Points, &s.Aces, &s.Attacks, &s.Blocks, &s.Digs, &s.Errors}
}

var _ repository.StatsRepository = (*statsRepository)(nil)
