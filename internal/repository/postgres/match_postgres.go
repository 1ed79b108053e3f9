package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

func (r *matchRepository) Create(ctx context.Context, m model.MatchRecord) (model.MatchRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchRecord{}, err
	}
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now().UTC()
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO matches (match_key, team_a, team_b, winner, played_at)
		 VALUES (NULLIF($1, ''), $2, $3, $4, $5)
		 RETURNING id, team_a, team_b, winner, played_at`,
		m.MatchKey, m.TeamA, m.TeamB, m.Winner, m.PlayedAt,
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.MatchRecord{}, repository.MapPgError(err)
	}
	out.MatchKey = m.MatchKey
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.MatchRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchRecord{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT id, team_a, team_b, winner, played_at FROM matches WHERE id = $1`, id,
	)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MatchRecord{}, repository.ErrNotFound
		}
		return model.MatchRecord{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByKey(ctx context.Context, key string) (model.MatchRecord, error) {
	if key == "" {
		return model.MatchRecord{}, repository.ErrNotFound
	}
	if err := ensurePool(r.pool); err != nil {
		return model.MatchRecord{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT id, team_a, team_b, winner, played_at FROM matches WHERE match_key = $1`, key,
	)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MatchRecord{}, repository.ErrNotFound
		}
		return model.MatchRecord{}, repository.MapPgError(err)
	}
	out.MatchKey = key
	return out, nil
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.MatchRecord], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.MatchRecord]{}, err
	}
	p = p.Sanitize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT id, team_a, team_b, winner, played_at, COUNT(*) OVER() AS total
		 FROM matches
		 ORDER BY id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.MatchRecord]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.MatchRecord]{Items: make([]model.MatchRecord, 0, p.Limit)}
	for rows.Next() {
		var it model.MatchRecord
		if err := rows.Scan(&it.ID, &it.TeamA, &it.TeamB, &it.Winner, &it.PlayedAt, &res.Total); err != nil {
			return repository.PageResult[model.MatchRecord]{}, repository.MapPgError(err)
		}
		it.PlayedAt = it.PlayedAt.UTC()
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.MatchRecord]{}, repository.MapPgError(err)
	}
	// an offset past the end yields no rows and therefore no window total
	if len(res.Items) == 0 && p.Offset > 0 {
		if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&res.Total); err != nil {
			return repository.PageResult[model.MatchRecord]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

func scanMatch(row pgx.Row) (model.MatchRecord, error) {
	var out model.MatchRecord
	if err := row.Scan(&out.ID, &out.TeamA, &out.TeamB, &out.Winner, &out.PlayedAt); err != nil {
		return model.MatchRecord{}, err
	}
	out.PlayedAt = out.PlayedAt.UTC()
	return out, nil
}

var _ repository.MatchRepository = (*matchRepository)(nil)
