package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

func (r *playerRepository) Accumulate(ctx context.Context, name, team string, l model.StatLine) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	_, err := getQ(ctx, r.pool).Exec(ctx,
		`INSERT INTO players (name, team, matches, points, aces, attacks, blocks, digs, errors, mvp)
		 VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, 0)
		 ON CONFLICT (name) DO UPDATE SET
			team    = EXCLUDED.team,
			matches = players.matches + 1,
			points  = players.points + EXCLUDED.points,
			aces    = players.aces + EXCLUDED.aces,
			attacks = players.attacks + EXCLUDED.attacks,
			blocks  = players.blocks + EXCLUDED.blocks,
			digs    = players.digs + EXCLUDED.digs,
			errors  = players.errors + EXCLUDED.errors`,
		name, team, l.Points, l.Aces, l.Attacks, l.Blocks, l.Digs, l.Errors,
	)
	return repository.MapPgError(err)
}

func (r *playerRepository) IncrementMVP(ctx context.Context, name string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `UPDATE players SET mvp = mvp + 1 WHERE name = $1`, name)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *playerRepository) GetByName(ctx context.Context, name string) (model.PlayerCareer, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerCareer{}, err
	}
	var out model.PlayerCareer
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT name, team, matches, points, aces, attacks, blocks, digs, errors, mvp
		 FROM players WHERE name = $1`, name,
	).Scan(&out.Name, &out.Team, &out.Matches, &out.Points, &out.Aces, &out.Attacks, &out.Blocks, &out.Digs, &out.Errors, &out.MVPCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerCareer{}, repository.ErrNotFound
		}
		return model.PlayerCareer{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT name, points, mvp FROM players ORDER BY points DESC, name ASC LIMIT $1`,
		repository.SanitizeLimit(limit),
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.LeaderboardEntry, 0, 16)
	for rows.Next() {
		var it model.LeaderboardEntry
		if err := rows.Scan(&it.Name, &it.Points, &it.MVPCount); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return res, nil
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
