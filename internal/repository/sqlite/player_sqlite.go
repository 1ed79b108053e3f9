package sqlite

import (
	"context"
	"database/sql"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

type playerRepository struct{ db *sql.DB }

func NewPlayerRepository(db *sql.DB) repository.PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Accumulate(ctx context.Context, name, team string, l model.StatLine) error {
	_, err := getQ(ctx, r.db).ExecContext(ctx,
		`INSERT INTO players (name, team, matches, points, aces, attacks, blocks, digs, errors, mvp)
		 VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, 0)
		 ON CONFLICT (name) DO UPDATE SET
			team    = excluded.team,
			matches = players.matches + 1,
			points  = players.points + excluded.points,
			aces    = players.aces + excluded.aces,
			attacks = players.attacks + excluded.attacks,
			blocks  = players.blocks + excluded.blocks,
			digs    = players.digs + excluded.digs,
			errors  = players.errors + excluded.errors`,
		name, team, l.Points, l.Aces, l.Attacks, l.Blocks, l.Digs, l.Errors,
	)
	return mapError(err)
}

func (r *playerRepository) IncrementMVP(ctx context.Context, name string) error {
	res, err := getQ(ctx, r.db).ExecContext(ctx, `UPDATE players SET mvp = mvp + 1 WHERE name = ?`, name)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *playerRepository) GetByName(ctx context.Context, name string) (model.PlayerCareer, error) {
	var out model.PlayerCareer
	err := getQ(ctx, r.db).QueryRowContext(ctx,
		`SELECT name, team, matches, points, aces, attacks, blocks, digs, errors, mvp
		 FROM players WHERE name = ?`, name,
	).Scan(&out.Name, &out.Team, &out.Matches, &out.Points, &out.Aces, &out.Attacks, &out.Blocks, &out.Digs, &out.Errors, &out.MVPCount)
	if err != nil {
		return model.PlayerCareer{}, mapError(err)
	}
	return out, nil
}

func (r *playerRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := getQ(ctx, r.db).QueryContext(ctx,
		`SELECT name, points, mvp FROM players ORDER BY points DESC, name ASC LIMIT ?`,
		repository.SanitizeLimit(limit),
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	res := make([]model.LeaderboardEntry, 0, 16)
	for rows.Next() {
		var it model.LeaderboardEntry
		if err := rows.Scan(&it.Name, &it.Points, &it.MVPCount); err != nil {
			return nil, mapError(err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
