package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

type matchRepository struct{ db *sql.DB }

func NewMatchRepository(db *sql.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *matchRepository) Create(ctx context.Context, m model.MatchRecord) (model.MatchRecord, error) {
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now().UTC()
	}
	row := getQ(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO matches (match_key, team_a, team_b, winner, played_at)
		 VALUES (NULLIF(?, ''), ?, ?, ?, ?)
		 RETURNING id, team_a, team_b, winner, played_at`,
		m.MatchKey, m.TeamA, m.TeamB, m.Winner, m.PlayedAt.UTC().Format(time.RFC3339Nano),
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.MatchRecord{}, mapError(err)
	}
	out.MatchKey = m.MatchKey
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.MatchRecord, error) {
	row := getQ(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, team_a, team_b, winner, played_at FROM matches WHERE id = ?`, id)
	out, err := scanMatch(row)
	if err != nil {
		return model.MatchRecord{}, mapError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByKey(ctx context.Context, key string) (model.MatchRecord, error) {
	if key == "" {
		return model.MatchRecord{}, repository.ErrNotFound
	}
	row := getQ(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, team_a, team_b, winner, played_at FROM matches WHERE match_key = ?`, key)
	out, err := scanMatch(row)
	if err != nil {
		return model.MatchRecord{}, mapError(err)
	}
	out.MatchKey = key
	return out, nil
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.MatchRecord], error) {
	p = p.Sanitize()
	exec := getQ(ctx, r.db)

	res := repository.PageResult[model.MatchRecord]{Items: make([]model.MatchRecord, 0, p.Limit)}
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&res.Total); err != nil {
		return repository.PageResult[model.MatchRecord]{}, mapError(err)
	}
	rows, err := exec.QueryContext(ctx,
		`SELECT id, team_a, team_b, winner, played_at
		 FROM matches
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.MatchRecord]{}, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanMatch(rows)
		if err != nil {
			return repository.PageResult[model.MatchRecord]{}, mapError(err)
		}
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.MatchRecord]{}, mapError(err)
	}
	return res, nil
}

func scanMatch(row rowScanner) (model.MatchRecord, error) {
	var (
		out      model.MatchRecord
		playedAt string
	)
	if err := row.Scan(&out.ID, &out.TeamA, &out.TeamB, &out.Winner, &playedAt); err != nil {
		return model.MatchRecord{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, playedAt)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("match %d: bad played_at %q: %w", out.ID, playedAt, err)
	}
	out.PlayedAt = t.UTC()
	return out, nil
}

var _ repository.MatchRepository = (*matchRepository)(nil)
