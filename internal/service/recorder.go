package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

type matchRecorder struct {
	matches repository.MatchRepository
	stats   repository.StatsRepository
	players repository.PlayerRepository
	tx      repository.TxManager
	now     func() time.Time
	log     zerolog.Logger
}

func NewMatchRecorder(matches repository.MatchRepository, stats repository.StatsRepository, players repository.PlayerRepository, tx repository.TxManager, logger zerolog.Logger) MatchRecorder {
	l := logger.With().Str("module", "service").Str("component", "recorder").Logger()
	return &matchRecorder{matches: matches, stats: stats, players: players, tx: tx, now: time.Now, log: l}
}

// Record writes the match, one stat row and one career update per player in roster
// order, then credits the MVP. Any failure rolls back everything and wraps ErrPersistence.
// A match already stored under key is not written again; its ID is returned.
func (r *matchRecorder) Record(ctx context.Context, key string, cfg match.Config, st match.State) (int64, error) {
	mvp, hasMVP := match.SelectMVP(st.Order, st.Stats)

	var (
		matchID int64
		already bool
	)
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if key != "" {
			prev, err := r.matches.GetByKey(ctx, key)
			switch {
			case err == nil:
				matchID, already = prev.ID, true
				return nil
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("look up match %s: %w", key, err)
			}
		}
		rec, err := r.matches.Create(ctx, model.MatchRecord{
			MatchKey: key,
			TeamA:    cfg.TeamA,
			TeamB:    cfg.TeamB,
			Winner:   st.Winner,
			PlayedAt: r.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		for _, player := range st.Order {
			team := cfg.TeamOf(player)
			line := st.Stats[player]
			if _, err := r.stats.Create(ctx, model.MatchStatRow{MatchID: rec.ID, Player: player, Team: team, StatLine: line}); err != nil {
				return fmt.Errorf("create stats for %s: %w", player, err)
			}
			if err := r.players.Accumulate(ctx, player, team, line); err != nil {
				return fmt.Errorf("accumulate career for %s: %w", player, err)
			}
		}
		if hasMVP {
			if err := r.players.IncrementMVP(ctx, mvp); err != nil {
				return fmt.Errorf("credit mvp %s: %w", mvp, err)
			}
		}
		matchID = rec.ID
		return nil
	})
	if err != nil && key != "" && errors.Is(err, repository.ErrAlreadyExists) {
		// stored concurrently under the same key
		if prev, gerr := r.matches.GetByKey(ctx, key); gerr == nil {
			matchID, already, err = prev.ID, true, nil
		}
	}
	if err != nil {
		r.log.Error().Err(err).Str("team_a", cfg.TeamA).Str("team_b", cfg.TeamB).Msg("record match failed")
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if already {
		r.log.Warn().Int64("match_id", matchID).Str("match_key", key).Msg("match already recorded; skipping")
		return matchID, nil
	}

	r.log.Info().Int64("match_id", matchID).Str("winner", st.Winner).Str("mvp", mvp).Msg("match recorded")
	return matchID, nil
}
