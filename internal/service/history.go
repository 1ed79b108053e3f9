package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

const recentMatchesInProfile = 10

type historyService struct {
	matches repository.MatchRepository
	stats   repository.StatsRepository
	players repository.PlayerRepository
	log     zerolog.Logger
}

func NewHistoryService(matches repository.MatchRepository, stats repository.StatsRepository, players repository.PlayerRepository, logger zerolog.Logger) HistoryService {
	l := logger.With().Str("module", "service").Str("component", "history").Logger()
	return &historyService{matches: matches, stats: stats, players: players, log: l}
}

func (s *historyService) GetHistory(ctx context.Context, page repository.Page) (repository.PageResult[model.MatchRecord], error) {
	p := normalizePage(page)
	res, err := s.matches.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list matches failed")
		return repository.PageResult[model.MatchRecord]{}, err
	}
	return res, nil
}

func (s *historyService) GetMatch(ctx context.Context, id int64) (model.MatchDetail, error) {
	if id <= 0 {
		return model.MatchDetail{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	rec, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return model.MatchDetail{}, err
	}
	rows, err := s.stats.ListByMatch(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("match_id", id).Msg("list match stats failed")
		return model.MatchDetail{}, err
	}
	return model.MatchDetail{Match: rec, Stats: rows}, nil
}

func (s *historyService) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 0 {
		return nil, newInvalidInput([]FieldError{{Field: "limit", Message: "must be >= 0"}})
	}
	entries, err := s.players.Leaderboard(ctx, repository.SanitizeLimit(limit))
	if err != nil {
		s.log.Error().Err(err).Int("limit", limit).Msg("leaderboard failed")
		return nil, err
	}
	return entries, nil
}

func (s *historyService) GetPlayerProfile(ctx context.Context, name string) (model.PlayerProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.PlayerProfile{}, newInvalidInput([]FieldError{{Field: "name", Message: "must not be empty"}})
	}
	career, err := s.players.GetByName(ctx, name)
	if err != nil {
		return model.PlayerProfile{}, err
	}
	recent, err := s.stats.ListByPlayer(ctx, name, recentMatchesInProfile)
	if err != nil {
		s.log.Error().Err(err).Str("player", name).Msg("list player stats failed")
		return model.PlayerProfile{}, err
	}
	return model.PlayerProfile{Career: career, Recent: recent}, nil
}
