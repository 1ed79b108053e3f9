package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

type scoreboardService struct {
	sessions SessionManager
	recorder MatchRecorder
	live     Broadcaster
	log      zerolog.Logger
}

func NewScoreboardService(sessions SessionManager, recorder MatchRecorder, live Broadcaster, logger zerolog.Logger) ScoreboardService {
	l := logger.With().Str("module", "service").Str("component", "scoreboard").Logger()
	return &scoreboardService{sessions: sessions, recorder: recorder, live: live, log: l}
}

func (s *scoreboardService) ConfigureMatch(ctx context.Context, token string, in ConfigureInput) (string, error) {
	t, ferrs := configureFields(in)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("configure validation failed")
		return "", err
	}
	sets := intOr(in.SetsToPlay, match.DefaultSetsToPlay)
	points := intOr(in.PointsPerSet, match.DefaultPointsPerSet)

	token, err := s.sessions.Start(ctx, token, func(sess *match.Session) error {
		return sess.Configure(t, sets, points)
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("session_id", token).Str("match_type", string(t)).Int("sets", sets).Int("points", points).Msg("match configured")
	return token, nil
}

func (s *scoreboardService) SetTeams(ctx context.Context, token, teamA, teamB string) (MatchView, error) {
	if err := newInvalidInput(teamFields(teamA, teamB)); err != nil {
		return MatchView{}, err
	}
	var view MatchView
	err := s.sessions.Update(ctx, token, func(sess *match.Session) error {
		if err := sess.SetTeams(teamA, teamB); err != nil {
			return err
		}
		view = viewOf(sess)
		return nil
	})
	if err != nil {
		return MatchView{}, noSession(err)
	}
	return view, nil
}

func (s *scoreboardService) SetRosters(ctx context.Context, token string, rosterA, rosterB []string) (MatchView, error) {
	if err := newInvalidInput(rosterFields(rosterA, rosterB)); err != nil {
		return MatchView{}, err
	}
	var view MatchView
	err := s.sessions.Update(ctx, token, func(sess *match.Session) error {
		if err := sess.SetRosters(rosterA, rosterB); err != nil {
			return err
		}
		view = viewOf(sess)
		return nil
	})
	if err != nil {
		return MatchView{}, noSession(err)
	}
	s.log.Info().Str("session_id", token).Int("players", len(view.Config.RosterA)+len(view.Config.RosterB)).Msg("match started")
	return view, nil
}

// ApplyAction records one scorer event. A concluded match is stored before the session
// is saved; if storing or saving fails the session keeps its pre-action state so the
// final action can be resubmitted. Storing is keyed by the session's match key, so a
// resubmission after a failed save finds the stored match instead of writing it again.
// The snapshot is broadcast only after the session is saved.
func (s *scoreboardService) ApplyAction(ctx context.Context, token, team, player, action string) (ActionResult, error) {
	a, ok := match.ParseAction(action)
	if !ok {
		a = match.Action(action)
	}
	side, ok := match.ParseTeam(team)
	if !ok {
		side = match.Team(strings.TrimSpace(team))
	}
	player = strings.TrimSpace(player)

	var res ActionResult
	err := s.sessions.Update(ctx, token, func(sess *match.Session) error {
		out, err := sess.Apply(side, player, a)
		if err != nil {
			return err
		}
		if out.Concluded {
			id, err := s.recorder.Record(ctx, sess.MatchKey, sess.Config, sess.State)
			if err != nil {
				return err
			}
			res.MatchID = id
		}
		res.Outcome = out
		res.Match = viewOf(sess)
		return nil
	}, func(*match.Session) {
		// publish failures are logged by the broadcaster and never fail the action
		_ = s.live.Publish(ctx, res.Outcome.Snapshot)
	})
	if err != nil {
		err = noSession(err)
		if errors.Is(err, ErrPersistence) {
			s.log.Error().Err(err).Str("session_id", token).Msg("concluded match not stored; session left unchanged")
		} else {
			s.log.Debug().Err(err).Str("session_id", token).Str("action", action).Msg("action rejected")
		}
		return ActionResult{}, err
	}

	if res.Outcome.Concluded {
		s.log.Info().Str("session_id", token).Str("winner", res.Outcome.Winner).Int64("match_id", res.MatchID).Msg("match concluded")
	}
	return res, nil
}

func (s *scoreboardService) CurrentMatch(ctx context.Context, token string) (MatchView, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return MatchView{}, err
	}
	return viewOf(sess), nil
}

func (s *scoreboardService) ResetSession(ctx context.Context, token string) error {
	if err := s.sessions.Discard(ctx, token); err != nil {
		return err
	}
	s.live.Forget(token)
	s.log.Info().Str("session_id", token).Msg("session reset")
	return nil
}

func (s *scoreboardService) LiveSnapshot(_ context.Context, sessionID string) (match.Snapshot, error) {
	snap, ok := s.live.Latest(strings.TrimSpace(sessionID))
	if !ok {
		return match.Snapshot{}, ErrNoLiveMatch
	}
	return snap, nil
}

// noSession turns a missing session on a mutating call into an invalid-state error:
// the scorer has skipped configuration rather than asked for a missing resource.
func noSession(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("%w: no match configured for this session", match.ErrInvalidState)
	}
	return err
}

func viewOf(sess *match.Session) MatchView {
	v := MatchView{SessionID: sess.ID, Phase: sess.Phase, Config: sess.Config}
	if sess.Phase == match.PhaseInProgress || sess.Phase == match.PhaseConcluded {
		st := sess.State
		snap := sess.Snapshot()
		v.State = &st
		v.Snapshot = &snap
	}
	return v
}
