// Package service holds use-case orchestration between the match state machine, the
// session store, the repositories and the live broadcaster.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

var (
	// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
	// Field-level details are retrieved via FieldErrors(err).
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence marks a failed attempt to store a concluded match.
	ErrPersistence = errors.New("failed to persist match")
	// ErrNoLiveMatch is returned when nothing has been broadcast yet.
	ErrNoLiveMatch = errors.New("no live match")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// InvalidField reports a single invalid request field, e.g. a malformed path parameter.
func InvalidField(field, message string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: message}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// ConfigureInput carries match rules from a client. Nil counts take the defaults.
type ConfigureInput struct {
	MatchType    string
	SetsToPlay   *int
	PointsPerSet *int
}

// MatchView is what a scorer sees of their session.
type MatchView struct {
	SessionID string          `json:"session_id"`
	Phase     match.Phase     `json:"phase"`
	Config    match.Config    `json:"config"`
	State     *match.State    `json:"state,omitempty"`
	Snapshot  *match.Snapshot `json:"snapshot,omitempty"`
}

// ActionResult is the reply to one scoring action.
type ActionResult struct {
	Outcome match.Outcome `json:"outcome"`
	// MatchID is set once the concluded match has been stored.
	MatchID int64     `json:"match_id,omitempty"`
	Match   MatchView `json:"match"`
}

// ScoreboardService drives a scorer's session from configuration to conclusion.
type ScoreboardService interface {
	// ConfigureMatch starts a fresh session and returns its token. A valid token from a
	// previous session is reused; anything else is replaced by a new one.
	ConfigureMatch(ctx context.Context, token string, in ConfigureInput) (string, error)
	SetTeams(ctx context.Context, token, teamA, teamB string) (MatchView, error)
	SetRosters(ctx context.Context, token string, rosterA, rosterB []string) (MatchView, error)
	ApplyAction(ctx context.Context, token, team, player, action string) (ActionResult, error)
	CurrentMatch(ctx context.Context, token string) (MatchView, error)
	ResetSession(ctx context.Context, token string) error
	// LiveSnapshot returns the latest broadcast of sessionID, or of the most recently
	// updated session when sessionID is empty.
	LiveSnapshot(ctx context.Context, sessionID string) (match.Snapshot, error)
}

// MatchRecorder stores a concluded match and updates careers in one unit of work.
// Recording twice under the same key stores the match once.
type MatchRecorder interface {
	Record(ctx context.Context, key string, cfg match.Config, st match.State) (int64, error)
}

// HistoryService serves the read side over stored matches and careers.
type HistoryService interface {
	GetHistory(ctx context.Context, page repository.Page) (repository.PageResult[model.MatchRecord], error)
	GetMatch(ctx context.Context, id int64) (model.MatchDetail, error)
	GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	GetPlayerProfile(ctx context.Context, name string) (model.PlayerProfile, error)
}

// ScorecardService renders a stored match for export.
type ScorecardService interface {
	Text(ctx context.Context, matchID int64) (string, error)
	Workbook(ctx context.Context, matchID int64) ([]byte, error)
}

// SessionManager is the slice of session.Manager the scoreboard needs.
type SessionManager interface {
	Start(ctx context.Context, token string, fn func(*match.Session) error) (string, error)
	Update(ctx context.Context, token string, fn func(*match.Session) error, onSaved ...func(*match.Session)) error
	Get(ctx context.Context, token string) (*match.Session, error)
	Discard(ctx context.Context, token string) error
}

// Broadcaster is the slice of live.Broadcaster the scoreboard needs.
type Broadcaster interface {
	Publish(ctx context.Context, snap match.Snapshot) error
	Latest(sessionID string) (match.Snapshot, bool)
	Forget(sessionID string)
}
