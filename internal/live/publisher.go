// Package live broadcasts scoreboard snapshots to viewers.
//
// Publishing is best effort: a failing channel is logged and never fails the scoring
// action that produced the snapshot.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

// ErrPublish wraps every failure reported by a publishing channel.
var ErrPublish = errors.New("live publish failed")

// Publisher pushes a snapshot to one external channel.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snap match.Snapshot) error
}

// Broadcaster fans a snapshot out to every configured publisher and remembers the
// latest snapshot of each session for HTTP readers. The memory is per process: with
// several replicas the external channels are the shared view.
type Broadcaster struct {
	publishers []Publisher
	logger     zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]match.Snapshot
	lastID   string
}

func NewBroadcaster(logger zerolog.Logger, publishers ...Publisher) *Broadcaster {
	return &Broadcaster{
		publishers: publishers,
		logger:     logger.With().Str("module", "live").Str("component", "broadcaster").Logger(),
		sessions:   make(map[string]match.Snapshot),
	}
}

// Publish records snap as its session's latest snapshot and sends it to every publisher.
// The returned error joins all channel failures; callers treat it as advisory.
func (b *Broadcaster) Publish(ctx context.Context, snap match.Snapshot) error {
	b.mu.Lock()
	b.sessions[snap.SessionID] = snap
	b.lastID = snap.SessionID
	b.mu.Unlock()

	var errs []error
	for _, p := range b.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			b.logger.Warn().Err(err).
				Str("publisher", p.Name()).
				Str("session_id", snap.SessionID).
				Msg("failed to publish live snapshot")
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPublish, p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Latest returns the last snapshot published for sessionID. An empty sessionID
// means the most recently published session.
func (b *Broadcaster) Latest(sessionID string) (match.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if sessionID == "" {
		if b.lastID == "" {
			return match.Snapshot{}, false
		}
		sessionID = b.lastID
	}
	snap, ok := b.sessions[sessionID]
	return snap, ok
}

// Forget drops what is remembered for sessionID.
func (b *Broadcaster) Forget(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	if b.lastID == sessionID {
		b.lastID = ""
	}
}

// LogPublisher writes snapshots to the service log. Useful locally and as a fallback
// when no Firebase project is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("module", "live").Str("component", "log_publisher").Logger()}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(_ context.Context, snap match.Snapshot) error {
	p.logger.Info().
		Str("session_id", snap.SessionID).
		Str("team_a", snap.TeamA).
		Str("team_b", snap.TeamB).
		Int("score_a", snap.ScoreA).
		Int("score_b", snap.ScoreB).
		Int("sets_a", snap.SetsWonA).
		Int("sets_b", snap.SetsWonB).
		Int("set", snap.CurrentSet).
		Str("serve", snap.Serving).
		Str("winner", snap.Winner).
		Msg("live snapshot")
	return nil
}
