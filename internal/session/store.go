// Package session keeps match sessions server-side, keyed by an opaque token, and
// serializes every mutation of a single session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session not found")

// Store persists sessions between requests. Load always returns a private copy,
// so a caller may mutate it freely and decide later whether to Save it.
type Store interface {
	Load(ctx context.Context, id string) (*match.Session, error)
	Save(ctx context.Context, s *match.Session) error
	Delete(ctx context.Context, id string) error
}

// NewToken returns a fresh session token.
func NewToken() string { return uuid.NewString() }

// ValidToken reports whether s looks like a token issued by NewToken.
func ValidToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func encode(s *match.Session) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return b, nil
}

func decode(id string, b []byte) (*match.Session, error) {
	var s match.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}
