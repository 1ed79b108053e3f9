package service

import (
	"strings"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	return p.Sanitize()
}

// configureFields checks the request shape before the state machine sees it.
func configureFields(in ConfigureInput) (match.Type, []FieldError) {
	var ferrs []FieldError
	t, ok := match.ParseType(in.MatchType)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "match_type", Message: "must be one of single|set"})
	}
	if t == match.MultiSet {
		if in.SetsToPlay != nil && (*in.SetsToPlay < 1 || *in.SetsToPlay%2 == 0) {
			ferrs = append(ferrs, FieldError{Field: "sets_to_play", Message: "must be a positive odd number"})
		}
		if in.PointsPerSet != nil && *in.PointsPerSet < 1 {
			ferrs = append(ferrs, FieldError{Field: "points_per_set", Message: "must be > 0"})
		}
	}
	return t, ferrs
}

func teamFields(teamA, teamB string) []FieldError {
	var ferrs []FieldError
	a, b := strings.TrimSpace(teamA), strings.TrimSpace(teamB)
	if a == "" {
		ferrs = append(ferrs, FieldError{Field: "team_a", Message: "must not be empty"})
	}
	if b == "" {
		ferrs = append(ferrs, FieldError{Field: "team_b", Message: "must not be empty"})
	}
	if a != "" && b != "" && strings.EqualFold(a, b) {
		ferrs = append(ferrs, FieldError{Field: "teams", Message: "team names must differ"})
	}
	return ferrs
}

func rosterFields(rosterA, rosterB []string) []FieldError {
	var ferrs []FieldError
	if len(rosterA) == 0 {
		ferrs = append(ferrs, FieldError{Field: "roster_a", Message: "must list at least one player"})
	}
	if len(rosterB) == 0 {
		ferrs = append(ferrs, FieldError{Field: "roster_b", Message: "must list at least one player"})
	}
	return ferrs
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
