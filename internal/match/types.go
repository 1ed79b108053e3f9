// Package match holds the live scoring state machine: match configuration, rosters,
// rally scoring, set and match win detection, and MVP ranking.
//
// The package performs no I/O. Callers persist and broadcast based on the Outcome
// returned by Session.Apply.
package match

import (
	"strings"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
)

// Type selects the win rules of a match.
type Type string

const (
	SingleSet Type = "single"
	MultiSet  Type = "set"
)

const (
	// SingleSetPoints is the fixed winning threshold of a single-set match.
	SingleSetPoints     = 15
	DefaultPointsPerSet = 15
	DefaultSetsToPlay   = 3

	minWinningMargin   = 2
	initialSetIndex    = 1
	initialServingTeam = TeamA
)

// ParseType normalizes a match type coming from a client.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case SingleSet:
		return SingleSet, true
	case MultiSet:
		return MultiSet, true
	default:
		return "", false
	}
}

// Team identifies a side of the net.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// ParseTeam accepts "A"/"B" in any case.
func ParseTeam(s string) (Team, bool) {
	switch Team(strings.ToUpper(strings.TrimSpace(s))) {
	case TeamA:
		return TeamA, true
	case TeamB:
		return TeamB, true
	default:
		return "", false
	}
}

// Action is a scorer event attributed to a single player.
type Action string

const (
	ActionPoint  Action = "point"
	ActionAce    Action = "ace"
	ActionAttack Action = "attack"
	ActionBlock  Action = "block"
	ActionDig    Action = "dig"
	ActionError  Action = "error"
)

// ParseAction normalizes an action name.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionPoint, ActionAce, ActionAttack, ActionBlock, ActionDig, ActionError:
		return a, true
	default:
		return "", false
	}
}

// Scores reports whether the action wins the rally for the acting team.
func (a Action) Scores() bool { return a != ActionError }

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseConfiguring Phase = "configuring"
	PhaseRosterEntry Phase = "roster_entry"
	PhaseInProgress  Phase = "in_progress"
	PhaseConcluded   Phase = "concluded"
)

// Config is fixed once the match starts.
type Config struct {
	Type         Type     `json:"type"`
	SetsToPlay   int      `json:"sets_to_play"`
	PointsPerSet int      `json:"points_per_set"`
	TeamA        string   `json:"team_a"`
	TeamB        string   `json:"team_b"`
	RosterA      []string `json:"roster_a"`
	RosterB      []string `json:"roster_b"`
}

// SetsToWin is the number of sets that decides the match.
func (c Config) SetsToWin() int {
	if c.Type != MultiSet {
		return 1
	}
	return c.SetsToPlay/2 + 1
}

// TeamName resolves a side to the configured team name.
func (c Config) TeamName(t Team) string {
	if t == TeamB {
		return c.TeamB
	}
	return c.TeamA
}

// TeamOf returns the team name a player was rostered under.
func (c Config) TeamOf(player string) string {
	for _, p := range c.RosterA {
		if p == player {
			return c.TeamA
		}
	}
	for _, p := range c.RosterB {
		if p == player {
			return c.TeamB
		}
	}
	return ""
}

// State is the mutable part of a live match.
// Order lists every player in roster submission order and drives deterministic iteration.
type State struct {
	ScoreA     int                       `json:"score_a"`
	ScoreB     int                       `json:"score_b"`
	SetsWonA   int                       `json:"sets_won_a"`
	SetsWonB   int                       `json:"sets_won_b"`
	CurrentSet int                       `json:"current_set"`
	Serve      Team                      `json:"serve"`
	Stats      map[string]model.StatLine `json:"stats"`
	Order      []string                  `json:"order"`
	Winner     string                    `json:"winner,omitempty"`
}

// Snapshot is the public view of a match emitted after every scoring action.
// Field names on the wire match what live viewers already read.
type Snapshot struct {
	SessionID  string `json:"session_id" firestore:"session_id"`
	TeamA      string `json:"teamA" firestore:"teamA"`
	TeamB      string `json:"teamB" firestore:"teamB"`
	ScoreA     int    `json:"scoreA" firestore:"scoreA"`
	ScoreB     int    `json:"scoreB" firestore:"scoreB"`
	SetsWonA   int    `json:"setA" firestore:"setA"`
	SetsWonB   int    `json:"setB" firestore:"setB"`
	CurrentSet int    `json:"current_set" firestore:"current_set"`
	Serving    string `json:"serve" firestore:"serve"`
	Winner     string `json:"winner,omitempty" firestore:"winner,omitempty"`
}

// Outcome describes what a single scoring action changed.
type Outcome struct {
	// SetWinner is set when the action closed a set in a multi-set match.
	SetWinner Team     `json:"set_winner,omitempty"`
	Concluded bool     `json:"concluded"`
	Winner    string   `json:"winner,omitempty"`
	Snapshot  Snapshot `json:"snapshot"`
}
