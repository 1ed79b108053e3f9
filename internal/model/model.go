// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// StatLine is the set of per-player counters tracked during a match.
// All counters are non-negative and only ever grow while a match is live.
type StatLine struct {
	Points  int `json:"points" firestore:"points"`
	Aces    int `json:"aces" firestore:"aces"`
	Attacks int `json:"attacks" firestore:"attacks"`
	Blocks  int `json:"blocks" firestore:"blocks"`
	Digs    int `json:"digs" firestore:"digs"`
	Errors  int `json:"errors" firestore:"errors"`
}

// Add returns the counter-wise sum of two stat lines.
func (s StatLine) Add(o StatLine) StatLine {
	return StatLine{
		Points:  s.Points + o.Points,
		Aces:    s.Aces + o.Aces,
		Attacks: s.Attacks + o.Attacks,
		Blocks:  s.Blocks + o.Blocks,
		Digs:    s.Digs + o.Digs,
		Errors:  s.Errors + o.Errors,
	}
}

// MatchRecord is the durable summary of a concluded match.
// MatchKey identifies the live session's match; at most one record exists per key.
type MatchRecord struct {
	ID       int64     `json:"id"`
	MatchKey string    `json:"-"`
	TeamA    string    `json:"team_a"`
	TeamB    string    `json:"team_b"`
	Winner   string    `json:"winner"`
	PlayedAt time.Time `json:"played_at"`
}

// MatchStatRow is a frozen copy of one player's counters for one match.
type MatchStatRow struct {
	ID      int64  `json:"id"`
	MatchID int64  `json:"match_id"`
	Player  string `json:"player"`
	Team    string `json:"team"`
	StatLine
}

// PlayerCareer holds cumulative totals for a player across every persisted match.
// Team is the last team the player was recorded with.
type PlayerCareer struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Matches  int    `json:"matches"`
	MVPCount int    `json:"mvp_count"`
	StatLine
}

// LeaderboardEntry is the read-only projection used for the points leaderboard.
type LeaderboardEntry struct {
	Name     string `json:"name"`
	Points   int    `json:"points"`
	MVPCount int    `json:"mvp_count"`
}

// MatchDetail bundles a match record with its stat rows.
type MatchDetail struct {
	Match MatchRecord    `json:"match"`
	Stats []MatchStatRow `json:"stats"`
}

// PlayerProfile is a player's career plus their most recent match rows.
type PlayerProfile struct {
	Career PlayerCareer   `json:"career"`
	Recent []MatchStatRow `json:"recent"`
}
