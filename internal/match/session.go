package match

import (
	"fmt"
	"strings"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
)

// Session is one scorer's match, from configuration to conclusion.
// A Session is not safe for concurrent use; callers serialize access per session ID.
// MatchKey names the match being scored and changes whenever the session is
// reconfigured; the stored match record carries it.
type Session struct {
	ID       string `json:"id"`
	MatchKey string `json:"match_key"`
	Phase    Phase  `json:"phase"`
	Config   Config `json:"config"`
	State    State  `json:"state"`
}

// NewSession returns an empty session waiting for configuration.
func NewSession(id string) *Session {
	return &Session{ID: id, Phase: PhaseConfiguring}
}

// Configured reports whether match rules have been accepted.
func (s *Session) Configured() bool { return s.Config.Type != "" }

// Configure fixes the match rules. Single-set matches always play to SingleSetPoints.
func (s *Session) Configure(t Type, setsToPlay, pointsPerSet int) error {
	if s.Phase != PhaseConfiguring || s.Configured() {
		return fmt.Errorf("%w: match already configured", ErrInvalidState)
	}
	switch t {
	case SingleSet:
		setsToPlay, pointsPerSet = 1, SingleSetPoints
	case MultiSet:
		if setsToPlay < 1 || setsToPlay%2 == 0 {
			return fmt.Errorf("%w: sets to play must be a positive odd number, got %d", ErrConfiguration, setsToPlay)
		}
		if pointsPerSet < 1 {
			return fmt.Errorf("%w: points per set must be positive, got %d", ErrConfiguration, pointsPerSet)
		}
	default:
		return fmt.Errorf("%w: unknown match type %q", ErrConfiguration, t)
	}
	s.Config.Type = t
	s.Config.SetsToPlay = setsToPlay
	s.Config.PointsPerSet = pointsPerSet
	return nil
}

// SetTeams names both sides. Teams may be renamed until rosters are submitted.
func (s *Session) SetTeams(teamA, teamB string) error {
	if !s.Configured() || (s.Phase != PhaseConfiguring && s.Phase != PhaseRosterEntry) {
		return fmt.Errorf("%w: teams can only be set after configuration and before rosters", ErrInvalidState)
	}
	teamA, teamB = strings.TrimSpace(teamA), strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return fmt.Errorf("%w: team names must not be empty", ErrConfiguration)
	}
	if strings.EqualFold(teamA, teamB) {
		return fmt.Errorf("%w: team names must differ", ErrConfiguration)
	}
	s.Config.TeamA, s.Config.TeamB = teamA, teamB
	s.Phase = PhaseRosterEntry
	return nil
}

// SetRosters registers both rosters and starts the match.
func (s *Session) SetRosters(rosterA, rosterB []string) error {
	if s.Phase != PhaseRosterEntry {
		return fmt.Errorf("%w: rosters can only be set once teams are named", ErrInvalidState)
	}
	seen := make(map[string]struct{}, len(rosterA)+len(rosterB))
	a, err := cleanRoster(s.Config.TeamA, rosterA, seen)
	if err != nil {
		return err
	}
	b, err := cleanRoster(s.Config.TeamB, rosterB, seen)
	if err != nil {
		return err
	}

	order := make([]string, 0, len(a)+len(b))
	order = append(order, a...)
	order = append(order, b...)
	stats := make(map[string]model.StatLine, len(order))
	for _, p := range order {
		stats[p] = model.StatLine{}
	}

	s.Config.RosterA, s.Config.RosterB = a, b
	s.State = State{
		CurrentSet: initialSetIndex,
		Serve:      initialServingTeam,
		Stats:      stats,
		Order:      order,
	}
	s.Phase = PhaseInProgress
	return nil
}

func cleanRoster(team string, roster []string, seen map[string]struct{}) ([]string, error) {
	out := make([]string, 0, len(roster))
	for _, raw := range roster {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: roster of %s contains an empty name", ErrConfiguration, team)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: player %q listed more than once", ErrConfiguration, name)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: roster of %s must not be empty", ErrConfiguration, team)
	}
	return out, nil
}

// Apply records one scorer action. Every precondition is checked before the state is
// touched, so a rejected action leaves the session unchanged.
func (s *Session) Apply(team Team, player string, action Action) (Outcome, error) {
	if s.Phase != PhaseInProgress {
		return Outcome{}, fmt.Errorf("%w: match is %s", ErrInvalidState, s.Phase)
	}
	if _, ok := ParseAction(string(action)); !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if action.Scores() && team != TeamA && team != TeamB {
		return Outcome{}, fmt.Errorf("%w: scoring team must be A or B, got %q", ErrInvalidAction, team)
	}
	line, ok := s.State.Stats[player]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}

	st := &s.State
	if action.Scores() {
		if team == TeamA {
			st.ScoreA++
		} else {
			st.ScoreB++
		}
		line.Points++
		st.Serve = team
	}
	switch action {
	case ActionAce:
		line.Aces++
	case ActionAttack:
		line.Attacks++
	case ActionBlock:
		line.Blocks++
	case ActionDig:
		line.Digs++
	case ActionError:
		line.Errors++
	}
	st.Stats[player] = line

	var out Outcome
	s.evaluate(&out)
	out.Snapshot = s.Snapshot()
	return out, nil
}

func (s *Session) evaluate(out *Outcome) {
	st := &s.State
	if s.Config.Type == SingleSet {
		if side, ok := setWinner(st.ScoreA, st.ScoreB, SingleSetPoints); ok {
			s.conclude(side, out)
		}
		return
	}

	if side, ok := setWinner(st.ScoreA, st.ScoreB, s.Config.PointsPerSet); ok {
		if side == TeamA {
			st.SetsWonA++
		} else {
			st.SetsWonB++
		}
		out.SetWinner = side
		st.ScoreA, st.ScoreB = 0, 0
		st.CurrentSet++
	}

	need := s.Config.SetsToWin()
	switch {
	case st.SetsWonA >= need:
		s.conclude(TeamA, out)
	case st.SetsWonB >= need:
		s.conclude(TeamB, out)
	}
}

func (s *Session) conclude(side Team, out *Outcome) {
	s.State.Winner = s.Config.TeamName(side)
	s.Phase = PhaseConcluded
	out.Concluded = true
	out.Winner = s.State.Winner
}

// setWinner reports the side that has reached target with at least a two point lead.
func setWinner(a, b, target int) (Team, bool) {
	if max(a, b) < target {
		return "", false
	}
	switch diff := a - b; {
	case diff >= minWinningMargin:
		return TeamA, true
	case -diff >= minWinningMargin:
		return TeamB, true
	default:
		return "", false
	}
}

// Snapshot renders the current public view of the match.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:  s.ID,
		TeamA:      s.Config.TeamA,
		TeamB:      s.Config.TeamB,
		ScoreA:     s.State.ScoreA,
		ScoreB:     s.State.ScoreB,
		SetsWonA:   s.State.SetsWonA,
		SetsWonB:   s.State.SetsWonB,
		CurrentSet: s.State.CurrentSet,
		Serving:    s.Config.TeamName(s.State.Serve),
		Winner:     s.State.Winner,
	}
}
