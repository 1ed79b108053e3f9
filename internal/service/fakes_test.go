package service_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
)

// fakeDB backs every repository contract with maps. WithinTx snapshots the maps and
// restores them when fn fails.
type fakeDB struct {
	nextMatch int64
	nextStat  int64
	matches   map[int64]model.MatchRecord
	stats     []model.MatchStatRow
	players   map[string]model.PlayerCareer

	failStatsFor string
	txCalls      int
}

func newFakeDB() *fakeDB {
	return &fakeDB{matches: map[int64]model.MatchRecord{}, players: map[string]model.PlayerCareer{}}
}

func (f *fakeDB) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.txCalls++
	nm, ns := f.nextMatch, f.nextStat
	matches, stats, players := maps.Clone(f.matches), slices.Clone(f.stats), maps.Clone(f.players)
	if err := fn(ctx); err != nil {
		f.nextMatch, f.nextStat = nm, ns
		f.matches, f.stats, f.players = matches, stats, players
		return err
	}
	return nil
}

type fakeMatches struct{ db *fakeDB }

func (r fakeMatches) Create(ctx context.Context, m model.MatchRecord) (model.MatchRecord, error) {
	if _, err := r.GetByKey(ctx, m.MatchKey); err == nil {
		return model.MatchRecord{}, repository.ErrAlreadyExists
	}
	r.db.nextMatch++
	m.ID = r.db.nextMatch
	r.db.matches[m.ID] = m
	return m, nil
}

func (r fakeMatches) GetByID(_ context.Context, id int64) (model.MatchRecord, error) {
	m, ok := r.db.matches[id]
	if !ok {
		return model.MatchRecord{}, repository.ErrNotFound
	}
	return m, nil
}

func (r fakeMatches) GetByKey(_ context.Context, key string) (model.MatchRecord, error) {
	for _, m := range r.db.matches {
		if key != "" && m.MatchKey == key {
			return m, nil
		}
	}
	return model.MatchRecord{}, repository.ErrNotFound
}

func (r fakeMatches) List(_ context.Context, p repository.Page) (repository.PageResult[model.MatchRecord], error) {
	all := make([]model.MatchRecord, 0, len(r.db.matches))
	for _, m := range r.db.matches {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	res := repository.PageResult[model.MatchRecord]{Total: len(all)}
	if p.Offset < len(all) {
		res.Items = all[p.Offset:min(len(all), p.Offset+p.Limit)]
	}
	return res, nil
}

type fakeStats struct{ db *fakeDB }

func (r fakeStats) Create(_ context.Context, s model.MatchStatRow) (model.MatchStatRow, error) {
	if s.Player == r.db.failStatsFor {
		return model.MatchStatRow{}, errors.New("disk full")
	}
	r.db.nextStat++
	s.ID = r.db.nextStat
	r.db.stats = append(r.db.stats, s)
	return s, nil
}

func (r fakeStats) ListByMatch(_ context.Context, matchID int64) ([]model.MatchStatRow, error) {
	var out []model.MatchStatRow
	for _, s := range r.db.stats {
		if s.MatchID == matchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeStats) ListByPlayer(_ context.Context, player string, limit int) ([]model.MatchStatRow, error) {
	var out []model.MatchStatRow
	for i := len(r.db.stats) - 1; i >= 0 && len(out) < limit; i-- {
		if r.db.stats[i].Player == player {
			out = append(out, r.db.stats[i])
		}
	}
	return out, nil
}

type fakePlayers struct{ db *fakeDB }

func (r fakePlayers) Accumulate(_ context.Context, name, team string, l model.StatLine) error {
	p := r.db.players[name]
	p.Name, p.Team = name, team
	p.Matches++
	p.StatLine = p.StatLine.Add(l)
	r.db.players[name] = p
	return nil
}

func (r fakePlayers) IncrementMVP(_ context.Context, name string) error {
	p, ok := r.db.players[name]
	if !ok {
		return repository.ErrNotFound
	}
	p.MVPCount++
	r.db.players[name] = p
	return nil
}

func (r fakePlayers) GetByName(_ context.Context, name string) (model.PlayerCareer, error) {
	p, ok := r.db.players[name]
	if !ok {
		return model.PlayerCareer{}, repository.ErrNotFound
	}
	return p, nil
}

func (r fakePlayers) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	all := make([]model.PlayerCareer, 0, len(r.db.players))
	for _, p := range r.db.players {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Points != all[j].Points {
			return all[i].Points > all[j].Points
		}
		return all[i].Name < all[j].Name
	})
	out := make([]model.LeaderboardEntry, 0, limit)
	for _, p := range all[:min(limit, len(all))] {
		out = append(out, model.LeaderboardEntry{Name: p.Name, Points: p.Points, MVPCount: p.MVPCount})
	}
	return out, nil
}

var (
	_ repository.TxManager        = (*fakeDB)(nil)
	_ repository.MatchRepository  = fakeMatches{}
	_ repository.StatsRepository  = fakeStats{}
	_ repository.PlayerRepository = fakePlayers{}
)

type fakeBroadcaster struct {
	err       error
	published []match.Snapshot
	forgotten map[string]bool
}

func (f *fakeBroadcaster) Publish(_ context.Context, s match.Snapshot) error {
	delete(f.forgotten, s.SessionID)
	f.published = append(f.published, s)
	return f.err
}

func (f *fakeBroadcaster) Latest(sessionID string) (match.Snapshot, bool) {
	for i := len(f.published) - 1; i >= 0; i-- {
		s := f.published[i]
		if (sessionID == "" || s.SessionID == sessionID) && !f.forgotten[s.SessionID] {
			return s, true
		}
	}
	return match.Snapshot{}, false
}

func (f *fakeBroadcaster) Forget(sessionID string) {
	if f.forgotten == nil {
		f.forgotten = map[string]bool{}
	}
	f.forgotten[sessionID] = true
}

// countingRecorder wraps a recorder and counts Record calls.
type countingRecorder struct {
	inner service.MatchRecorder
	calls int
}

func (c *countingRecorder) Record(ctx context.Context, key string, cfg match.Config, st match.State) (int64, error) {
	c.calls++
	return c.inner.Record(ctx, key, cfg, st)
}
