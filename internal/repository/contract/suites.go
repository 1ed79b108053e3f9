// Package contract holds behaviour suites every repository implementation must pass.
// Driver packages run them against their own storage from tests.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/volleyball-scoreboard/internal/model"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
)

// Stores is one isolated set of repositories sharing a database.
type Stores struct {
	Tx      repository.TxManager
	Matches repository.MatchRepository
	Stats   repository.StatsRepository
	Players repository.PlayerRepository
	Pinger  repository.Pinger
}

// Factory returns empty stores and a cleanup func.
type Factory func(t *testing.T) (Stores, func())

func fresh(t *testing.T, mk Factory) Stores {
	t.Helper()
	s, cleanup := mk(t)
	t.Cleanup(cleanup)
	return s
}

func mkMatch(t *testing.T, repo repository.MatchRepository, a, b string) model.MatchRecord {
	t.Helper()
	m, err := repo.Create(context.Background(), model.MatchRecord{TeamA: a, TeamB: b, Winner: a})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return m
}

func RunMatchRepositoryContract(t *testing.T, mk Factory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		at := time.Date(2025, 5, 17, 18, 30, 0, 0, time.UTC)
		created, err := s.Matches.Create(ctx, model.MatchRecord{TeamA: "Hawks", TeamB: "Sharks", Winner: "Sharks", PlayedAt: at})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("expected generated id")
		}
		got, err := s.Matches.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.TeamA != "Hawks" || got.TeamB != "Sharks" || got.Winner != "Sharks" {
			t.Fatalf("mismatch: %+v", got)
		}
		if !got.PlayedAt.Equal(at) {
			t.Fatalf("played_at mismatch: got %v want %v", got.PlayedAt, at)
		}
	})

	t.Run("zero_played_at_defaults_to_now", func(t *testing.T) {
		s := fresh(t, mk)
		before := time.Now().Add(-time.Minute)
		m := mkMatch(t, s.Matches, "A", "B")
		if m.PlayedAt.Before(before) {
			t.Fatalf("expected played_at to be set, got %v", m.PlayedAt)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		s := fresh(t, mk)
		_, err := s.Matches.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("match_key_is_unique", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		first, err := s.Matches.Create(ctx, model.MatchRecord{MatchKey: "k-1", TeamA: "Hawks", TeamB: "Sharks", Winner: "Hawks"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := s.Matches.GetByKey(ctx, "k-1")
		if err != nil {
			t.Fatalf("get by key failed: %v", err)
		}
		if got.ID != first.ID || got.MatchKey != "k-1" {
			t.Fatalf("mismatch: %+v", got)
		}
		_, err = s.Matches.Create(ctx, model.MatchRecord{MatchKey: "k-1", TeamA: "Hawks", TeamB: "Sharks", Winner: "Sharks"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if _, err := s.Matches.GetByKey(ctx, "k-2"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty_match_key_is_not_unique", func(t *testing.T) {
		s := fresh(t, mk)
		mkMatch(t, s.Matches, "A", "B")
		mkMatch(t, s.Matches, "A", "B")
		if _, err := s.Matches.GetByKey(context.Background(), ""); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for empty key, got %v", err)
		}
	})

	t.Run("list_most_recent_first_with_total", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		var ids []int64
		for i := 0; i < 7; i++ {
			ids = append(ids, mkMatch(t, s.Matches, "T-"+string(rune('A'+i)), "Opp").ID)
		}
		res, err := s.Matches.List(ctx, repository.Page{Limit: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if res.Items[0].ID != ids[6] || res.Items[2].ID != ids[4] {
			t.Fatalf("expected descending ids, got %d..%d", res.Items[0].ID, res.Items[2].ID)
		}
		res2, err := s.Matches.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 || res2.Items[0].ID != ids[0] {
			t.Fatalf("unexpected last page: %+v", res2)
		}
		res3, err := s.Matches.List(ctx, repository.Page{Limit: 3, Offset: 30})
		if err != nil {
			t.Fatalf("list3: %v", err)
		}
		if len(res3.Items) != 0 || res3.Total != 7 {
			t.Fatalf("unexpected page past the end: len=%d total=%d", len(res3.Items), res3.Total)
		}
	})
}

func RunStatsRepositoryContract(t *testing.T, mk Factory) {
	t.Helper()

	t.Run("create_and_list_by_match_in_insert_order", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		m := mkMatch(t, s.Matches, "Hawks", "Sharks")
		for _, p := range []string{"Zoe", "Ann", "Cid"} {
			row := model.MatchStatRow{MatchID: m.ID, Player: p, Team: "Hawks", StatLine: model.StatLine{Points: 3, Aces: 1, Errors: 2}}
			if _, err := s.Stats.Create(ctx, row); err != nil {
				t.Fatalf("create %s: %v", p, err)
			}
		}
		list, err := s.Stats.ListByMatch(ctx, m.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || list[0].Player != "Zoe" || list[2].Player != "Cid" {
			t.Fatalf("unexpected rows: %+v", list)
		}
		if list[1].Points != 3 || list[1].Aces != 1 || list[1].Errors != 2 || list[1].MatchID != m.ID {
			t.Fatalf("counters not stored: %+v", list[1])
		}
	})

	t.Run("duplicate_player_in_match_rejected", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		m := mkMatch(t, s.Matches, "Hawks", "Sharks")
		row := model.MatchStatRow{MatchID: m.ID, Player: "Ann", Team: "Hawks"}
		if _, err := s.Stats.Create(ctx, row); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.Stats.Create(ctx, row); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown_match_rejected", func(t *testing.T) {
		s := fresh(t, mk)
		_, err := s.Stats.Create(context.Background(), model.MatchStatRow{MatchID: 424242, Player: "Ann", Team: "Hawks"})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list_by_player_most_recent_first", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		first := mkMatch(t, s.Matches, "Hawks", "Sharks")
		second := mkMatch(t, s.Matches, "Hawks", "Owls")
		for _, id := range []int64{first.ID, second.ID} {
			if _, err := s.Stats.Create(ctx, model.MatchStatRow{MatchID: id, Player: "Ann", Team: "Hawks"}); err != nil {
				t.Fatalf("create: %v", err)
			}
		}
		list, err := s.Stats.ListByPlayer(ctx, "Ann", 10)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 || list[0].MatchID != second.ID {
			t.Fatalf("unexpected rows: %+v", list)
		}
	})

	t.Run("list_empty_ok", func(t *testing.T) {
		s := fresh(t, mk)
		m := mkMatch(t, s.Matches, "Hawks", "Sharks")
		list, err := s.Stats.ListByMatch(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %d", len(list))
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, mk Factory) {
	t.Helper()

	t.Run("accumulate_is_additive_across_matches", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		if err := s.Players.Accumulate(ctx, "Ann", "Hawks", model.StatLine{Points: 5, Aces: 1, Digs: 2}); err != nil {
			t.Fatalf("first: %v", err)
		}
		if err := s.Players.Accumulate(ctx, "Ann", "Owls", model.StatLine{Points: 4, Blocks: 3, Errors: 1}); err != nil {
			t.Fatalf("second: %v", err)
		}
		got, err := s.Players.GetByName(ctx, "Ann")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		want := model.StatLine{Points: 9, Aces: 1, Blocks: 3, Digs: 2, Errors: 1}
		if got.StatLine != want || got.Matches != 2 {
			t.Fatalf("unexpected totals: %+v", got)
		}
		if got.Team != "Owls" {
			t.Fatalf("expected last known team, got %q", got.Team)
		}
	})

	t.Run("mvp_increment", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		if err := s.Players.Accumulate(ctx, "Ann", "Hawks", model.StatLine{}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := s.Players.IncrementMVP(ctx, "Ann"); err != nil {
				t.Fatalf("mvp: %v", err)
			}
		}
		got, err := s.Players.GetByName(ctx, "Ann")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.MVPCount != 2 {
			t.Fatalf("expected 2 mvp, got %d", got.MVPCount)
		}
		if err := s.Players.IncrementMVP(ctx, "Nobody"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		s := fresh(t, mk)
		if _, err := s.Players.GetByName(context.Background(), "Ghost"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("leaderboard_points_desc_then_name", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		seed := []struct {
			name   string
			points int
		}{{"Cid", 10}, {"Bea", 12}, {"Ann", 10}, {"Dan", 1}}
		for _, p := range seed {
			if err := s.Players.Accumulate(ctx, p.name, "Hawks", model.StatLine{Points: p.points}); err != nil {
				t.Fatalf("seed %s: %v", p.name, err)
			}
		}
		if err := s.Players.IncrementMVP(ctx, "Ann"); err != nil {
			t.Fatalf("mvp: %v", err)
		}
		got, err := s.Players.Leaderboard(ctx, 3)
		if err != nil {
			t.Fatalf("leaderboard: %v", err)
		}
		want := []model.LeaderboardEntry{{Name: "Bea", Points: 12}, {Name: "Ann", Points: 10, MVPCount: 1}, {Name: "Cid", Points: 10}}
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
			}
		}
	})
}

func RunTxManagerContract(t *testing.T, mk Factory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		var createdID int64
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := s.Matches.Create(ctx, model.MatchRecord{TeamA: "A", TeamB: "B", Winner: "A"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return s.Players.Accumulate(ctx, "Ann", "A", model.StatLine{Points: 1})
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := s.Matches.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed match visible, got err=%v", err)
		}
		if _, err := s.Players.GetByName(ctx, "Ann"); err != nil {
			t.Fatalf("expected committed player visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		var createdID int64
		marker := errors.New("boom")
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := s.Matches.Create(ctx, model.MatchRecord{TeamA: "A", TeamB: "B", Winner: "A"})
			if err != nil {
				return err
			}
			createdID = out.ID
			if _, err := s.Stats.Create(ctx, model.MatchStatRow{MatchID: out.ID, Player: "Ann", Team: "A"}); err != nil {
				return err
			}
			if err := s.Players.Accumulate(ctx, "Ann", "A", model.StatLine{Points: 1}); err != nil {
				return err
			}
			return marker
		})
		if !errors.Is(err, marker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := s.Matches.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
		if _, err := s.Players.GetByName(ctx, "Ann"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected player rolled back, got %v", err)
		}
	})

	t.Run("nested_call_joins_outer_tx", func(t *testing.T) {
		s := fresh(t, mk)
		ctx := context.Background()
		marker := errors.New("outer failed")
		err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
				return s.Players.Accumulate(ctx, "Ann", "A", model.StatLine{})
			}); err != nil {
				return err
			}
			return marker
		})
		if !errors.Is(err, marker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := s.Players.GetByName(ctx, "Ann"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected inner write rolled back with outer tx, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, mk Factory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		s := fresh(t, mk)
		if err := s.Pinger.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// RunAll executes every suite.
func RunAll(t *testing.T, mk Factory) {
	t.Run("matches", func(t *testing.T) { RunMatchRepositoryContract(t, mk) })
	t.Run("stats", func(t *testing.T) { RunStatsRepositoryContract(t, mk) })
	t.Run("players", func(t *testing.T) { RunPlayerRepositoryContract(t, mk) })
	t.Run("tx", func(t *testing.T) { RunTxManagerContract(t, mk) })
	t.Run("pinger", func(t *testing.T) { RunPingerContract(t, mk) })
}
