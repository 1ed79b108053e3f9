package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

func startLive(t *testing.T, m *session.Manager) string {
	t.Helper()
	token, err := m.Start(context.Background(), "", func(s *match.Session) error {
		if err := s.Configure(match.SingleSet, 0, 0); err != nil {
			return err
		}
		if err := s.SetTeams("Hawks", "Sharks"); err != nil {
			return err
		}
		return s.SetRosters([]string{"Ann"}, []string{"Cid"})
	})
	require.NoError(t, err)
	return token
}

func TestManager_StartIssuesToken(t *testing.T) {
	store := session.NewMemoryStore()
	m := session.NewManager(store)

	token := startLive(t, m)
	assert.True(t, session.ValidToken(token))
	assert.Equal(t, 1, store.Len())

	got, err := m.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, token, got.ID)
	assert.Equal(t, match.PhaseInProgress, got.Phase)
}

func TestManager_StartReplacesMalformedToken(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	token, err := m.Start(context.Background(), "../../etc", func(*match.Session) error { return nil })
	require.NoError(t, err)
	assert.NotEqual(t, "../../etc", token)
	assert.True(t, session.ValidToken(token))
}

func TestManager_StartKeepsValidToken(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	want := session.NewToken()
	token, err := m.Start(context.Background(), want, func(*match.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, want, token)
}

func TestManager_StartFailureStoresNothing(t *testing.T) {
	store := session.NewMemoryStore()
	m := session.NewManager(store)
	_, err := m.Start(context.Background(), "", func(s *match.Session) error {
		return s.Configure(match.MultiSet, 2, 25)
	})
	require.ErrorIs(t, err, match.ErrConfiguration)
	assert.Equal(t, 0, store.Len())
}

func TestManager_UpdateRollsBackOnError(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	token := startLive(t, m)
	ctx := context.Background()

	boom := errors.New("persist failed")
	err := m.Update(ctx, token, func(s *match.Session) error {
		if _, err := s.Apply(match.TeamA, "Ann", match.ActionPoint); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := m.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 0, got.State.ScoreA, "failed update must not be saved")
	assert.Equal(t, 0, got.State.Stats["Ann"].Points)
}

func TestManager_UpdateUnknownToken(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	err := m.Update(context.Background(), session.NewToken(), func(*match.Session) error { return nil })
	assert.ErrorIs(t, err, session.ErrNotFound)
	err = m.Update(context.Background(), "", func(*match.Session) error { return nil })
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_Discard(t *testing.T) {
	store := session.NewMemoryStore()
	m := session.NewManager(store)
	token := startLive(t, m)

	require.NoError(t, m.Discard(context.Background(), token))
	_, err := m.Get(context.Background(), token)
	assert.ErrorIs(t, err, session.ErrNotFound)
	require.NoError(t, m.Discard(context.Background(), ""))
}

func TestManager_ConcurrentUpdatesAreSerialized(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	token := startLive(t, m)
	ctx := context.Background()

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				err := m.Update(ctx, token, func(s *match.Session) error {
					_, err := s.Apply("", "Ann", match.ActionError)
					return err
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, got.State.Stats["Ann"].Errors)
}

func TestManager_OnSavedRunsOnlyAfterSuccess(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	token := startLive(t, m)
	ctx := context.Background()

	var calls int
	hook := func(s *match.Session) {
		calls++
		assert.Equal(t, 1, s.State.ScoreA)
	}
	require.NoError(t, m.Update(ctx, token, func(s *match.Session) error {
		_, err := s.Apply(match.TeamA, "Ann", match.ActionAce)
		return err
	}, hook))
	assert.Equal(t, 1, calls)

	err := m.Update(ctx, token, func(s *match.Session) error {
		_, err := s.Apply(match.TeamA, "Nobody", match.ActionAce)
		return err
	}, hook)
	require.ErrorIs(t, err, match.ErrUnknownPlayer)
	assert.Equal(t, 1, calls)
}

// hammer applies perWorker error actions from each manager concurrently.
func hammer(t *testing.T, token string, perWorker int, managers ...*session.Manager) {
	t.Helper()
	var wg sync.WaitGroup
	for _, m := range managers {
		wg.Add(1)
		go func(m *session.Manager) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				err := m.Update(context.Background(), token, func(s *match.Session) error {
					_, err := s.Apply("", "Ann", match.ActionError)
					return err
				})
				assert.NoError(t, err)
			}
		}(m)
	}
	wg.Wait()
}

func TestManager_SharedLockerSerializesAcrossManagers(t *testing.T) {
	store := session.NewMemoryStore()
	shared := session.NewKeyedMutex()
	first := session.NewManager(store, session.WithLocker(shared))
	second := session.NewManager(store, session.WithLocker(shared))
	token := startLive(t, first)

	hammer(t, token, 250, first, second)

	got, err := second.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 500, got.State.Stats["Ann"].Errors)
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) { return nil, session.ErrBusy }

func TestManager_LockFailureSkipsUpdate(t *testing.T) {
	store := session.NewMemoryStore()
	token := startLive(t, session.NewManager(store))

	m := session.NewManager(store, session.WithLocker(busyLocker{}))
	called := false
	err := m.Update(context.Background(), token, func(*match.Session) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, session.ErrBusy)
	assert.False(t, called)

	// the in-process lock was released
	require.NoError(t, session.NewManager(store).Update(context.Background(), token, func(*match.Session) error { return nil }))
}

func TestManager_StartAssignsFreshMatchKey(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	ctx := context.Background()
	token := startLive(t, m)
	before, err := m.Get(ctx, token)
	require.NoError(t, err)
	require.NotEmpty(t, before.MatchKey)

	_, err = m.Start(ctx, token, func(*match.Session) error { return nil })
	require.NoError(t, err)
	after, err := m.Get(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, before.MatchKey, after.MatchKey)
}
