package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

func runStoreContract(t *testing.T, store session.Store) {
	ctx := context.Background()
	token := session.NewToken()

	_, err := store.Load(ctx, token)
	require.ErrorIs(t, err, session.ErrNotFound)

	s := match.NewSession(token)
	require.NoError(t, s.Configure(match.MultiSet, 3, 25))
	require.NoError(t, s.SetTeams("Hawks", "Sharks"))
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, match.PhaseRosterEntry, got.Phase)
	assert.Equal(t, "Hawks", got.Config.TeamA)

	// loaded values are private copies
	got.Config.TeamA = "changed"
	again, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Hawks", again.Config.TeamA)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Load(ctx, token)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, session.NewMemoryStore())
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore(t *testing.T) {
	store := session.NewRedisStore(redisClient(t), time.Minute)
	require.NoError(t, store.Ping(context.Background()))
	runStoreContract(t, store)
}

func TestRedisLocker_SerializesReplicas(t *testing.T) {
	client := redisClient(t)
	store := session.NewRedisStore(client, time.Minute)
	first := session.NewManager(store, session.WithLocker(session.NewRedisLocker(client, 5*time.Second, 10*time.Second)))
	second := session.NewManager(store, session.WithLocker(session.NewRedisLocker(client, 5*time.Second, 10*time.Second)))
	token := startLive(t, first)
	t.Cleanup(func() { _ = first.Discard(context.Background(), token) })

	hammer(t, token, 50, first, second)

	got, err := first.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 100, got.State.Stats["Ann"].Errors)
}

func TestRedisLocker_BusyAfterWait(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	holder := session.NewRedisLocker(client, 5*time.Second, time.Second)
	waiter := session.NewRedisLocker(client, 5*time.Second, 50*time.Millisecond)
	id := session.NewToken()

	unlock, err := holder.Lock(ctx, id)
	require.NoError(t, err)
	_, err = waiter.Lock(ctx, id)
	require.ErrorIs(t, err, session.ErrBusy)

	unlock()
	unlockAgain, err := waiter.Lock(ctx, id)
	require.NoError(t, err)
	unlockAgain()
}

func TestValidToken(t *testing.T) {
	assert.True(t, session.ValidToken(session.NewToken()))
	assert.False(t, session.ValidToken(""))
	assert.False(t, session.ValidToken("not-a-token"))
}
