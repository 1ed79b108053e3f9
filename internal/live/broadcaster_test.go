package live_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/volleyball-scoreboard/internal/live"
	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

type fakePublisher struct {
	name string
	err  error
	got  []match.Snapshot
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, s match.Snapshot) error {
	f.got = append(f.got, s)
	return f.err
}

func snapshot(a, b int) match.Snapshot {
	return match.Snapshot{SessionID: "s1", TeamA: "Hawks", TeamB: "Sharks", ScoreA: a, ScoreB: b, CurrentSet: 1, Serving: "A"}
}

func TestBroadcaster_FansOutAndKeepsLatest(t *testing.T) {
	p1, p2 := &fakePublisher{name: "one"}, &fakePublisher{name: "two"}
	b := live.NewBroadcaster(zerolog.Nop(), p1, p2)

	_, ok := b.Latest("")
	assert.False(t, ok)

	require.NoError(t, b.Publish(context.Background(), snapshot(1, 0)))
	require.NoError(t, b.Publish(context.Background(), snapshot(1, 1)))

	assert.Len(t, p1.got, 2)
	assert.Len(t, p2.got, 2)
	latest, ok := b.Latest("")
	require.True(t, ok)
	assert.Equal(t, 1, latest.ScoreB)
}

func TestBroadcaster_FailureIsReportedAndOthersStillReceive(t *testing.T) {
	var buf bytes.Buffer
	bad := &fakePublisher{name: "rtdb", err: errors.New("unavailable")}
	good := &fakePublisher{name: "log"}
	b := live.NewBroadcaster(zerolog.New(&buf), bad, good)

	err := b.Publish(context.Background(), snapshot(3, 2))
	require.ErrorIs(t, err, live.ErrPublish)
	assert.Contains(t, err.Error(), "rtdb")
	assert.Len(t, good.got, 1)
	assert.Contains(t, buf.String(), "failed to publish live snapshot")

	latest, ok := b.Latest("")
	require.True(t, ok)
	assert.Equal(t, 3, latest.ScoreA)
}

func TestBroadcaster_LatestPerSession(t *testing.T) {
	b := live.NewBroadcaster(zerolog.Nop())
	ctx := context.Background()

	court1 := snapshot(4, 2)
	court2 := match.Snapshot{SessionID: "s2", TeamA: "Owls", TeamB: "Bears", ScoreA: 9, CurrentSet: 1, Serving: "A"}
	require.NoError(t, b.Publish(ctx, court1))
	require.NoError(t, b.Publish(ctx, court2))

	got, ok := b.Latest("s1")
	require.True(t, ok)
	assert.Equal(t, "Hawks", got.TeamA)
	assert.Equal(t, 4, got.ScoreA)

	got, ok = b.Latest("")
	require.True(t, ok)
	assert.Equal(t, "s2", got.SessionID, "empty id reads the most recent session")

	_, ok = b.Latest("unknown")
	assert.False(t, ok)

	b.Forget("s2")
	_, ok = b.Latest("s2")
	assert.False(t, ok)
	_, ok = b.Latest("")
	assert.False(t, ok)
	_, ok = b.Latest("s1")
	assert.True(t, ok)
}

func TestLogPublisher_WritesSnapshot(t *testing.T) {
	var buf bytes.Buffer
	p := live.NewLogPublisher(zerolog.New(&buf))
	require.NoError(t, p.Publish(context.Background(), snapshot(7, 5)))
	assert.Contains(t, buf.String(), `"score_a":7`)
	assert.Contains(t, buf.String(), `"team_b":"Sharks"`)
}
