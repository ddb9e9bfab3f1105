package redisvote

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return NewStore(client)
}

func TestCast_And_Tally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👍"))
	require.NoError(t, s.Cast(ctx, "poll1", "u2", "👍"))
	require.NoError(t, s.Cast(ctx, "poll1", "u3", "👎"))

	counts, err := s.Tally(ctx, "poll1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts["👍"])
	assert.Equal(t, 1, counts["👎"])
}

func TestCast_SecondVoteSupersedes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👍"))
	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👎"))

	counts, err := s.Tally(ctx, "poll1")
	require.NoError(t, err)
	assert.Equal(t, 0, counts["👍"])
	assert.Equal(t, 1, counts["👎"])
}

func TestRetract_MatchingEmoji(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👍"))
	require.NoError(t, s.Retract(ctx, "poll1", "u1", "👍"))

	counts, err := s.Tally(ctx, "poll1")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestRetract_StaleEmoji_DoesNotClearNewerVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👍"))
	require.NoError(t, s.Cast(ctx, "poll1", "u1", "👎"))
	// The platform now reports removal of the old 👍 reaction.
	require.NoError(t, s.Retract(ctx, "poll1", "u1", "👍"))

	counts, err := s.Tally(ctx, "poll1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts["👎"])
}

func TestRetract_NoVote_IsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Retract(context.Background(), "poll1", "u1", "👍"))
}
