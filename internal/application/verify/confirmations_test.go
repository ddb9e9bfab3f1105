package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmations_OfferWithoutWaiter(t *testing.T) {
	c := NewConfirmations(time.Second)
	assert.False(t, c.Offer("u1", "confirm"))
}

func TestConfirmations_ReplyResolvesAwait(t *testing.T) {
	c := NewConfirmations(time.Second)
	w := c.Begin("u1", "new@b.edu")

	require.True(t, c.Offer("u1", "confirm"))

	content, err := c.Await(context.Background(), "u1", w)
	require.NoError(t, err)
	assert.Equal(t, "confirm", content)

	// Entry is gone once resolved.
	assert.False(t, c.Offer("u1", "again"))
}

func TestConfirmations_Timeout(t *testing.T) {
	c := NewConfirmations(20 * time.Millisecond)
	w := c.Begin("u1", "new@b.edu")

	_, err := c.Await(context.Background(), "u1", w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfirmationTimeout))
}

func TestConfirmations_SupersededByNewerSubmission(t *testing.T) {
	c := NewConfirmations(time.Second)
	w1 := c.Begin("u1", "first@b.edu")
	w2 := c.Begin("u1", "second@b.edu")

	_, err := c.Await(context.Background(), "u1", w1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfirmationTimeout))

	// The newer waiter is still live.
	require.True(t, c.Offer("u1", "confirm"))
	content, err := c.Await(context.Background(), "u1", w2)
	require.NoError(t, err)
	assert.Equal(t, "confirm", content)
}

func TestConfirmations_ContextCancel(t *testing.T) {
	c := NewConfirmations(time.Second)
	w := c.Begin("u1", "new@b.edu")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Await(ctx, "u1", w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfirmations_WaitersAreIndependentPerUser(t *testing.T) {
	c := NewConfirmations(time.Second)
	w1 := c.Begin("u1", "a@b.edu")
	c.Begin("u2", "c@d.edu")

	require.True(t, c.Offer("u1", "confirm"))

	content, err := c.Await(context.Background(), "u1", w1)
	require.NoError(t, err)
	assert.Equal(t, "confirm", content)

	// u2's waiter is untouched.
	assert.True(t, c.Offer("u2", "confirm"))
}
