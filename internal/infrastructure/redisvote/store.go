package redisvote

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-poll vote tallies in a Redis hash keyed by voter.
//
// Hash layout: vote:<pollID> -> {userID: emoji}. HSET naturally gives the
// idempotence contract: a second vote by the same user on the same poll
// supersedes the first instead of accumulating.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func pollKey(pollID string) string { return "vote:" + pollID }

// Cast records (or replaces) the user's vote on a poll.
func (s *Store) Cast(ctx context.Context, pollID, userID, emoji string) error {
	if err := s.client.HSet(ctx, pollKey(pollID), userID, emoji).Err(); err != nil {
		return fmt.Errorf("cast vote on %s: %w", pollID, err)
	}
	return nil
}

// Retract removes the user's vote, but only when the recorded emoji matches
// the one being removed — removing a reaction that was already superseded
// by a different emoji must not clear the newer vote.
func (s *Store) Retract(ctx context.Context, pollID, userID, emoji string) error {
	current, err := s.client.HGet(ctx, pollKey(pollID), userID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read vote on %s: %w", pollID, err)
	}
	if current != emoji {
		return nil
	}
	if err := s.client.HDel(ctx, pollKey(pollID), userID).Err(); err != nil {
		return fmt.Errorf("retract vote on %s: %w", pollID, err)
	}
	return nil
}

// Tally returns the vote count per emoji for a poll.
func (s *Store) Tally(ctx context.Context, pollID string) (map[string]int, error) {
	votes, err := s.client.HGetAll(ctx, pollKey(pollID)).Result()
	if err != nil {
		return nil, fmt.Errorf("tally %s: %w", pollID, err)
	}
	counts := make(map[string]int)
	for _, emoji := range votes {
		counts[emoji]++
	}
	return counts, nil
}
