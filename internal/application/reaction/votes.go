package reaction

import (
	"context"
	"fmt"

	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// VoteStore is the tally backend. The Redis implementation lives in
// infrastructure/redisvote.
type VoteStore interface {
	Cast(ctx context.Context, pollID, userID, emoji string) error
	Retract(ctx context.Context, pollID, userID, emoji string) error
	Tally(ctx context.Context, pollID string) (map[string]int, error)
}

// VoteHandler records poll votes keyed by the reacting user. Idempotence
// per user (a second add supersedes, a stale remove is ignored) is the
// store's contract.
type VoteHandler struct {
	store VoteStore
}

func NewVoteHandler(store VoteStore) *VoteHandler {
	return &VoteHandler{store: store}
}

func (h *VoteHandler) Apply(ctx context.Context, action Action, pollID string, rx gateway.Reaction) error {
	switch action {
	case ActionAdd:
		if err := h.store.Cast(ctx, pollID, rx.UserID, rx.Emoji); err != nil {
			return fmt.Errorf("vote on %s: %w", pollID, err)
		}
	case ActionRemove:
		if err := h.store.Retract(ctx, pollID, rx.UserID, rx.Emoji); err != nil {
			return fmt.Errorf("unvote on %s: %w", pollID, err)
		}
	}
	return nil
}

// Tally returns the current per-emoji counts for a poll.
func (h *VoteHandler) Tally(ctx context.Context, pollID string) (map[string]int, error) {
	return h.store.Tally(ctx, pollID)
}
