package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MerrickKing/walrusbot/internal/domain"
)

// Confirmations is the keyed map of pending email-change confirmations:
// user id → the proposed email and a resolution channel the dispatcher
// feeds the user's next message into. Holding this state here, rather
// than in a handler's call stack, keeps the wait resumable and
// cancellable independent of any single task.
type Confirmations struct {
	mu      sync.Mutex
	waiting map[string]*waiter
	timeout time.Duration
}

type waiter struct {
	email      string
	deadline   time.Time
	reply      chan string
	superseded chan struct{}
}

func NewConfirmations(timeout time.Duration) *Confirmations {
	return &Confirmations{
		waiting: make(map[string]*waiter),
		timeout: timeout,
	}
}

// Begin registers a pending confirmation for the user, superseding any
// existing one — the earlier waiter is cancelled and its transition
// aborts without touching the record.
func (c *Confirmations) Begin(userID, proposedEmail string) *waiter {
	w := &waiter{
		email:      proposedEmail,
		deadline:   time.Now().Add(c.timeout),
		reply:      make(chan string, 1),
		superseded: make(chan struct{}),
	}
	c.mu.Lock()
	if old, ok := c.waiting[userID]; ok {
		close(old.superseded)
	}
	c.waiting[userID] = w
	c.mu.Unlock()
	return w
}

// Offer delivers a non-command message to the user's pending confirmation,
// if any. Returns true when a waiter consumed it.
func (c *Confirmations) Offer(userID, content string) bool {
	c.mu.Lock()
	w, ok := c.waiting[userID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case w.reply <- content:
		return true
	default:
		// Waiter already has an undelivered reply; it will resolve on that.
		return false
	}
}

// Await suspends until the user replies, the window elapses, the waiter is
// superseded by a newer submission, or ctx is cancelled. The entry is
// removed from the map on every outcome, so no PendingConfirmation is left
// dangling.
func (c *Confirmations) Await(ctx context.Context, userID string, w *waiter) (string, error) {
	defer c.remove(userID, w)

	timer := time.NewTimer(time.Until(w.deadline))
	defer timer.Stop()

	select {
	case content := <-w.reply:
		return content, nil
	case <-timer.C:
		return "", fmt.Errorf("no confirmation within %s: %w", c.timeout, domain.ErrConfirmationTimeout)
	case <-w.superseded:
		return "", fmt.Errorf("superseded by a newer submission: %w", domain.ErrConfirmationTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// remove deletes the entry only if it still belongs to this waiter; a
// superseding Begin may have replaced it already.
func (c *Confirmations) remove(userID string, w *waiter) {
	c.mu.Lock()
	if cur, ok := c.waiting[userID]; ok && cur == w {
		delete(c.waiting, userID)
	}
	c.mu.Unlock()
}
