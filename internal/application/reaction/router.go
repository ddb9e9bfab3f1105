package reaction

import (
	"context"
	"sync"

	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// Action is the semantic direction of a reaction event.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

// Router fetches the target message of a reaction event, parses its tag,
// and forwards to the matching handler family. Messages without exactly
// one embed, unrecognized tags, and the bot's own reactions are no-ops.
type Router struct {
	client gateway.Client
	roles  *RoleHandler
	votes  *VoteHandler // nil when no vote backend is configured
	cache  *messageCache
}

func NewRouter(client gateway.Client, roles *RoleHandler, votes *VoteHandler) *Router {
	return &Router{
		client: client,
		roles:  roles,
		votes:  votes,
		cache:  newMessageCache(64),
	}
}

func (r *Router) Handle(ctx context.Context, action Action, rx gateway.Reaction) error {
	if rx.UserID == r.client.BotUser().ID {
		return nil
	}

	msg, err := r.getMessage(ctx, rx.ChannelID, rx.MessageID)
	if err != nil {
		return err
	}
	if len(msg.Embeds) != 1 {
		return nil
	}

	tag := ParseTag(msg.Embeds[0].Footer)
	switch tag.Intent {
	case IntentRole:
		return r.roles.Apply(ctx, action, msg.Embeds[0], rx)
	case IntentVote:
		if r.votes == nil {
			return nil
		}
		return r.votes.Apply(ctx, action, tag.PollID, rx)
	default:
		return nil
	}
}

func (r *Router) getMessage(ctx context.Context, channelID, messageID string) (*gateway.Message, error) {
	if m, ok := r.cache.get(messageID); ok {
		return m, nil
	}
	m, err := r.client.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		return nil, err
	}
	r.cache.put(m)
	return m, nil
}

// messageCache is a small bounded FIFO cache of fetched messages. Tagged
// messages attract bursts of reactions; caching avoids refetching the same
// message for every event in the burst.
type messageCache struct {
	mu    sync.Mutex
	cap   int
	order []string
	byID  map[string]*gateway.Message
}

func newMessageCache(capacity int) *messageCache {
	return &messageCache{
		cap:  capacity,
		byID: make(map[string]*gateway.Message, capacity),
	}
}

func (c *messageCache) get(id string) (*gateway.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.byID[id]
	return m, ok
}

func (c *messageCache) put(m *gateway.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[m.ID]; ok {
		return
	}
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.byID, oldest)
	}
	c.order = append(c.order, m.ID)
	c.byID[m.ID] = m
}
