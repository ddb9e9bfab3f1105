package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/MerrickKing/walrusbot/internal/pkg/id"
)

const consoleChannelID = "console"

// Console is a local Client implementation that treats stdin lines as DMs
// from a single operator user and writes outbound traffic to stdout. It is
// the default transport when no platform connector is configured, and lets
// the whole verification flow run end to end from a terminal.
type Console struct {
	out    io.Writer
	events chan Event
	self   User
	user   User

	mu   sync.Mutex
	sent map[string]*Message // messageID -> embed messages posted by the bot
}

// NewConsole builds a console client reading events from r. The event
// stream closes when r reaches EOF.
func NewConsole(r io.Reader, w io.Writer) *Console {
	c := &Console{
		out:    w,
		events: make(chan Event),
		self:   User{ID: "bot", Username: "walrusbot", Bot: true},
		user:   User{ID: "operator", Username: "operator"},
		sent:   make(map[string]*Message),
	}
	go c.readLoop(r)
	return c
}

func (c *Console) readLoop(r io.Reader) {
	defer close(c.events)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		c.events <- MessageCreate{Message: Message{
			ID:        id.New(),
			ChannelID: consoleChannelID,
			Kind:      ChannelDM,
			Author:    c.user,
			Content:   line,
		}}
	}
	if err := sc.Err(); err != nil {
		slog.Warn("console input closed", "error", err)
	}
}

func (c *Console) Events() <-chan Event { return c.events }

func (c *Console) SendMessage(_ context.Context, channelID, content string) error {
	_, err := fmt.Fprintf(c.out, "[%s] %s\n", channelID, content)
	return err
}

func (c *Console) SendEmbed(_ context.Context, channelID, content string, embed Embed) (string, error) {
	msgID := id.New()
	c.mu.Lock()
	c.sent[msgID] = &Message{
		ID:        msgID,
		ChannelID: channelID,
		Kind:      ChannelDM,
		Author:    c.self,
		Content:   content,
		Embeds:    []Embed{embed},
	}
	c.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n  == %s ==\n", channelID, content, embed.Title)
	for _, f := range embed.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Value)
	}
	fmt.Fprintf(&b, "  (%s) id=%s\n", embed.Footer, msgID)
	_, err := io.WriteString(c.out, b.String())
	return msgID, err
}

func (c *Console) OpenDM(_ context.Context, _ string) (string, error) {
	return consoleChannelID, nil
}

func (c *Console) FetchMessage(_ context.Context, _ string, messageID string) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.sent[messageID]
	if !ok {
		return nil, fmt.Errorf("fetch message %s: not found", messageID)
	}
	return msg, nil
}

func (c *Console) AddRole(_ context.Context, _, userID, roleID string) error {
	_, err := fmt.Fprintf(c.out, "[roles] grant %s to %s\n", roleID, userID)
	return err
}

func (c *Console) RemoveRole(_ context.Context, _, userID, roleID string) error {
	_, err := fmt.Fprintf(c.out, "[roles] revoke %s from %s\n", roleID, userID)
	return err
}

// MemberHasAnyRole always reports true: the console operator is staff.
func (c *Console) MemberHasAnyRole(_ context.Context, _, _ string, _ []string) (bool, error) {
	return true, nil
}

func (c *Console) BotUser() User { return c.self }
