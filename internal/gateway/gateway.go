// Package gateway defines the boundary to the chat platform: the typed
// events the transport delivers over its persistent connection and the
// client operations handlers may call back into. The wire protocol and
// authentication handshake live behind this interface.
package gateway

import "context"

// ChannelKind is the category of conversation surface an event arrived on.
type ChannelKind int

const (
	ChannelDM ChannelKind = iota
	ChannelGuild
)

// User identifies a platform user.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// EmbedField is a name/value pair attached to an embed.
type EmbedField struct {
	Name  string
	Value string
}

// Embed is the structured metadata block a message may carry. The Footer
// holds the reaction tag the router classifies on.
type Embed struct {
	Title  string
	Footer string
	Fields []EmbedField
}

// Message is a chat message as delivered or fetched from the platform.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Kind      ChannelKind
	Author    User
	Content   string
	Embeds    []Embed
}

// Event is an inbound platform event. The concrete types below form a
// closed set; the dispatcher switches on them exactly once per event.
type Event interface{ isEvent() }

// MessageCreate is delivered for every new message.
type MessageCreate struct {
	Message Message
}

// ReactionAdd is delivered when a user adds an emoji reaction.
type ReactionAdd struct {
	Reaction Reaction
}

// ReactionRemove is delivered when a user removes an emoji reaction.
type ReactionRemove struct {
	Reaction Reaction
}

// MemberJoin is delivered when a user joins a guild.
type MemberJoin struct {
	GuildID string
	User    User
}

// Reaction carries the payload shared by add and remove events.
type Reaction struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Emoji     string
}

func (MessageCreate) isEvent()  {}
func (ReactionAdd) isEvent()    {}
func (ReactionRemove) isEvent() {}
func (MemberJoin) isEvent()     {}

// Client is the operations surface handlers call back into. Implementations
// wrap a concrete platform SDK; tests use in-memory fakes.
type Client interface {
	// Events returns the ordered per-connection event stream. The channel
	// is closed when the connection shuts down.
	Events() <-chan Event

	// SendMessage posts a plain reply in the given channel.
	SendMessage(ctx context.Context, channelID, content string) error

	// SendEmbed posts a message carrying a structured embed and returns
	// the new message's id.
	SendEmbed(ctx context.Context, channelID, content string, embed Embed) (messageID string, err error)

	// OpenDM resolves (or creates) the DM channel for a user.
	OpenDM(ctx context.Context, userID string) (channelID string, err error)

	// FetchMessage retrieves a message, from cache when possible.
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	// MemberHasAnyRole reports whether the guild member holds at least one
	// of the named roles.
	MemberHasAnyRole(ctx context.Context, guildID, userID string, roleNames []string) (bool, error)

	// BotUser is the bot's own identity; events it authored are dropped.
	BotUser() User
}

// MentionPrefixes returns the literal forms a message may start with to
// address the bot directly instead of using the command prefix.
func MentionPrefixes(botID string) []string {
	return []string{"<@" + botID + ">", "<@!" + botID + ">"}
}
