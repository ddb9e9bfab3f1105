package reaction

import (
	"context"
	"testing"

	"github.com/MerrickKing/walrusbot/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockClient struct{ mock.Mock }

func (m *mockClient) Events() <-chan gateway.Event { return nil }
func (m *mockClient) SendMessage(ctx context.Context, channelID, content string) error {
	return m.Called(ctx, channelID, content).Error(0)
}
func (m *mockClient) SendEmbed(ctx context.Context, channelID, content string, embed gateway.Embed) (string, error) {
	args := m.Called(ctx, channelID, content, embed)
	return args.String(0), args.Error(1)
}
func (m *mockClient) OpenDM(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}
func (m *mockClient) FetchMessage(ctx context.Context, channelID, messageID string) (*gateway.Message, error) {
	args := m.Called(ctx, channelID, messageID)
	if msg, _ := args.Get(0).(*gateway.Message); msg != nil {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockClient) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return m.Called(ctx, guildID, userID, roleID).Error(0)
}
func (m *mockClient) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return m.Called(ctx, guildID, userID, roleID).Error(0)
}
func (m *mockClient) MemberHasAnyRole(ctx context.Context, guildID, userID string, roleNames []string) (bool, error) {
	args := m.Called(ctx, guildID, userID, roleNames)
	return args.Bool(0), args.Error(1)
}
func (m *mockClient) BotUser() gateway.User { return gateway.User{ID: "bot", Bot: true} }

type mockVoteStore struct{ mock.Mock }

func (m *mockVoteStore) Cast(ctx context.Context, pollID, userID, emoji string) error {
	return m.Called(ctx, pollID, userID, emoji).Error(0)
}
func (m *mockVoteStore) Retract(ctx context.Context, pollID, userID, emoji string) error {
	return m.Called(ctx, pollID, userID, emoji).Error(0)
}
func (m *mockVoteStore) Tally(ctx context.Context, pollID string) (map[string]int, error) {
	args := m.Called(ctx, pollID)
	if tally, _ := args.Get(0).(map[string]int); tally != nil {
		return tally, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- fixtures ---

func roleEmbedMessage() *gateway.Message {
	return &gateway.Message{
		ID:        "m1",
		ChannelID: "c1",
		Embeds: []gateway.Embed{{
			Title:  "Pick your roles",
			Footer: RoleFooter(),
			Fields: []gateway.EmbedField{
				{Name: "🦭", Value: "role-seal"},
				{Name: "🐧", Value: "role-penguin"},
			},
		}},
	}
}

func reactionFrom(userID, emoji string) gateway.Reaction {
	return gateway.Reaction{
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		UserID:    userID,
		Emoji:     emoji,
	}
}

// --- tests ---

func TestHandle_RoleGrantOnAdd(t *testing.T) {
	cl := &mockClient{}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(roleEmbedMessage(), nil)
	cl.On("AddRole", mock.Anything, "g1", "u1", "role-seal").Return(nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	err := r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "🦭"))

	require.NoError(t, err)
	cl.AssertExpectations(t)
}

func TestHandle_RoleRevokeOnRemove(t *testing.T) {
	cl := &mockClient{}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(roleEmbedMessage(), nil)
	cl.On("RemoveRole", mock.Anything, "g1", "u1", "role-penguin").Return(nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	err := r.Handle(context.Background(), ActionRemove, reactionFrom("u1", "🐧"))

	require.NoError(t, err)
	cl.AssertExpectations(t)
}

func TestHandle_UnmappedEmojiIgnored(t *testing.T) {
	cl := &mockClient{}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(roleEmbedMessage(), nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	err := r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "🎉"))

	require.NoError(t, err)
	cl.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_BotOwnReactionDropped(t *testing.T) {
	cl := &mockClient{}

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	err := r.Handle(context.Background(), ActionAdd, reactionFrom("bot", "🦭"))

	require.NoError(t, err)
	cl.AssertNotCalled(t, "FetchMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_UntaggedMessageIgnored(t *testing.T) {
	cl := &mockClient{}
	msg := &gateway.Message{ID: "m1", ChannelID: "c1", Embeds: []gateway.Embed{{Footer: "nothing special"}}}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(msg, nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	err := r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "🦭"))

	require.NoError(t, err)
	cl.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_NoEmbedIgnored(t *testing.T) {
	cl := &mockClient{}
	msg := &gateway.Message{ID: "m1", ChannelID: "c1", Content: "plain message"}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(msg, nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	require.NoError(t, r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "🦭")))
}

func TestHandle_VoteCastAndRetract(t *testing.T) {
	cl := &mockClient{}
	vs := &mockVoteStore{}
	msg := &gateway.Message{
		ID:        "m1",
		ChannelID: "c1",
		Embeds:    []gateway.Embed{{Title: "Pizza night?", Footer: VoteFooter("p1")}},
	}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(msg, nil)
	vs.On("Cast", mock.Anything, "p1", "u1", "👍").Return(nil)
	vs.On("Retract", mock.Anything, "p1", "u1", "👍").Return(nil)

	r := NewRouter(cl, NewRoleHandler(cl), NewVoteHandler(vs))
	require.NoError(t, r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "👍")))
	require.NoError(t, r.Handle(context.Background(), ActionRemove, reactionFrom("u1", "👍")))
	vs.AssertExpectations(t)
}

func TestHandle_VoteWithoutBackendIgnored(t *testing.T) {
	cl := &mockClient{}
	msg := &gateway.Message{
		ID:        "m1",
		ChannelID: "c1",
		Embeds:    []gateway.Embed{{Footer: VoteFooter("p1")}},
	}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(msg, nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	require.NoError(t, r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "👍")))
}

func TestHandle_SecondReactionServedFromCache(t *testing.T) {
	cl := &mockClient{}
	cl.On("FetchMessage", mock.Anything, "c1", "m1").Return(roleEmbedMessage(), nil).Once()
	cl.On("AddRole", mock.Anything, "g1", mock.Anything, "role-seal").Return(nil)

	r := NewRouter(cl, NewRoleHandler(cl), nil)
	require.NoError(t, r.Handle(context.Background(), ActionAdd, reactionFrom("u1", "🦭")))
	require.NoError(t, r.Handle(context.Background(), ActionAdd, reactionFrom("u2", "🦭")))
	cl.AssertExpectations(t)
}

func TestMessageCache_EvictsOldestAtCapacity(t *testing.T) {
	c := newMessageCache(2)
	c.put(&gateway.Message{ID: "a"})
	c.put(&gateway.Message{ID: "b"})
	c.put(&gateway.Message{ID: "c"})

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}
