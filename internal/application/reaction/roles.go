package reaction

import (
	"context"
	"fmt"

	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// RoleHandler grants and revokes roles mapped from the emoji used on a
// role-grant embed. The emoji → role id mapping lives in the embed's own
// field list, so no separate routing table has to be kept in memory.
type RoleHandler struct {
	client gateway.Client
}

func NewRoleHandler(client gateway.Client) *RoleHandler {
	return &RoleHandler{client: client}
}

// Apply grants (ActionAdd) or revokes (ActionRemove) the role the emoji
// maps to. Emojis with no mapping in the embed are ignored.
func (h *RoleHandler) Apply(ctx context.Context, action Action, embed gateway.Embed, rx gateway.Reaction) error {
	roleID := roleForEmoji(embed, rx.Emoji)
	if roleID == "" {
		return nil
	}
	switch action {
	case ActionAdd:
		if err := h.client.AddRole(ctx, rx.GuildID, rx.UserID, roleID); err != nil {
			return fmt.Errorf("grant role %s to %s: %w", roleID, rx.UserID, err)
		}
	case ActionRemove:
		if err := h.client.RemoveRole(ctx, rx.GuildID, rx.UserID, roleID); err != nil {
			return fmt.Errorf("revoke role %s from %s: %w", roleID, rx.UserID, err)
		}
	}
	return nil
}

func roleForEmoji(embed gateway.Embed, emoji string) string {
	for _, f := range embed.Fields {
		if f.Name == emoji {
			return f.Value
		}
	}
	return ""
}
