package command

import (
	"context"
	"fmt"

	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// Guard is a predicate applied before a command handler runs. A non-nil
// error wraps domain.ErrGuardRejected and carries the reply text shown to
// the invoking user.
type Guard func(ctx context.Context, client gateway.Client, msg gateway.Message) error

// GuardError is the surfaced form of a failed guard.
type GuardError struct {
	Reply string
}

func (e *GuardError) Error() string { return e.Reply }

func (e *GuardError) Unwrap() error { return domain.ErrGuardRejected }

// RequireContext restricts a command to one conversation surface. The
// reply text is shown when the command is used in the wrong one.
func RequireContext(kind gateway.ChannelKind, reply string) Guard {
	return func(_ context.Context, _ gateway.Client, msg gateway.Message) error {
		if msg.Kind != kind {
			return &GuardError{Reply: reply}
		}
		return nil
	}
}

// RequireAnyRole restricts a command to guild members holding at least one
// of the named roles.
func RequireAnyRole(roleNames ...string) Guard {
	return func(ctx context.Context, client gateway.Client, msg gateway.Message) error {
		if msg.Kind != gateway.ChannelGuild {
			return &GuardError{Reply: "That command only works inside a server."}
		}
		ok, err := client.MemberHasAnyRole(ctx, msg.GuildID, msg.Author.ID, roleNames)
		if err != nil {
			return fmt.Errorf("role check: %w", err)
		}
		if !ok {
			return &GuardError{Reply: "You don't have permission to use that command."}
		}
		return nil
	}
}
