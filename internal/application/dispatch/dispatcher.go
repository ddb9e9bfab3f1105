// Package dispatch is the single entry point for inbound platform events:
// it classifies each event, drops the bot's own traffic, and hands the
// rest to handlers — one goroutine per event, no cross-user ordering.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/MerrickKing/walrusbot/internal/application/command"
	"github.com/MerrickKing/walrusbot/internal/application/reaction"
	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// MessageHandler resolves a message into a command execution.
type MessageHandler interface {
	Handle(ctx context.Context, msg gateway.Message) error
}

// ReactionHandler routes a reaction event by its message tag.
type ReactionHandler interface {
	Handle(ctx context.Context, action reaction.Action, rx gateway.Reaction) error
}

// JoinHandler reacts to new guild members.
type JoinHandler interface {
	NagUnverified(ctx context.Context, user gateway.User) error
}

// ConfirmationSink consumes non-command DMs for pending confirmations.
type ConfirmationSink interface {
	Offer(userID, content string) bool
}

// Dispatcher consumes the gateway event stream. Dispatch is
// fire-and-forget: the stream is never blocked on a handler, and related
// events for the same user run concurrently — the record store arbitrates
// any resulting write races.
type Dispatcher struct {
	client        gateway.Client
	commands      MessageHandler
	reactions     ReactionHandler
	joins         JoinHandler
	confirmations ConfirmationSink

	wg sync.WaitGroup
}

func New(client gateway.Client, commands MessageHandler, reactions ReactionHandler, joins JoinHandler, confirmations ConfirmationSink) *Dispatcher {
	return &Dispatcher{
		client:        client,
		commands:      commands,
		reactions:     reactions,
		joins:         joins,
		confirmations: confirmations,
	}
}

// Run consumes events until ctx is cancelled or the stream closes, then
// waits for in-flight handlers to finish.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.client.Events():
			if !ok {
				return
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				defer recoverPanic()
				d.handle(ctx, ev)
			}()
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev gateway.Event) {
	switch ev := ev.(type) {
	case gateway.MessageCreate:
		d.handleMessage(ctx, ev.Message)
	case gateway.ReactionAdd:
		d.handleReaction(ctx, reaction.ActionAdd, ev.Reaction)
	case gateway.ReactionRemove:
		d.handleReaction(ctx, reaction.ActionRemove, ev.Reaction)
	case gateway.MemberJoin:
		if ev.User.ID == d.client.BotUser().ID {
			return
		}
		if err := d.joins.NagUnverified(ctx, ev.User); err != nil {
			slog.Warn("join handler failed", "user_id", ev.User.ID, "err", err)
		}
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg gateway.Message) {
	if msg.Author.Bot || msg.Author.ID == d.client.BotUser().ID {
		return
	}

	// A DM may be the reply a pending email-change confirmation is waiting
	// for. Commands still resolve below, so a fresh "verify email" both
	// supersedes the old wait and runs normally.
	if msg.Kind == gateway.ChannelDM {
		d.confirmations.Offer(msg.Author.ID, msg.Content)
	}

	err := d.commands.Handle(ctx, msg)
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrUnknownCommand) {
		slog.Debug("unknown command", "user_id", msg.Author.ID, "err", err)
		return
	}

	slog.Info("command failed", "user_id", msg.Author.ID, "channel_id", msg.ChannelID, "err", err)
	if replyErr := d.client.SendMessage(ctx, msg.ChannelID, replyFor(err)); replyErr != nil {
		slog.Warn("error reply failed", "channel_id", msg.ChannelID, "err", replyErr)
	}
}

func (d *Dispatcher) handleReaction(ctx context.Context, action reaction.Action, rx gateway.Reaction) {
	if err := d.reactions.Handle(ctx, action, rx); err != nil {
		slog.Warn("reaction handler failed", "message_id", rx.MessageID, "user_id", rx.UserID, "err", err)
	}
}

// replyFor converts a handler error into the single user-facing reply sent
// to the originating channel.
func replyFor(err error) string {
	var guardErr *command.GuardError
	if errors.As(err, &guardErr) {
		return guardErr.Reply
	}
	var argErr *command.ArgumentError
	if errors.As(err, &argErr) {
		return "I couldn't read that: " + argErr.Error()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return "That doesn't appear to be a valid email address! Please try again."
	case errors.Is(err, domain.ErrAlreadyVerified):
		return "You're already verified! If you're missing roles, ask a committee member to update them for you."
	case errors.Is(err, domain.ErrCodeMismatch):
		return "That code doesn't match the one I sent you. Double-check it and try again."
	case errors.Is(err, domain.ErrMailTransient):
		return "There was an issue sending your email! Try again in a few minutes, and if the problem persists then please contact a committee member."
	case errors.Is(err, domain.ErrConflict):
		return "Another change to your record got there first. Please rerun the command."
	case errors.Is(err, domain.ErrConfirmationTimeout):
		return "You didn't confirm your email change within the time limit. If you still wish to change your email then please rerun the command."
	case errors.Is(err, domain.ErrNotFound):
		return "I don't have a verification in progress for you — start with `verify email your@address.edu`."
	default:
		return "Something went wrong running that command. Please try again later."
	}
}

func recoverPanic() {
	if r := recover(); r != nil {
		slog.Error("handler panicked", "panic", r)
	}
}
