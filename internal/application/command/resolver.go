package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// Resolver strips the configured trigger from a message, resolves the
// command path against the registry, applies guards, converts arguments,
// and invokes the handler.
type Resolver struct {
	registry *Registry
	client   gateway.Client
	prefix   string
}

func NewResolver(registry *Registry, client gateway.Client, prefix string) *Resolver {
	return &Resolver{registry: registry, client: client, prefix: prefix}
}

// Handle processes one message. A nil return means either successful
// execution or a message that was not a command invocation at all.
// domain.ErrUnknownCommand is returned for unmatched paths so the caller
// can drop it silently; every other error is meant to be surfaced as a
// single reply.
func (r *Resolver) Handle(ctx context.Context, msg gateway.Message) error {
	rest, ok := r.stripTrigger(msg.Content)
	if !ok {
		return nil
	}

	tokens := tokenize(rest)
	if len(tokens) < 2 {
		return fmt.Errorf("path %q: %w", rest, domain.ErrUnknownCommand)
	}
	me, cmd, found := r.registry.lookup(tokens[0].text, tokens[1].text)
	if !found {
		return fmt.Errorf("path %q %q: %w", tokens[0].text, tokens[1].text, domain.ErrUnknownCommand)
	}

	for _, g := range append(append([]Guard{}, me.guards...), cmd.Guards...) {
		if err := g(ctx, r.client, msg); err != nil {
			return err
		}
	}

	argTokens := tokens[2:]
	var overload *Overload
	for i := range cmd.Overloads {
		if cmd.Overloads[i].matches(len(argTokens)) {
			overload = &cmd.Overloads[i]
			break
		}
	}
	if overload == nil {
		return &ArgumentError{
			Name:     cmd.Name,
			Position: len(argTokens),
			Detail:   "wrong number of arguments",
		}
	}

	args, err := overload.convert(rest, argTokens)
	if err != nil {
		return err
	}

	return overload.Handler(ctx, &Invocation{Message: msg, args: args})
}

// stripTrigger removes the command prefix or a leading bot mention.
// The second return is false when the message is not an invocation.
func (r *Resolver) stripTrigger(content string) (string, bool) {
	if r.prefix != "" && strings.HasPrefix(content, r.prefix) {
		return strings.TrimLeft(content[len(r.prefix):], " "), true
	}
	for _, m := range gateway.MentionPrefixes(r.client.BotUser().ID) {
		if strings.HasPrefix(content, m) {
			return strings.TrimLeft(content[len(m):], " "), true
		}
	}
	return "", false
}
