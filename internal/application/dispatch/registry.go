package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MerrickKing/walrusbot/internal/application/command"
	"github.com/MerrickKing/walrusbot/internal/application/reaction"
	"github.com/MerrickKing/walrusbot/internal/application/verify"
	"github.com/MerrickKing/walrusbot/internal/gateway"
	"github.com/MerrickKing/walrusbot/internal/pkg/id"
)

// RegistryDeps carries everything the bot's command graph needs.
type RegistryDeps struct {
	Client     gateway.Client
	Verify     *verify.Service
	Votes      *reaction.VoteHandler // nil when no vote backend is configured
	StaffRoles []string              // roles allowed to run staff commands
}

// BuildRegistry constructs the static command graph once at startup.
func BuildRegistry(deps RegistryDeps) *command.Registry {
	dmOnly := command.RequireContext(gateway.ChannelDM,
		"You've got to use this in a DM to me! That way no one else sees your email.")

	modules := []command.Module{
		{
			Name: "verify",
			Commands: []command.Command{
				{
					Name:   "email",
					Guards: []command.Guard{dmOnly},
					Overloads: []command.Overload{{
						Args: []command.ArgSpec{{Name: "email", Kind: command.ArgRemainder}},
						Handler: func(ctx context.Context, inv *command.Invocation) error {
							return deps.Verify.SubmitEmail(ctx, inv.Message.Author, inv.Message.ChannelID, inv.String(0))
						},
					}},
				},
				{
					Name:   "code",
					Guards: []command.Guard{dmOnly},
					Overloads: []command.Overload{{
						Args: []command.ArgSpec{{Name: "code", Kind: command.ArgString}},
						Handler: func(ctx context.Context, inv *command.Invocation) error {
							return deps.Verify.SubmitCode(ctx, inv.Message.Author, inv.Message.ChannelID, inv.String(0))
						},
					}},
				},
			},
		},
	}

	if deps.Votes != nil {
		modules = append(modules, command.Module{
			Name:   "vote",
			Guards: []command.Guard{command.RequireAnyRole(deps.StaffRoles...)},
			Commands: []command.Command{
				{
					Name: "start",
					Overloads: []command.Overload{{
						Args: []command.ArgSpec{{Name: "question", Kind: command.ArgRemainder}},
						Handler: func(ctx context.Context, inv *command.Invocation) error {
							pollID := id.New()
							_, err := deps.Client.SendEmbed(ctx, inv.Message.ChannelID, "", gateway.Embed{
								Title:  inv.String(0),
								Footer: reaction.VoteFooter(pollID),
							})
							return err
						},
					}},
				},
				{
					Name: "count",
					Overloads: []command.Overload{{
						Args: []command.ArgSpec{{Name: "poll-id", Kind: command.ArgString}},
						Handler: func(ctx context.Context, inv *command.Invocation) error {
							counts, err := deps.Votes.Tally(ctx, inv.String(0))
							if err != nil {
								return err
							}
							return deps.Client.SendMessage(ctx, inv.Message.ChannelID, formatTally(counts))
						},
					}},
				},
			},
		})
	}

	return command.NewRegistry(modules...)
}

func formatTally(counts map[string]int) string {
	if len(counts) == 0 {
		return "No votes yet."
	}
	emojis := make([]string, 0, len(counts))
	for e := range counts {
		emojis = append(emojis, e)
	}
	sort.Strings(emojis)
	parts := make([]string, 0, len(emojis))
	for _, e := range emojis {
		parts = append(parts, fmt.Sprintf("%s %d", e, counts[e]))
	}
	return strings.Join(parts, " | ")
}
