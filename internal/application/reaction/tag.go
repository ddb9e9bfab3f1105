// Package reaction classifies reaction-add/remove events by the structured
// tag a message's embed footer carries and forwards them to the matching
// handler family.
package reaction

import "strings"

// Intent is the closed set of handler families a tag can select. Parsing
// happens once per event; routing switches on the intent, never on raw
// footer substrings.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentRole
	IntentVote
)

const (
	roleFooter = "Role-Grant Embed"
	votePrefix = "Vote:"
)

// Tag is the parsed classification of a message's footer.
type Tag struct {
	Intent Intent
	PollID string // set for IntentVote
}

// RoleFooter is the footer text the bot stamps on role-grant embeds.
func RoleFooter() string { return roleFooter }

// VoteFooter builds the footer for a poll embed.
func VoteFooter(pollID string) string { return votePrefix + pollID }

// ParseTag classifies an embed footer. Unrecognized footers, including a
// vote tag with an empty poll id, yield IntentUnknown and are ignored by
// the router.
func ParseTag(footer string) Tag {
	switch {
	case footer == roleFooter:
		return Tag{Intent: IntentRole}
	case strings.HasPrefix(footer, votePrefix):
		pollID := footer[len(votePrefix):]
		if pollID == "" {
			return Tag{Intent: IntentUnknown}
		}
		return Tag{Intent: IntentVote, PollID: pollID}
	default:
		return Tag{Intent: IntentUnknown}
	}
}
