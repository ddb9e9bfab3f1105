package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	cases := []struct {
		name   string
		footer string
		want   Tag
	}{
		{"role footer", RoleFooter(), Tag{Intent: IntentRole}},
		{"vote footer", VoteFooter("p123"), Tag{Intent: IntentVote, PollID: "p123"}},
		{"vote footer without poll id", "Vote:", Tag{Intent: IntentUnknown}},
		{"unrelated footer", "brought to you by walrusbot", Tag{Intent: IntentUnknown}},
		{"empty footer", "", Tag{Intent: IntentUnknown}},
		{"role footer with trailing text", RoleFooter() + " v2", Tag{Intent: IntentUnknown}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTag(tc.footer))
		})
	}
}
