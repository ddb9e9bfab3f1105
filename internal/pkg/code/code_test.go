package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Length(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)
	assert.Len(t, c, 8)
}

func TestNew_AlphabetOnly(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := New(8)
		require.NoError(t, err)
		for _, r := range c {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestNew_NotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		c, err := New(8)
		require.NoError(t, err)
		seen[c] = true
	}
	assert.Greater(t, len(seen), 1)
}
