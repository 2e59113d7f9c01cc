package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForCommand(t *testing.T) {
	assert.Equal(t, AX, ForCommand("match"))
	assert.Equal(t, DB, ForCommand("db"))
	assert.Empty(t, ForCommand("unknown"))
}

func TestDescribe(t *testing.T) {
	desc, ok := Describe(SE)
	assert.True(t, ok)
	assert.Equal(t, "Semantic description similarity", desc)

	_, ok = Describe("?")
	assert.False(t, ok)
}

func TestGlyphsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range []string{AM, IX, AX, SE, DB, Program, Project, Grant} {
		assert.False(t, seen[g], "duplicate glyph %s", g)
		seen[g] = true
	}
}
