package textdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnified(t *testing.T) {
	t.Parallel()

	diff, err := Unified("intro.md", "# Intro\n\nold line\nend\n", "# Intro\n\nnew line\nend", 0)
	require.NoError(t, err)

	assert.Contains(t, diff, "--- a/intro.md\n")
	assert.Contains(t, diff, "+++ b/intro.md\n")
	assert.Contains(t, diff, "-old line\n+new line\n")
	assert.Contains(t, diff, " end\n")

	added, removed := Stats(diff)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestUnified_Identical(t *testing.T) {
	t.Parallel()

	diff, err := Unified("intro.md", "same\n", "same\n", 3)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestUnified_FromEmpty(t *testing.T) {
	t.Parallel()

	diff, err := Unified("new.md", "", "one\ntwo\n", 1)
	require.NoError(t, err)

	added, removed := Stats(diff)
	assert.Equal(t, 2, added)
	assert.Zero(t, removed)
}
