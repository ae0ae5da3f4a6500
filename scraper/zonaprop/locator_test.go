package zonaprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateBlockFindsPostingBlock(t *testing.T) {
	block, ok := LocateBlock(postingPage)
	require.True(t, ok)
	assert.Equal(t, avisoInfoLiteral, block)
}

func TestLocateBlockRespectsNesting(t *testing.T) {
	page := `<script>const avisoInfo = {'a': {'b': {}}, 'c': '};', 'd': [1, {'e': 2}]};</script>`

	block, ok := LocateBlock(page)
	require.True(t, ok)
	assert.Equal(t, `{'a': {'b': {}}, 'c': '};', 'd': [1, {'e': 2}]}`, block)
}

func TestLocateBlockNotFound(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"empty", ""},
		{"no marker", `<script>const other = {'a': 1};</script>`},
		{"no terminator", `<script>const avisoInfo = {'a': 1}</script>`},
		{"unbalanced", `<script>const avisoInfo = {'a': {'b': 1};</script>`},
		{"not an object", `<script>const avisoInfo = null;</script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, ok := LocateBlock(tt.page)
			assert.False(t, ok)
			assert.Empty(t, block)
		})
	}
}

func TestLocateBlockAllowsCommentBeforeTerminator(t *testing.T) {
	block, ok := LocateBlock("const avisoInfo = {'a': 1} /* end */ ;")
	require.True(t, ok)
	assert.Equal(t, "{'a': 1}", block)
}
