package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultNamedCharacterReferencesCore(t *testing.T) {
	table := DefaultNamedCharacterReferences()
	cases := map[string][]rune{
		"amp;":  {'&'},
		"lt;":   {'<'},
		"gt;":   {'>'},
		"quot;": {'"'},
		"nbsp;": {0x00A0},
	}
	for name, want := range cases {
		got, ok := table[name]
		assert.True(t, ok, "missing reference %q", name)
		assert.Equal(t, want, got)
	}
}

func TestLongestMatchPicksLongerKeyOverShorterPrefix(t *testing.T) {
	table := NamedCharacterReferences{
		"not;":  {0xAC},
		"notin": {0x2209},
	}
	exp, n, ok := longestMatch(table, []rune("notin;"))
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	assert.Equal(t, []rune{0x2209}, exp)
}

func TestLongestMatchFallsBackToShorterKey(t *testing.T) {
	table := DefaultNamedCharacterReferences()
	exp, n, ok := longestMatch(table, []rune("amp=rest"))
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, []rune{'&'}, exp)
}

func TestLongestMatchNoMatch(t *testing.T) {
	table := DefaultNamedCharacterReferences()
	_, _, ok := longestMatch(table, []rune("zzzzz;"))
	assert.False(t, ok)
}
