package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Token
	}{
		{name: "unchanged", raw: "ABC123", expected: "ABC123"},
		{name: "surrounding spaces", raw: "  ABC123  ", expected: "ABC123"},
		{name: "tabs and newlines", raw: "\tABC123\r\n", expected: "ABC123"},
		{name: "inner spaces kept", raw: " AB C ", expected: "AB C"},
		{name: "blank", raw: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeToken(tt.raw))
		})
	}
}

func TestTokenSet_Contains(t *testing.T) {
	set := NewTokenSet([]string{"ABC123 ", "XYZ", " ABC123"})

	assert.True(t, set.Contains("ABC123"))
	assert.True(t, set.Contains("  ABC123\n"))
	assert.True(t, set.Contains("XYZ"))
	assert.False(t, set.Contains("abc123"))
	assert.False(t, set.Contains("ABC12"))
	assert.False(t, set.Contains(""))
}

func TestTokenSet_KeepsOrderAndDuplicates(t *testing.T) {
	set := NewTokenSet([]string{"B", "A", "B"})

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []Token{"B", "A", "B"}, set.Tokens())
}

func TestTokenSet_TokensReturnsCopy(t *testing.T) {
	set := NewTokenSet([]string{"A"})

	tokens := set.Tokens()
	tokens[0] = "mutated"

	assert.Equal(t, []Token{"A"}, set.Tokens())
}

func TestTokenSet_Empty(t *testing.T) {
	var set TokenSet

	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains("A"))
	assert.Empty(t, set.Search(""))
}

func TestTokenSet_Search(t *testing.T) {
	set := NewTokenSet([]string{"ALPHA-1", "beta-2", "Alpha-3"})

	assert.Equal(t, []Token{"ALPHA-1", "Alpha-3"}, set.Search("alpha"))
	assert.Equal(t, []Token{"beta-2"}, set.Search(" BETA "))
	assert.Equal(t, set.Tokens(), set.Search(""))
	assert.Empty(t, set.Search("gamma"))
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("ABC123")

	assert.Len(t, fp, 16)
	assert.Equal(t, fp, Fingerprint("ABC123"))
	assert.NotEqual(t, fp, Fingerprint("ABC124"))
	assert.NotContains(t, fp, "ABC123")
}
