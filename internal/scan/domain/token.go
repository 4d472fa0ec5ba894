// Package domain defines the scan session model: tokens, outcomes, history and session state.
package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Token is an opaque admission token. Values are compared after trimming
// leading and trailing whitespace.
type Token string

// NormalizeToken trims surrounding whitespace from a raw decoded or fetched value.
func NormalizeToken(raw string) Token {
	return Token(strings.TrimSpace(raw))
}

// String returns the token value.
func (t Token) String() string {
	return string(t)
}

// Fingerprint returns a short BLAKE2b digest of the token, used wherever a token
// would otherwise be written to logs or the journal.
func Fingerprint(t Token) string {
	sum := blake2b.Sum256([]byte(t))
	return hex.EncodeToString(sum[:8])
}

// TokenSet is the sequence of valid tokens as last returned by the token store.
// Order is kept and duplicates are not removed.
type TokenSet struct {
	tokens []Token
}

// NewTokenSet normalizes every raw value.
func NewTokenSet(raw []string) TokenSet {
	tokens := make([]Token, len(raw))
	for i, value := range raw {
		tokens[i] = NormalizeToken(value)
	}
	return TokenSet{tokens: tokens}
}

// Contains reports whether the normalized token is a member of the set.
func (s TokenSet) Contains(token Token) bool {
	needle := NormalizeToken(string(token))
	for _, t := range s.tokens {
		if t == needle {
			return true
		}
	}
	return false
}

// Len returns the number of entries, duplicates included.
func (s TokenSet) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the entries.
func (s TokenSet) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Search returns the entries containing query, case-insensitively. An empty
// query matches every entry.
func (s TokenSet) Search(query string) []Token {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Tokens()
	}

	out := make([]Token, 0)
	for _, t := range s.tokens {
		if strings.Contains(strings.ToLower(string(t)), query) {
			out = append(out, t)
		}
	}
	return out
}
