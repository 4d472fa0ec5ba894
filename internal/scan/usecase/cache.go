package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// TokenCache holds the most recently fetched TokenSet. The set is replaced
// wholesale and never mutated in place, so readers always see a complete set.
// It serves the operator token table only; verification never reads it.
type TokenCache struct {
	mu        sync.RWMutex
	tokens    domain.TokenSet
	updatedAt time.Time
	now       func() time.Time
}

// NewTokenCache creates an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Replace swaps in a new set.
func (c *TokenCache) Replace(tokens domain.TokenSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
	c.updatedAt = c.now()
}

// Tokens returns the current set.
func (c *TokenCache) Tokens() domain.TokenSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// UpdatedAt returns when the set was last replaced, zero if never.
func (c *TokenCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Refresh fetches a fresh set and replaces the cache. On error the previous
// set is kept.
func (c *TokenCache) Refresh(ctx context.Context, lister TokenLister) error {
	tokens, err := lister.ListTokens(ctx)
	if err != nil {
		return err
	}
	c.Replace(tokens)
	return nil
}
