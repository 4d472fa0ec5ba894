package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qrgate/internal/scan/domain"
	"github.com/allisson/qrgate/internal/scan/usecase/mocks"
)

func TestTokenCache(t *testing.T) {
	cache := NewTokenCache()
	assert.Equal(t, 0, cache.Tokens().Len())
	assert.True(t, cache.UpdatedAt().IsZero())

	cache.Replace(domain.NewTokenSet([]string{"A", "B"}))

	assert.Equal(t, 2, cache.Tokens().Len())
	assert.False(t, cache.UpdatedAt().IsZero())
}

func TestTokenCache_Refresh(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store := &mocks.MockTokenStore{}
		store.On("ListTokens", mock.Anything).Return(domain.NewTokenSet([]string{"A"}), nil).Once()
		cache := NewTokenCache()

		require.NoError(t, cache.Refresh(context.Background(), store))
		assert.True(t, cache.Tokens().Contains("A"))
	})

	t.Run("Error_KeepsPreviousTokens", func(t *testing.T) {
		store := &mocks.MockTokenStore{}
		store.On("ListTokens", mock.Anything).
			Return(domain.TokenSet{}, &domain.FetchError{Status: 502, Err: errors.New("bad gateway")}).Once()
		cache := NewTokenCache()
		cache.Replace(domain.NewTokenSet([]string{"A", "B"}))
		updatedAt := cache.UpdatedAt()

		err := cache.Refresh(context.Background(), store)

		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.Equal(t, 2, cache.Tokens().Len())
		assert.Equal(t, updatedAt, cache.UpdatedAt())
	})
}

func TestRefreshLoop_Start(t *testing.T) {
	store := &mocks.MockTokenStore{}
	store.On("ListTokens", mock.Anything).Return(domain.NewTokenSet([]string{"A"}), nil).Once()
	store.On("ListTokens", mock.Anything).Return(domain.TokenSet{}, &domain.FetchError{Err: errors.New("down")}).Once()
	store.On("ListTokens", mock.Anything).Return(domain.NewTokenSet([]string{"A", "B", "C"}), nil)

	cache := NewTokenCache()
	loop := NewRefreshLoop(10*time.Millisecond, store, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Start(ctx) }()

	require.Eventually(t, func() bool { return cache.Tokens().Len() == 3 }, waitTimeout, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.GreaterOrEqual(t, len(store.Calls), 3)
}

func TestRefreshLoop_ImmediateFirstFetch(t *testing.T) {
	store := &mocks.MockTokenStore{}
	store.On("ListTokens", mock.Anything).Return(domain.NewTokenSet([]string{"A"}), nil)

	cache := NewTokenCache()
	loop := NewRefreshLoop(time.Hour, store, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Start(ctx) }()

	require.Eventually(t, func() bool { return cache.Tokens().Len() == 1 }, waitTimeout, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	store.AssertNumberOfCalls(t, "ListTokens", 1)
}

func TestNewRefreshLoop_DefaultInterval(t *testing.T) {
	loop := NewRefreshLoop(0, &mocks.MockTokenStore{}, NewTokenCache(), nil)
	assert.Equal(t, DefaultRefreshInterval, loop.interval)
}
