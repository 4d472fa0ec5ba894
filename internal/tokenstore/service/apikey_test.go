package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyHasher(t *testing.T) {
	hasher := NewAPIKeyHasher()

	plain, hashed, err := hasher.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, plain)
	assert.NotEqual(t, plain, hashed)

	assert.True(t, hasher.Compare(plain, hashed))
	assert.False(t, hasher.Compare(plain+"x", hashed))
	assert.False(t, hasher.Compare(plain, "not-a-hash"))
}

func TestAPIKeyHasher_Hash(t *testing.T) {
	hasher := NewAPIKeyHasher()

	first, err := hasher.Hash("kiosk-key")
	require.NoError(t, err)
	second, err := hasher.Hash("kiosk-key")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes must be salted")
	assert.True(t, hasher.Compare("kiosk-key", first))
	assert.True(t, hasher.Compare("kiosk-key", second))
}
