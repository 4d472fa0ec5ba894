// Package usecase implements the reference token store's business logic.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

// TokenRepository defines persistence operations for stored tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// ListValid returns the values of unconsumed tokens.
	ListValid(ctx context.Context) ([]string, error)

	// Create stores a new token. Returns ErrTokenAlreadyExists on a value collision.
	Create(ctx context.Context, token *domain.StoredToken) error

	// Get retrieves a token by value. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, value string) (*domain.StoredToken, error)

	// Consume marks a still-valid token consumed and reports whether it did.
	Consume(ctx context.Context, value string, at time.Time) (bool, error)
}

// TokenUseCase defines the token store operations.
type TokenUseCase interface {
	// List returns the currently valid token values.
	List(ctx context.Context) ([]string, error)

	// Invalidate consumes a token exactly once. A second call for the same value
	// returns ErrTokenConsumed; an unknown value returns ErrTokenNotFound.
	Invalidate(ctx context.Context, value string) error

	// Issue generates and stores a batch of new tokens in one transaction.
	Issue(ctx context.Context, input domain.IssueInput) ([]*domain.StoredToken, error)
}
