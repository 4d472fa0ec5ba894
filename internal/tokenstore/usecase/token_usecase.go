package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/allisson/qrgate/internal/database"
	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/tokenstore/domain"
	"github.com/allisson/qrgate/internal/tokenstore/service"
)

// maxCollisionRetries bounds regeneration when a generated value already exists.
const maxCollisionRetries = 3

type tokenUseCase struct {
	txManager database.TxManager
	tokenRepo TokenRepository
	now       func() time.Time
}

// NewTokenUseCase creates a TokenUseCase.
func NewTokenUseCase(txManager database.TxManager, tokenRepo TokenRepository) TokenUseCase {
	return &tokenUseCase{
		txManager: txManager,
		tokenRepo: tokenRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the currently valid token values.
func (t *tokenUseCase) List(ctx context.Context) ([]string, error) {
	return t.tokenRepo.ListValid(ctx)
}

// Invalidate consumes the token with a conditional update, so two concurrent
// invalidations of the same value cannot both succeed.
func (t *tokenUseCase) Invalidate(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)

	changed, err := t.tokenRepo.Consume(ctx, value, t.now())
	if err != nil {
		return err
	}
	if changed {
		return nil
	}

	// Nothing changed: tell unknown tokens apart from already consumed ones.
	token, err := t.tokenRepo.Get(ctx, value)
	if err != nil {
		return err
	}
	if token.IsConsumed() {
		return domain.ErrTokenConsumed
	}
	return apperrors.Wrap(apperrors.ErrConflict, "token changed concurrently")
}

// Issue generates input.Count tokens and stores them atomically.
func (t *tokenUseCase) Issue(ctx context.Context, input domain.IssueInput) ([]*domain.StoredToken, error) {
	if input.Count < 1 || input.Count > domain.MaxIssueCount {
		return nil, domain.ErrInvalidCount
	}
	if input.Length == 0 {
		input.Length = domain.DefaultTokenLength
	}

	generator, err := service.NewTokenGenerator(input.Format)
	if err != nil {
		return nil, err
	}

	tokens := make([]*domain.StoredToken, 0, input.Count)
	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		for i := 0; i < input.Count; i++ {
			token, err := t.issueOne(ctx, generator, input.Length)
			if err != nil {
				return err
			}
			tokens = append(tokens, token)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func (t *tokenUseCase) issueOne(ctx context.Context, generator service.TokenGenerator, length int) (*domain.StoredToken, error) {
	var lastErr error
	for attempt := 0; attempt < maxCollisionRetries; attempt++ {
		value, err := generator.Generate(length)
		if err != nil {
			return nil, err
		}

		token := &domain.StoredToken{Value: value, CreatedAt: t.now()}
		err = t.tokenRepo.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !apperrors.Is(err, domain.ErrTokenAlreadyExists) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
