package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
	storeUseCase "github.com/allisson/qrgate/internal/tokenstore/usecase"
)

// RunIssueTokens creates count fresh tokens in the reference store and prints them.
// Text output prints one token per line so it can be piped into a QR encoder.
func RunIssueTokens(
	ctx context.Context,
	useCase storeUseCase.TokenUseCase,
	logger *slog.Logger,
	w io.Writer,
	count int,
	format string,
	length int,
	output string,
) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	tokenFormat, err := domain.ParseFormat(format)
	if err != nil {
		return fmt.Errorf("invalid token format: %s", format)
	}

	logger.Info("issuing tokens",
		slog.Int("count", count),
		slog.String("format", string(tokenFormat)),
	)

	tokens, err := useCase.Issue(ctx, domain.IssueInput{Count: count, Format: tokenFormat, Length: length})
	if err != nil {
		return fmt.Errorf("failed to issue tokens: %w", err)
	}

	if output == OutputJSON {
		values := make([]string, 0, len(tokens))
		for _, token := range tokens {
			values = append(values, token.Value)
		}
		if err := writeJSON(w, map[string]any{"count": len(values), "tokens": values}); err != nil {
			return err
		}
	} else {
		for _, token := range tokens {
			if _, err := fmt.Fprintln(w, token.Value); err != nil {
				return err
			}
		}
	}

	logger.Info("tokens issued", slog.Int("count", len(tokens)))
	return nil
}
