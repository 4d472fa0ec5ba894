package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	scanUseCase "github.com/allisson/qrgate/internal/scan/usecase"
)

// RunListTokens fetches the valid token list from the remote store, the same
// way the kiosk refresh loop does, and prints the tokens matching query.
func RunListTokens(
	ctx context.Context,
	lister scanUseCase.TokenLister,
	logger *slog.Logger,
	w io.Writer,
	query string,
	output string,
) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	tokens, err := lister.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	matches := tokens.Search(query)
	logger.Debug("tokens listed", slog.Int("total", tokens.Len()), slog.Int("matches", len(matches)))

	if output == OutputJSON {
		values := make([]string, 0, len(matches))
		for _, token := range matches {
			values = append(values, token.String())
		}
		return writeJSON(w, map[string]any{"total": tokens.Len(), "tokens": values})
	}

	for _, token := range matches {
		if _, err := fmt.Fprintln(w, token.String()); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%d of %d token(s)\n", len(matches), tokens.Len())
	return err
}
