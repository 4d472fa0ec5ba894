package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/qrgate/internal/httputil"
	"github.com/allisson/qrgate/internal/scan/http/dto"
)

// TokenHandler serves the cached token table.
type TokenHandler struct {
	tokens TokenSource
	logger *slog.Logger
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(tokens TokenSource, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// ListTokensHandler lists cached tokens with optional search and pagination.
// GET /v1/tokens?q=&offset=&limit= - Returns 200 OK.
// The table reflects the last periodic refresh and is never used to verify a scan.
func (h *TokenHandler) ListTokensHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	matches := h.tokens.Tokens().Search(c.Query("q"))
	window := httputil.Slice(matches, page)

	c.JSON(http.StatusOK, dto.MapTokensToResponse(window, len(matches), page.Offset, page.Limit, h.tokens.UpdatedAt()))
}
