// Package http provides the reference token store's HTTP handlers and middleware.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/qrgate/internal/httputil"
	"github.com/allisson/qrgate/internal/scan/domain"
	"github.com/allisson/qrgate/internal/tokenstore/http/dto"
	tokenUseCase "github.com/allisson/qrgate/internal/tokenstore/usecase"
	customValidation "github.com/allisson/qrgate/internal/validation"
)

// TokenHandler handles the /api/tokens endpoints consumed by kiosks.
type TokenHandler struct {
	tokenUseCase tokenUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase tokenUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// ListHandler returns the valid tokens as a bare JSON array of strings.
// GET /api/tokens - Returns 200 OK.
func (h *TokenHandler) ListHandler(c *gin.Context) {
	values, err := h.tokenUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if values == nil {
		values = []string{}
	}
	c.JSON(http.StatusOK, values)
}

// InvalidateHandler consumes a token.
// POST /api/tokens/invalidate - Returns 200 OK, 404 for unknown tokens, 409 when already consumed.
func (h *TokenHandler) InvalidateHandler(c *gin.Context) {
	var req dto.InvalidateTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.tokenUseCase.Invalidate(c.Request.Context(), req.Token); err != nil {
		h.logger.Debug("invalidate rejected",
			slog.String("fingerprint", domain.Fingerprint(domain.NormalizeToken(req.Token))),
			slog.Any("error", err))
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.InvalidateTokenResponse{
		Token:  string(domain.NormalizeToken(req.Token)),
		Status: "invalidated",
	})
}

// IssueHandler generates a batch of new tokens.
// POST /api/tokens - Returns 201 Created.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokensRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tokens, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToIssueInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssuedTokensToResponse(tokens))
}
