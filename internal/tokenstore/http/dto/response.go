package dto

import (
	"time"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

// InvalidateTokenResponse acknowledges a consumed token.
type InvalidateTokenResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

// TokenResponse represents an issued token.
type TokenResponse struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueTokensResponse lists a freshly issued batch.
type IssueTokensResponse struct {
	Data []TokenResponse `json:"data"`
}

// MapIssuedTokensToResponse converts issued tokens into the API response.
func MapIssuedTokensToResponse(tokens []*domain.StoredToken) IssueTokensResponse {
	data := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		data = append(data, TokenResponse{
			Value:     token.Value,
			CreatedAt: token.CreatedAt,
		})
	}
	return IssueTokensResponse{Data: data}
}
