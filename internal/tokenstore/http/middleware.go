package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/httputil"
	"github.com/allisson/qrgate/internal/tokenstore/service"
)

// APIKeyMiddleware requires "Authorization: Bearer <key>" matching hashedKey.
//
// An empty hashedKey disables the check, leaving the endpoint open.
// Missing, malformed or wrong keys answer 401 Unauthorized.
func APIKeyMiddleware(hasher service.APIKeyHasher, hashedKey string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hashedKey == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("api key check failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("api key check failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainKey := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainKey == "" || !hasher.Compare(plainKey, hashedKey) {
			logger.Debug("api key check failed: key mismatch",
				slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
