package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsSurface describes what a cross-origin caller may send to one server.
type corsSurface struct {
	headers     []string
	expose      []string
	credentials bool
}

var (
	// The operator page is normally same-origin; cross-origin callers only
	// read the session and push decodes.
	kioskCORS = corsSurface{
		headers: []string{"Content-Type"},
		expose:  []string{"X-Request-Id"},
	}

	// Browser kiosks on another origin call the store with a bearer key.
	storeCORS = corsSurface{
		headers:     []string{"Authorization", "Content-Type"},
		expose:      []string{"X-Request-Id", "Retry-After"},
		credentials: true,
	}
)

// newCORSMiddleware returns nil when CORS is disabled or no origin is usable.
func newCORSMiddleware(surface corsSurface, enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := ParseOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     surface.headers,
		ExposeHeaders:    surface.expose,
		AllowCredentials: surface.credentials,
		MaxAge:           12 * time.Hour,
	})
}

// ParseOrigins splits a comma-separated origin list, dropping blanks.
func ParseOrigins(list string) []string {
	var origins []string
	for _, part := range strings.Split(list, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
