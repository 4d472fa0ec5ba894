package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeHasher accepts plainKey == hashedKey + "-plain".
type fakeHasher struct{}

func (fakeHasher) Generate() (string, string, error) { return "k-plain", "k", nil }
func (fakeHasher) Hash(plainKey string) (string, error) {
	return plainKey[:len(plainKey)-len("-plain")], nil
}
func (fakeHasher) Compare(plainKey, hashedKey string) bool { return plainKey == hashedKey+"-plain" }

func newProtectedRouter(hashedKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyMiddleware(fakeHasher{}, hashedKey, testLogger()))
	router.POST("/api/tokens/invalidate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		hashedKey    string
		header       string
		expectedCode int
	}{
		{name: "Disabled_NoHeaderNeeded", hashedKey: "", expectedCode: http.StatusOK},
		{name: "Success", hashedKey: "secret", header: "Bearer secret-plain", expectedCode: http.StatusOK},
		{name: "Success_CaseInsensitivePrefix", hashedKey: "secret", header: "bearer secret-plain", expectedCode: http.StatusOK},
		{name: "Error_MissingHeader", hashedKey: "secret", expectedCode: http.StatusUnauthorized},
		{name: "Error_Malformed", hashedKey: "secret", header: "Basic abc", expectedCode: http.StatusUnauthorized},
		{name: "Error_EmptyKey", hashedKey: "secret", header: "Bearer ", expectedCode: http.StatusUnauthorized},
		{name: "Error_WrongKey", hashedKey: "secret", header: "Bearer other-plain", expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProtectedRouter(tt.hashedKey)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/tokens/invalidate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func newLimitedRouter(ctx context.Context, rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IPRateLimitMiddleware(ctx, rps, burst, testLogger()))
	router.GET("/api/tokens", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})
	return router
}

func doFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tokens", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestIPRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newLimitedRouter(ctx, 10, 20)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234").Code)
	}
}

func TestIPRateLimitMiddleware_BlocksExceedingLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newLimitedRouter(ctx, 1, 2)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234").Code)
	}

	w := doFrom(router, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestIPRateLimitMiddleware_IndependentPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newLimitedRouter(ctx, 1, 1)

	assert.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doFrom(router, "10.0.0.2:1234").Code)
}

func TestIPRateLimiterStore_EvictIdle(t *testing.T) {
	store := &ipRateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")

	val, ok := store.limiters.Load("10.0.0.1")
	assert.True(t, ok)
	val.(*ipRateLimiterEntry).lastAccess = time.Now().Add(-2 * limiterIdleTTL)

	store.evictIdle(time.Now().Add(-limiterIdleTTL))

	_, ok = store.limiters.Load("10.0.0.1")
	assert.False(t, ok)
	_, ok = store.limiters.Load("10.0.0.2")
	assert.True(t, ok)
}
