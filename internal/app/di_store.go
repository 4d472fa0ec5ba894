package app

import (
	"context"
	"fmt"

	"github.com/allisson/qrgate/internal/database"
	"github.com/allisson/qrgate/internal/http"
	storeHTTP "github.com/allisson/qrgate/internal/tokenstore/http"
	"github.com/allisson/qrgate/internal/tokenstore/repository"
	"github.com/allisson/qrgate/internal/tokenstore/service"
	storeUseCase "github.com/allisson/qrgate/internal/tokenstore/usecase"
)

// TokenRepository returns the stored token repository for the configured driver.
func (c *Container) TokenRepository() (storeUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// TokenUseCase returns the reference token store use case.
func (c *Container) TokenUseCase() (storeUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// APIKeyHasher returns the argon2id API key hasher.
func (c *Container) APIKeyHasher() service.APIKeyHasher {
	c.apiKeyHasherInit.Do(func() {
		c.apiKeyHasher = service.NewAPIKeyHasher()
	})
	return c.apiKeyHasher
}

// StoreTokenHandler returns the /api/tokens HTTP handler.
func (c *Container) StoreTokenHandler() (*storeHTTP.TokenHandler, error) {
	var err error
	c.storeTokenHandlerInit.Do(func() {
		c.storeTokenHandler, err = c.initStoreTokenHandler()
		if err != nil {
			c.initErrors["storeTokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storeTokenHandler"]; exists {
		return nil, storedErr
	}
	return c.storeTokenHandler, nil
}

// StoreServer builds the token store HTTP server. ctx bounds the rate
// limiter's background cleanup, so the server is not cached.
func (c *Container) StoreServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for store server: %w", err)
	}

	handler, err := c.StoreTokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for store server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for store server: %w", err)
	}

	if c.config.StoreAPIKeyHash == "" {
		c.Logger().Warn("STORE_API_KEY_HASH is empty - invalidate and issue endpoints are unauthenticated")
	}

	server := http.NewServer(db, c.config.StoreServerHost, c.config.StoreServerPort, c.Logger())
	server.SetupStoreRouter(ctx, http.StoreRouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		GinMode:          c.config.GetGinMode(),
		TokenHandler:     handler,
		APIKeyHasher:     c.APIKeyHasher(),
		APIKeyHash:       c.config.StoreAPIKeyHash,
		RateLimitEnabled: c.config.RateLimitEnabled,
		RateLimitRPS:     c.config.RateLimitRequestsPerSec,
		RateLimitBurst:   c.config.RateLimitBurst,
		MetricsProvider:  metricsProvider,
	})

	return server, nil
}

func (c *Container) initTokenRepository() (storeUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return repository.NewMySQLTokenRepository(db), nil
	case database.DriverPostgres:
		return repository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initTokenUseCase() (storeUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	baseUseCase := storeUseCase.NewTokenUseCase(txManager, tokenRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return storeUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initStoreTokenHandler() (*storeHTTP.TokenHandler, error) {
	useCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	return storeHTTP.NewTokenHandler(useCase, c.Logger()), nil
}
