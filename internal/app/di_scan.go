package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/allisson/qrgate/internal/http"
	"github.com/allisson/qrgate/internal/scan/decoder"
	scanHTTP "github.com/allisson/qrgate/internal/scan/http"
	"github.com/allisson/qrgate/internal/scan/journal"
	scanUseCase "github.com/allisson/qrgate/internal/scan/usecase"
	"github.com/allisson/qrgate/internal/tokenstore/client"
)

// Decode source kinds.
const (
	DecodeSourcePush   = "push"
	DecodeSourceDevice = "device"
)

// TokenStoreClient returns the HTTP client of the remote token store.
func (c *Container) TokenStoreClient() (*client.Client, error) {
	var err error
	c.tokenStoreClientInit.Do(func() {
		c.tokenStoreClient, err = c.initTokenStoreClient()
		if err != nil {
			c.initErrors["tokenStoreClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenStoreClient"]; exists {
		return nil, storedErr
	}
	return c.tokenStoreClient, nil
}

// TokenCache returns the cache shared by the refresh loop and the token table.
func (c *Container) TokenCache() *scanUseCase.TokenCache {
	c.tokenCacheInit.Do(func() {
		c.tokenCache = scanUseCase.NewTokenCache()
	})
	return c.tokenCache
}

// DecodeSource returns the configured decode source.
func (c *Container) DecodeSource() (scanUseCase.DecodeSource, error) {
	var err error
	c.decodeSourceInit.Do(func() {
		c.decodeSource, err = c.initDecodeSource()
		if err != nil {
			c.initErrors["decodeSource"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["decodeSource"]; exists {
		return nil, storedErr
	}
	return c.decodeSource, nil
}

// PushSource returns the push decode source, or nil when another source is configured.
func (c *Container) PushSource() (*decoder.PushSource, error) {
	if _, err := c.DecodeSource(); err != nil {
		return nil, err
	}
	return c.pushSource, nil
}

// Journal returns the SQLite scan journal, or nil when journaling is disabled.
func (c *Container) Journal() (*journal.Journal, error) {
	var err error
	c.scanJournalInit.Do(func() {
		c.scanJournal, err = c.initJournal()
		if err != nil {
			c.initErrors["scanJournal"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scanJournal"]; exists {
		return nil, storedErr
	}
	return c.scanJournal, nil
}

// Controller returns the scan session controller.
func (c *Container) Controller() (*scanUseCase.Controller, error) {
	var err error
	c.controllerInit.Do(func() {
		c.controller, err = c.initController()
		if err != nil {
			c.initErrors["controller"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["controller"]; exists {
		return nil, storedErr
	}
	return c.controller, nil
}

// RefreshLoop returns the periodic token refresh loop.
func (c *Container) RefreshLoop() (*scanUseCase.RefreshLoop, error) {
	var err error
	c.refreshLoopInit.Do(func() {
		c.refreshLoop, err = c.initRefreshLoop()
		if err != nil {
			c.initErrors["refreshLoop"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refreshLoop"]; exists {
		return nil, storedErr
	}
	return c.refreshLoop, nil
}

// SessionHandler returns the operator session HTTP handler.
func (c *Container) SessionHandler() (*scanHTTP.SessionHandler, error) {
	var err error
	c.sessionHandlerInit.Do(func() {
		c.sessionHandler, err = c.initSessionHandler()
		if err != nil {
			c.initErrors["sessionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionHandler"]; exists {
		return nil, storedErr
	}
	return c.sessionHandler, nil
}

// KioskServer returns the operator HTTP server with its router configured.
func (c *Container) KioskServer() (*http.Server, error) {
	var err error
	c.kioskServerInit.Do(func() {
		c.kioskServer, err = c.initKioskServer()
		if err != nil {
			c.initErrors["kioskServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kioskServer"]; exists {
		return nil, storedErr
	}
	return c.kioskServer, nil
}

// resolveStoreAPIKey prefers the KMS-sealed key over the plain one.
func (c *Container) resolveStoreAPIKey(ctx context.Context) (string, error) {
	if c.config.TokenStoreAPIKeyCiphertext == "" {
		return c.config.TokenStoreAPIKey, nil
	}
	if c.config.KMSKeyURI == "" {
		return "", fmt.Errorf("KMS_KEY_URI is required to decrypt TOKEN_STORE_API_KEY_CIPHERTEXT")
	}
	return c.KMSService().DecryptAPIKey(ctx, c.config.KMSKeyURI, c.config.TokenStoreAPIKeyCiphertext)
}

func (c *Container) initTokenStoreClient() (*client.Client, error) {
	apiKey, err := c.resolveStoreAPIKey(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token store api key: %w", err)
	}

	storeClient, err := client.New(client.Config{
		BaseURL: c.config.TokenStoreURL,
		Timeout: c.config.TokenStoreTimeout,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token store client: %w", err)
	}
	return storeClient, nil
}

func (c *Container) initDecodeSource() (scanUseCase.DecodeSource, error) {
	switch strings.ToLower(c.config.DecodeSource) {
	case DecodeSourcePush, "":
		c.pushSource = decoder.NewPushSource()
		return c.pushSource, nil
	case DecodeSourceDevice:
		return decoder.NewLineSource(decoder.FileOpener(c.config.DecodeDevicePath), c.Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported decode source: %s", c.config.DecodeSource)
	}
}

func (c *Container) initJournal() (*journal.Journal, error) {
	if !c.config.JournalEnabled {
		return nil, nil
	}

	j, err := journal.Open(context.Background(), c.config.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan journal: %w", err)
	}
	return j, nil
}

func (c *Container) initController() (*scanUseCase.Controller, error) {
	storeClient, err := c.TokenStoreClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get token store client for controller: %w", err)
	}

	source, err := c.DecodeSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get decode source for controller: %w", err)
	}

	scanJournal, err := c.Journal()
	if err != nil {
		return nil, fmt.Errorf("failed to get journal for controller: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for controller: %w", err)
	}

	var store scanUseCase.TokenStore = storeClient
	if c.config.MetricsEnabled {
		store = scanUseCase.NewTokenStoreWithMetrics(store, businessMetrics)
	}

	// A nil *journal.Journal must not become a non-nil interface.
	var j scanUseCase.Journal
	if scanJournal != nil {
		j = scanJournal
	}

	cfg := scanUseCase.Config{
		PresentDuration: c.config.PresentDuration,
		// One fetch plus one invalidate, each bounded by the client timeout.
		VerifyTimeout:   2 * c.config.TokenStoreTimeout,
		HistoryEnabled:  c.config.HistoryEnabled,
		HistorySize:     c.config.HistorySize,
		AutoRestart:     c.config.AutoRestartScanner,
	}

	return scanUseCase.NewController(cfg, store, source, c.TokenCache(), j, businessMetrics, c.Logger()), nil
}

func (c *Container) initRefreshLoop() (*scanUseCase.RefreshLoop, error) {
	storeClient, err := c.TokenStoreClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get token store client for refresh loop: %w", err)
	}

	return scanUseCase.NewRefreshLoop(c.config.RefreshInterval, storeClient, c.TokenCache(), c.Logger()), nil
}

func (c *Container) initSessionHandler() (*scanHTTP.SessionHandler, error) {
	controller, err := c.Controller()
	if err != nil {
		return nil, fmt.Errorf("failed to get controller for session handler: %w", err)
	}

	pushSource, err := c.PushSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get push source for session handler: %w", err)
	}

	// Only the push source accepts payloads over HTTP.
	var receiver scanHTTP.PayloadReceiver
	if pushSource != nil {
		receiver = pushSource
	}

	return scanHTTP.NewSessionHandler(controller, receiver, c.Logger()), nil
}

func (c *Container) initKioskServer() (*http.Server, error) {
	logger := c.Logger()

	controller, err := c.Controller()
	if err != nil {
		return nil, fmt.Errorf("failed to get controller for kiosk server: %w", err)
	}

	sessionHandler, err := c.SessionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get session handler for kiosk server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for kiosk server: %w", err)
	}

	var allowedOrigins []string
	if c.config.CORSEnabled {
		allowedOrigins = http.ParseOrigins(c.config.CORSAllowOrigins)
	}

	server := http.NewServer(nil, c.config.ServerHost, c.config.ServerPort, logger)
	server.AddReadinessCheck("session", func(ctx context.Context) error {
		_, err := controller.Snapshot(ctx)
		return err
	})
	server.SetupKioskRouter(http.KioskRouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		GinMode:          c.config.GetGinMode(),
		SessionHandler:   sessionHandler,
		TokenHandler:     scanHTTP.NewTokenHandler(c.TokenCache(), logger),
		StreamHandler:    scanHTTP.NewStreamHandler(controller, allowedOrigins, logger),
		MetricsProvider:  metricsProvider,
	})

	return server, nil
}
