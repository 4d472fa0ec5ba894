package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qrgate/internal/config"
	"github.com/allisson/qrgate/internal/kms"
	"github.com/allisson/qrgate/internal/scan/decoder"
)

func kioskConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:          "info",
		ServerHost:        "localhost",
		ServerPort:        8080,
		TokenStoreURL:     "http://127.0.0.1:5001",
		TokenStoreTimeout: 5 * time.Second,
		RefreshInterval:   10 * time.Second,
		PresentDuration:   2 * time.Second,
		HistoryEnabled:    true,
		HistorySize:       10,
		DecodeSource:      "push",
		JournalEnabled:    true,
		JournalPath:       filepath.Join(t.TempDir(), "journal.db"),
		MetricsEnabled:    false,
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := kioskConfig(t)

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

// TestContainerLogger verifies that the logger is a singleton.
func TestContainerLogger(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "debug"})

	logger := container.Logger()
	require.NotNil(t, logger)
	assert.Same(t, logger, container.Logger())
}

// TestContainerLoggerDefaultLevel verifies that logger defaults to info level.
func TestContainerLoggerDefaultLevel(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "invalid"})

	assert.NotNil(t, container.Logger())
}

// TestContainerInitializationErrors verifies that initialization errors are sticky.
func TestContainerInitializationErrors(t *testing.T) {
	container := NewContainer(&config.Config{DBDriver: "invalid_driver"})

	_, err := container.DB()
	assert.Error(t, err)

	_, err = container.DB()
	assert.Error(t, err)

	_, err = container.TokenUseCase()
	assert.Error(t, err)
}

// TestContainerLazyInitialization verifies that components are only initialized when accessed.
func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.Nil(t, container.logger)
	require.NotNil(t, container.Logger())
	assert.NotNil(t, container.logger)
}

func TestContainerBusinessMetrics(t *testing.T) {
	t.Run("NoOpWhenDisabled", func(t *testing.T) {
		container := NewContainer(&config.Config{MetricsEnabled: false})

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		assert.Nil(t, provider)

		businessMetrics, err := container.BusinessMetrics()
		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})

	t.Run("OpenTelemetryWhenEnabled", func(t *testing.T) {
		container := NewContainer(&config.Config{MetricsEnabled: true, MetricsNamespace: "qrgate_test"})

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		require.NotNil(t, provider)

		_, err = container.BusinessMetrics()
		require.NoError(t, err)

		metricsServer, err := container.MetricsServer()
		require.NoError(t, err)
		assert.NotNil(t, metricsServer)

		assert.NoError(t, container.Shutdown(context.Background()))
	})
}

func TestContainerKioskWiring(t *testing.T) {
	container := NewContainer(kioskConfig(t))
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	source, err := container.DecodeSource()
	require.NoError(t, err)
	assert.IsType(t, &decoder.PushSource{}, source)

	pushSource, err := container.PushSource()
	require.NoError(t, err)
	assert.NotNil(t, pushSource)

	controller, err := container.Controller()
	require.NoError(t, err)
	require.NotNil(t, controller)

	loop, err := container.RefreshLoop()
	require.NoError(t, err)
	assert.NotNil(t, loop)

	server, err := container.KioskServer()
	require.NoError(t, err)
	assert.NotNil(t, server.GetHandler())

	j, err := container.Journal()
	require.NoError(t, err)
	assert.NotNil(t, j)
}

func TestContainerDecodeSource(t *testing.T) {
	t.Run("Device", func(t *testing.T) {
		cfg := kioskConfig(t)
		cfg.DecodeSource = "device"
		cfg.DecodeDevicePath = "/dev/null"
		container := NewContainer(cfg)

		source, err := container.DecodeSource()
		require.NoError(t, err)
		assert.IsType(t, &decoder.LineSource{}, source)

		pushSource, err := container.PushSource()
		require.NoError(t, err)
		assert.Nil(t, pushSource)
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := kioskConfig(t)
		cfg.DecodeSource = "camera2000"
		container := NewContainer(cfg)

		_, err := container.DecodeSource()
		assert.ErrorContains(t, err, "unsupported decode source")

		_, err = container.Controller()
		assert.Error(t, err)
	})
}

func TestContainerJournalDisabled(t *testing.T) {
	cfg := kioskConfig(t)
	cfg.JournalEnabled = false
	container := NewContainer(cfg)

	j, err := container.Journal()
	require.NoError(t, err)
	assert.Nil(t, j)

	_, err = container.Controller()
	assert.NoError(t, err)
}

func TestContainerTokenStoreClient(t *testing.T) {
	t.Run("InvalidURL", func(t *testing.T) {
		cfg := kioskConfig(t)
		cfg.TokenStoreURL = "ftp://example.com"
		container := NewContainer(cfg)

		_, err := container.TokenStoreClient()
		assert.Error(t, err)
	})

	t.Run("CiphertextWithoutKMS", func(t *testing.T) {
		cfg := kioskConfig(t)
		cfg.TokenStoreAPIKeyCiphertext = "c2VhbGVk"
		container := NewContainer(cfg)

		_, err := container.TokenStoreClient()
		assert.ErrorContains(t, err, "KMS_KEY_URI")
	})

	t.Run("CiphertextWithKMS", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)
		keyURI := "base64key://" + base64.URLEncoding.EncodeToString(key)

		ciphertext, err := kms.NewService().EncryptAPIKey(context.Background(), keyURI, "store-key")
		require.NoError(t, err)

		cfg := kioskConfig(t)
		cfg.KMSKeyURI = keyURI
		cfg.TokenStoreAPIKeyCiphertext = ciphertext
		container := NewContainer(cfg)

		apiKey, err := container.resolveStoreAPIKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "store-key", apiKey)

		_, err = container.TokenStoreClient()
		assert.NoError(t, err)
	})
}

// TestContainerShutdown verifies that the shutdown method can be called safely.
func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.TODO()))
}
