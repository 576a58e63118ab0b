package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configFile, []byte(content), 0600)
	require.NoError(t, err)
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
blocklist_path: "config/blocklist.json"
server:
  host: 127.0.0.1
  port: 9090
  cors_origins:
    - "https://market.example.com"
auth:
  api_keys:
    - key1
    - key2
stellar:
  horizon_url: "https://horizon.stellar.org"
  network_passphrase: "Public Global Stellar Network ; September 2015"
  tx_timeout: "60s"
  base_fee: 200
  history_limit: 100
metadata:
  gateways:
    - "https://gateway.example.com/ipfs"
  http_timeout: "5s"
pinning:
  jwt: "pinata-jwt"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "config/blocklist.json", cfg.BlocklistPath)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, []string{"https://market.example.com"}, cfg.Server.CORSOrigins)
				assert.Equal(t, []string{"key1", "key2"}, cfg.Auth.APIKeys)
				assert.Equal(t, "https://horizon.stellar.org", cfg.Stellar.HorizonURL)
				assert.Equal(t, "Public Global Stellar Network ; September 2015", cfg.Stellar.NetworkPassphrase)
				assert.Equal(t, time.Minute, cfg.Stellar.TxTimeout)
				assert.Equal(t, int64(200), cfg.Stellar.BaseFee)
				assert.Equal(t, 100, cfg.Stellar.HistoryLimit)
				assert.Equal(t, []string{"https://gateway.example.com/ipfs"}, cfg.Metadata.Gateways)
				assert.Equal(t, 5*time.Second, cfg.Metadata.HTTPTimeout)
				assert.Equal(t, "pinata-jwt", cfg.Pinning.JWT)
			},
		},
		{
			name:       "config with defaults",
			configFile: `debug: false`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 30, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
				assert.Equal(t, "https://horizon-testnet.stellar.org", cfg.Stellar.HorizonURL)
				assert.Equal(t, "Test SDF Network ; September 2015", cfg.Stellar.NetworkPassphrase)
				assert.Equal(t, 180*time.Second, cfg.Stellar.TxTimeout)
				assert.Equal(t, int64(100), cfg.Stellar.BaseFee)
				assert.Equal(t, 200, cfg.Stellar.HistoryLimit)
				assert.Equal(t, float64(10), cfg.Stellar.RequestsPerSecond)
				assert.Len(t, cfg.Metadata.Gateways, 3)
				assert.Equal(t, "https://ipfs.io/ipfs", cfg.Metadata.CanonicalGateway)
				assert.Equal(t, 15*time.Second, cfg.Metadata.HTTPTimeout)
				assert.Equal(t, 8, cfg.Scanner.WorkerPoolSize)
				assert.Equal(t, "https://api.pinata.cloud/pinning", cfg.Pinning.APIURL)
				assert.Equal(t, int64(10<<20), cfg.Pinning.MaxUploadBytes)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
				server:
				  port: invalid
			`,
			expectError: true,
		},
		{
			name: "invalid duration",
			configFile: `
stellar:
  tx_timeout: "soon"
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIConfig_MissingFile(t *testing.T) {
	cfg, err := LoadAPIConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"), "")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadEventEmitterConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *EventEmitterConfig)
	}{
		{
			name: "valid config file",
			configFile: `
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  max_reconnects: 5
  reconnect_wait: "5s"
  duplicate_window: "1h"
emitter:
  interval: "10s"
  skip_backlog: true
  publish_timeout: "3s"
scanner:
  worker_pool_size: 16
`,
			validate: func(t *testing.T, cfg *EventEmitterConfig) {
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, 5, cfg.NATS.MaxReconnects)
				assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, time.Hour, cfg.NATS.DuplicateWindow)
				assert.Equal(t, 10*time.Second, cfg.Emitter.Interval)
				assert.True(t, cfg.Emitter.SkipBacklog)
				assert.Equal(t, 3*time.Second, cfg.Emitter.PublishTimeout)
				assert.Equal(t, 16, cfg.Scanner.WorkerPoolSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
nats:
  url: "nats://localhost:4222"
`,
			validate: func(t *testing.T, cfg *EventEmitterConfig) {
				assert.Equal(t, "MARKET_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "event-emitter", cfg.NATS.ConnectionName)
				assert.Equal(t, 24*time.Hour, cfg.NATS.DuplicateWindow)
				assert.Equal(t, 30*time.Second, cfg.Emitter.Interval)
				assert.False(t, cfg.Emitter.SkipBacklog)
				assert.Equal(t, 10*time.Second, cfg.Emitter.PublishTimeout)
				assert.Equal(t, 200, cfg.Stellar.HistoryLimit)
			},
		},
		{
			name:        "missing nats url",
			configFile:  `debug: true`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadEventEmitterConfig(writeConfig(t, tt.configFile), "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadCLIConfig(t *testing.T) {
	configFile := `
signer:
  secret_seed: "SXXX"
pinning:
  api_key: "key"
  api_secret: "secret"
`
	cfg, err := LoadCLIConfig(writeConfig(t, configFile), "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "SXXX", cfg.Signer.SecretSeed)
	assert.Equal(t, "key", cfg.Pinning.APIKey)
	assert.Equal(t, "secret", cfg.Pinning.APISecret)
	assert.Equal(t, float64(3), cfg.Pinning.RequestsPerSecond)
	assert.Equal(t, "https://horizon-testnet.stellar.org", cfg.Stellar.HorizonURL)
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	// Create temporary directory for env files
	envDir := filepath.Join(tmpDir, "env")
	err := os.MkdirAll(envDir, 0750)
	require.NoError(t, err)

	// Viper uses FF_MARKET_ prefix, so env vars need the prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `FF_MARKET_DEBUG=true
FF_MARKET_SERVER_PORT=9999
FF_MARKET_STELLAR_HORIZON_URL=https://env-horizon.example.com
FF_MARKET_METADATA_GATEWAYS=https://a.example.com/ipfs,https://b.example.com/ipfs
`
	err = os.WriteFile(envFile, []byte(envContent), 0600)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, key := range []string{
			"FF_MARKET_DEBUG",
			"FF_MARKET_SERVER_PORT",
			"FF_MARKET_STELLAR_HORIZON_URL",
			"FF_MARKET_METADATA_GATEWAYS",
		} {
			_ = os.Unsetenv(key)
		}
	})

	// Create config file with different values to verify env vars override
	configPath := writeConfig(t, `
debug: false
server:
  port: 8081
stellar:
  horizon_url: "https://file-horizon.example.com"
`)

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://env-horizon.example.com", cfg.Stellar.HorizonURL)
	assert.Equal(t, []string{"https://a.example.com/ipfs", "https://b.example.com/ipfs"}, cfg.Metadata.Gateways)
}
