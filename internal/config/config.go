package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-stellar-market/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// StellarConfig holds ledger network configuration
type StellarConfig struct {
	HorizonURL        string        `mapstructure:"horizon_url"`
	NetworkPassphrase string        `mapstructure:"network_passphrase"`
	TxTimeout         time.Duration `mapstructure:"tx_timeout"`
	BaseFee           int64         `mapstructure:"base_fee"`
	HistoryLimit      int           `mapstructure:"history_limit"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// MetadataConfig holds metadata resolver configuration
type MetadataConfig struct {
	Gateways         []string      `mapstructure:"gateways"`
	CanonicalGateway string        `mapstructure:"canonical_gateway"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
}

// ScannerConfig holds ledger scanner configuration
type ScannerConfig struct {
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
}

// PinningConfig holds pinning service configuration
type PinningConfig struct {
	APIURL            string   `mapstructure:"api_url"`
	JWT               string   `mapstructure:"jwt"`
	APIKey            string   `mapstructure:"api_key"`
	APISecret         string   `mapstructure:"api_secret"`
	MaxUploadBytes    int64    `mapstructure:"max_upload_bytes"`
	AllowedMIMETypes  []string `mapstructure:"allowed_mime_types"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

// EmitterConfig holds event emitter configuration
type EmitterConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	SkipBacklog    bool          `mapstructure:"skip_backlog"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int      `mapstructure:"idle_timeout"`  // in seconds
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// SignerConfig holds the local signing key of the CLI
type SignerConfig struct {
	SecretSeed string `mapstructure:"secret_seed"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Server        ServerConfig   `mapstructure:"server"`
	Auth          AuthConfig     `mapstructure:"auth"`
	Stellar       StellarConfig  `mapstructure:"stellar"`
	Metadata      MetadataConfig `mapstructure:"metadata"`
	Scanner       ScannerConfig  `mapstructure:"scanner"`
	Pinning       PinningConfig  `mapstructure:"pinning"`
	BlocklistPath string         `mapstructure:"blocklist_path"`
}

// EventEmitterConfig holds configuration for event-emitter
type EventEmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Stellar    StellarConfig  `mapstructure:"stellar"`
	Metadata   MetadataConfig `mapstructure:"metadata"`
	Scanner    ScannerConfig  `mapstructure:"scanner"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Emitter    EmitterConfig  `mapstructure:"emitter"`
}

// CLIConfig holds configuration for marketctl
type CLIConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Stellar       StellarConfig  `mapstructure:"stellar"`
	Metadata      MetadataConfig `mapstructure:"metadata"`
	Scanner       ScannerConfig  `mapstructure:"scanner"`
	Pinning       PinningConfig  `mapstructure:"pinning"`
	Signer        SignerConfig   `mapstructure:"signer"`
	BlocklistPath string         `mapstructure:"blocklist_path"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.cors_origins", []string{"*"})
	setStellarDefaults(v)
	setPinningDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadEventEmitterConfig loads configuration for event-emitter
func LoadEventEmitterConfig(configFile string, envPath string) (*EventEmitterConfig, error) {
	v := configureViper("event-emitter", configFile, envPath)

	// Set defaults
	setStellarDefaults(v)
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "MARKET_EVENTS")
	v.SetDefault("nats.connection_name", "event-emitter")
	v.SetDefault("nats.duplicate_window", "24h")
	v.SetDefault("emitter.interval", "30s")
	v.SetDefault("emitter.skip_backlog", false)
	v.SetDefault("emitter.publish_timeout", "10s")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config EventEmitterConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.NATS.URL == "" {
		return nil, errors.New("nats.url is required")
	}

	return &config, nil
}

// LoadCLIConfig loads configuration for marketctl
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("marketctl", configFile, envPath)

	// Set defaults
	setStellarDefaults(v)
	setPinningDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config CLIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setStellarDefaults(v *viper.Viper) {
	v.SetDefault("stellar.horizon_url", domain.DEFAULT_HORIZON_URL)
	v.SetDefault("stellar.network_passphrase", "Test SDF Network ; September 2015")
	v.SetDefault("stellar.tx_timeout", fmt.Sprintf("%ds", domain.DEFAULT_TX_TIMEOUT_SECS))
	v.SetDefault("stellar.base_fee", 100)
	v.SetDefault("stellar.history_limit", domain.DEFAULT_HISTORY_LIMIT)
	v.SetDefault("stellar.requests_per_second", 10)
	v.SetDefault("stellar.burst", 5)
	v.SetDefault("metadata.gateways", []string{
		domain.DEFAULT_IPFS_GATEWAY,
		domain.DEFAULT_PINATA_GATEWAY,
		domain.DEFAULT_DWEB_GATEWAY,
	})
	v.SetDefault("metadata.canonical_gateway", domain.DEFAULT_IPFS_GATEWAY)
	v.SetDefault("metadata.http_timeout", "15s")
	v.SetDefault("scanner.worker_pool_size", 8)
}

func setPinningDefaults(v *viper.Viper) {
	v.SetDefault("pinning.api_url", "https://api.pinata.cloud/pinning")
	v.SetDefault("pinning.max_upload_bytes", domain.DEFAULT_MAX_UPLOAD_BYTES)
	v.SetDefault("pinning.requests_per_second", 3)
}

// readConfig reads the config file, falling back to environment variables when there is none
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		"blocklist_path",
		// Stellar
		"stellar.horizon_url",
		"stellar.network_passphrase",
		"stellar.tx_timeout",
		"stellar.base_fee",
		"stellar.history_limit",
		"stellar.requests_per_second",
		"stellar.burst",
		// Metadata
		"metadata.gateways",
		"metadata.canonical_gateway",
		"metadata.http_timeout",
		// Scanner
		"scanner.worker_pool_size",
		// Pinning
		"pinning.api_url",
		"pinning.jwt",
		"pinning.api_key",
		"pinning.api_secret",
		"pinning.max_upload_bytes",
		"pinning.allowed_mime_types",
		"pinning.requests_per_second",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.duplicate_window",
		// Emitter
		"emitter.interval",
		"emitter.skip_backlog",
		"emitter.publish_timeout",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Signer
		"signer.secret_seed",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
