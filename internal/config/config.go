// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Definition source types.
const (
	DefinitionsBuiltin = "builtin"
	DefinitionsYAML    = "yaml"
	DefinitionsSQLite  = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBatchSize    int           `mapstructure:"max_batch_size"` // coordinates per transform request
	FrontendEnabled bool          `mapstructure:"frontend_enabled"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// RegistryConfig holds CRS cache configuration.
type RegistryConfig struct {
	NotFoundTTL      time.Duration `mapstructure:"not_found_ttl"`
	NotFoundCapacity uint64        `mapstructure:"not_found_capacity"`
	LookupTimeout    time.Duration `mapstructure:"lookup_timeout"`
	Preload          []string      `mapstructure:"preload"`    // codes resolved at startup
	ProbeCode        string        `mapstructure:"probe_code"` // code resolved by the readiness check
}

// DefinitionsConfig selects where raw CRS definitions come from. The builtin
// catalogue is always consulted last.
type DefinitionsConfig struct {
	Type         string        `mapstructure:"type"` // builtin, yaml, sqlite
	Path         string        `mapstructure:"path"` // directory of YAML files
	SQLitePath   string        `mapstructure:"sqlite_path"`
	Watch        bool          `mapstructure:"watch"`
	Debounce     time.Duration `mapstructure:"debounce"`
	SyncInterval time.Duration `mapstructure:"sync_interval"` // 0 disables periodic sync
}

// StorageConfig holds the object storage that definition files are synced
// from. An empty type disables syncing.
type StorageConfig struct {
	Type      string      `mapstructure:"type"` // s3, azure, http, local
	LocalPath string      `mapstructure:"local_path"`
	S3        S3Config    `mapstructure:"s3"`
	Azure     AzureConfig `mapstructure:"azure"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// Enabled reports whether a remote definition store is configured.
func (c *StorageConfig) Enabled() bool {
	return c.Type != "" && c.Type != "none"
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// HTTPConfig holds HTTP download configuration.
type HTTPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	IndexFile string        `mapstructure:"index_file"` // default: index.txt
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"` // 0 serves metrics on the API port
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_batch_size", 10000)
	viper.SetDefault("server.frontend_enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{})

	// Registry defaults
	viper.SetDefault("registry.not_found_ttl", 5*time.Minute)
	viper.SetDefault("registry.not_found_capacity", 10000)
	viper.SetDefault("registry.lookup_timeout", 5*time.Second)
	viper.SetDefault("registry.preload", []string{"EPSG:4326"})
	viper.SetDefault("registry.probe_code", "EPSG:4326")

	// Definition defaults
	viper.SetDefault("definitions.type", DefinitionsBuiltin)
	viper.SetDefault("definitions.path", "./definitions")
	viper.SetDefault("definitions.sqlite_path", "./definitions.db")
	viper.SetDefault("definitions.watch", false)
	viper.SetDefault("definitions.debounce", 2*time.Second)
	viper.SetDefault("definitions.sync_interval", time.Duration(0))

	// Storage defaults
	viper.SetDefault("storage.type", "")
	viper.SetDefault("storage.http.index_file", "index.txt")
	viper.SetDefault("storage.http.timeout", time.Minute)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.port", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("MERIDIAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/meridian")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxBatchSize < 1 {
		return fmt.Errorf("invalid max batch size: %d", c.Server.MaxBatchSize)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	if c.Metrics.Port != 0 && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics port %d collides with the server port", c.Metrics.Port)
	}
	if c.Registry.NotFoundTTL < 0 || c.Registry.LookupTimeout < 0 {
		return fmt.Errorf("registry durations must not be negative")
	}

	switch c.Definitions.Type {
	case DefinitionsBuiltin:
	case DefinitionsYAML:
		if c.Definitions.Path == "" {
			return fmt.Errorf("definitions path is required")
		}
	case DefinitionsSQLite:
		if c.Definitions.SQLitePath == "" {
			return fmt.Errorf("definitions sqlite path is required")
		}
	default:
		return fmt.Errorf("unknown definitions type: %s", c.Definitions.Type)
	}
	if c.Definitions.Watch && c.Definitions.Type != DefinitionsYAML {
		return fmt.Errorf("watching requires yaml definitions")
	}

	if !c.Storage.Enabled() {
		return nil
	}
	if c.Definitions.Type != DefinitionsYAML {
		return fmt.Errorf("storage sync requires yaml definitions")
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required")
		}
	case "azure":
		if c.Storage.Azure.Container == "" {
			return fmt.Errorf("azure container is required")
		}
		if c.Storage.Azure.AccountName == "" && c.Storage.Azure.ConnectionString == "" {
			return fmt.Errorf("azure account name or connection string is required")
		}
	case "http":
		if c.Storage.HTTP.BaseURL == "" {
			return fmt.Errorf("HTTP base URL is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
