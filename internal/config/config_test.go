package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func validConfig() Config {
	return Config{
		Server:      ServerConfig{Host: "127.0.0.1", Port: 8080, MaxBatchSize: 100},
		Definitions: DefinitionsConfig{Type: DefinitionsBuiltin},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"builtin", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad batch", func(c *Config) { c.Server.MaxBatchSize = 0 }, "max batch size"},
		{"metrics collides", func(c *Config) { c.Metrics.Port = 8080 }, "collides"},
		{"negative ttl", func(c *Config) { c.Registry.NotFoundTTL = -time.Second }, "negative"},
		{"unknown definitions", func(c *Config) { c.Definitions.Type = "wkt" }, "unknown definitions type"},
		{"yaml without path", func(c *Config) { c.Definitions.Type = DefinitionsYAML }, "path is required"},
		{"sqlite without path", func(c *Config) { c.Definitions.Type = DefinitionsSQLite }, "sqlite path"},
		{"watch builtin", func(c *Config) { c.Definitions.Watch = true }, "requires yaml"},
		{"storage without yaml", func(c *Config) { c.Storage.Type = "s3" }, "storage sync requires yaml"},
		{"s3 without bucket", func(c *Config) {
			c.Definitions = DefinitionsConfig{Type: DefinitionsYAML, Path: "defs"}
			c.Storage.Type = "s3"
		}, "bucket"},
		{"azure without account", func(c *Config) {
			c.Definitions = DefinitionsConfig{Type: DefinitionsYAML, Path: "defs"}
			c.Storage = StorageConfig{Type: "azure", Azure: AzureConfig{Container: "crs"}}
		}, "account name"},
		{"http complete", func(c *Config) {
			c.Definitions = DefinitionsConfig{Type: DefinitionsYAML, Path: "defs", Watch: true}
			c.Storage = StorageConfig{Type: "http", HTTP: HTTPConfig{BaseURL: "https://example.com/crs"}}
		}, ""},
		{"unknown storage", func(c *Config) {
			c.Definitions = DefinitionsConfig{Type: DefinitionsYAML, Path: "defs"}
			c.Storage.Type = "ftp"
		}, "unknown storage type"},
		{"none storage", func(c *Config) { c.Storage.Type = "none" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "meridian.yaml")
	content := `
server:
  port: 9000
registry:
  not_found_ttl: 1m
definitions:
  type: yaml
  path: /srv/crs
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MERIDIAN_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Registry.NotFoundTTL != time.Minute {
		t.Errorf("Registry.NotFoundTTL = %v, want 1m", cfg.Registry.NotFoundTTL)
	}
	if cfg.Registry.LookupTimeout != 5*time.Second {
		t.Errorf("Registry.LookupTimeout = %v, want default 5s", cfg.Registry.LookupTimeout)
	}
	if cfg.Definitions.Path != "/srv/crs" {
		t.Errorf("Definitions.Path = %q", cfg.Definitions.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug from the environment", cfg.Logging.Level)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled by default")
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 80, ":80"},
		{"::1", 9090, "[::1]:9090"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Address(); got != tt.want {
			t.Errorf("Address() = %q, want %q", got, tt.want)
		}
	}
}
