package config

import (
	"time"

	"devicemap/internal/logging"
	"devicemap/internal/observability"
)

// Config is the root configuration structure
type Config struct {
	Server    ServerConfig                `yaml:"server" toml:"server"`
	Database  DatabaseConfig              `yaml:"database" toml:"database"`
	Assets    AssetsConfig                `yaml:"assets" toml:"assets"`
	Inventory InventoryConfig             `yaml:"inventory" toml:"inventory"`
	Logging   logging.Config              `yaml:"logging" toml:"logging"`
	Tracing   observability.TracingConfig `yaml:"tracing" toml:"tracing"`
	Metrics   MetricsConfig               `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	// MaxUploadBytes caps multipart request bodies
	MaxUploadBytes int64      `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	CORSOrigins    []string   `yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty"`
	Auth           AuthConfig `yaml:"auth" toml:"auth"`
}

// AuthConfig protects write endpoints with HTTP basic auth when a
// password hash is set
type AuthConfig struct {
	Username     string `yaml:"username" toml:"username"`
	PasswordHash string `yaml:"password_hash" toml:"password_hash"` // bcrypt
}

// Enabled reports whether write endpoints require credentials
func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != ""
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AssetsConfig holds image store settings
type AssetsConfig struct {
	Dir       string `yaml:"dir" toml:"dir"`
	URLPrefix string `yaml:"url_prefix" toml:"url_prefix"`
	// Collision is overwrite, reject or unique
	Collision string `yaml:"collision" toml:"collision"`
}

// InventoryConfig holds registry behaviour
type InventoryConfig struct {
	// DeletePolicy is orphan, cascade or restrict
	DeletePolicy string `yaml:"delete_policy" toml:"delete_policy"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by TOML
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
