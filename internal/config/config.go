// Package config provides configuration management for devicemap.
//
// Config file locations (priority order):
//  1. $DEVICEMAP_CONFIG
//  2. ./devicemap.yaml or ./devicemap.toml
//  3. ~/.config/devicemap/config.{yaml,toml}
//  4. /etc/devicemap/config.{yaml,toml}
//
// The format follows the file extension: .toml files are decoded with
// BurntSushi/toml, everything else as YAML. DEVICEMAP_* environment
// variables override file values; command-line flags override both.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"devicemap/internal/asset"
	"devicemap/internal/domain"
	"devicemap/internal/logging"
)

// Environment overrides
const (
	EnvAddr         = "DEVICEMAP_ADDR"
	EnvDatabasePath = "DEVICEMAP_DB"
	EnvAssetDir     = "DEVICEMAP_ASSET_DIR"
	EnvLogLevel     = "DEVICEMAP_LOG_LEVEL"
	EnvDeletePolicy = "DEVICEMAP_DELETE_POLICY"
	EnvMaxUpload    = "DEVICEMAP_MAX_UPLOAD_BYTES"
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, "", err
		}
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Save writes config to the specified path in the format its extension names
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation. Files are
// decoded on top of it, so omitted keys keep these values.
func DefaultConfig() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 16 << 20
	}
	if c.Server.Auth.Username == "" {
		c.Server.Auth.Username = "admin"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./devicemap.db"
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "./static/img"
	}
	if c.Assets.URLPrefix == "" {
		c.Assets.URLPrefix = asset.DefaultURLPrefix
	}
	if c.Assets.Collision == "" {
		c.Assets.Collision = string(asset.CollisionOverwrite)
	}
	if c.Inventory.DeletePolicy == "" {
		c.Inventory.DeletePolicy = string(domain.DeletePolicyOrphan)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "devicemap"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
}

// ApplyEnv overrides values from DEVICEMAP_* variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDatabasePath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvAssetDir); ok && v != "" {
		c.Assets.Dir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvDeletePolicy); ok && v != "" {
		c.Inventory.DeletePolicy = v
	}
	if v, ok := lookup(EnvMaxUpload); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: invalid byte count %q", EnvMaxUpload, v)
		}
		c.Server.MaxUploadBytes = n
	}
	return nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if _, err := domain.ParseDeletePolicy(c.Inventory.DeletePolicy); err != nil {
		return fmt.Errorf("inventory.delete_policy: %w", err)
	}
	if _, err := asset.ParseCollisionPolicy(c.Assets.Collision); err != nil {
		return fmt.Errorf("assets.collision: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1, got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// DeletePolicy returns the parsed delete policy. Call Validate first.
func (c *Config) DeletePolicy() domain.DeletePolicy {
	p, _ := domain.ParseDeletePolicy(c.Inventory.DeletePolicy)
	return p
}

// CollisionPolicy returns the parsed asset collision policy. Call Validate first.
func (c *Config) CollisionPolicy() asset.CollisionPolicy {
	p, _ := asset.ParseCollisionPolicy(c.Assets.Collision)
	return p
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	return fmt.Sprintf("addr=%s db=%s assets=%s collision=%s delete_policy=%s auth=%t",
		c.Server.Addr, c.Database.Path, c.Assets.Dir, c.Assets.Collision,
		c.Inventory.DeletePolicy, c.Server.Auth.Enabled())
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
