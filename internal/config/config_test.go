package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicemap/internal/asset"
	"devicemap/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "./devicemap.db", cfg.Database.Path)
	assert.Equal(t, "./static/img", cfg.Assets.Dir)
	assert.Equal(t, asset.DefaultURLPrefix, cfg.Assets.URLPrefix)
	assert.Equal(t, asset.CollisionOverwrite, cfg.CollisionPolicy())
	assert.Equal(t, domain.DeletePolicyOrphan, cfg.DeletePolicy())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.False(t, cfg.Server.Auth.Enabled())
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPathYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "devicemap.yaml", `
server:
  addr: ":8080"
  shutdown_timeout: 3s
database:
  path: /var/lib/devicemap/inventory.db
assets:
  collision: unique
inventory:
  delete_policy: cascade
logging:
  level: debug
  development: true
`)

	cfg, got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "/var/lib/devicemap/inventory.db", cfg.Database.Path)
	assert.Equal(t, asset.CollisionUnique, cfg.CollisionPolicy())
	assert.Equal(t, domain.DeletePolicyCascade, cfg.DeletePolicy())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	// Unset values keep their defaults.
	assert.Equal(t, "./static/img", cfg.Assets.Dir)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromPathTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "devicemap.toml", `
[server]
addr = "127.0.0.1:9000"
read_timeout = "5s"

[server.auth]
username = "ops"
password_hash = "$2a$10$abcdefghijklmnopqrstuv"

[inventory]
delete_policy = "restrict"

[tracing]
enabled = true
sample_ratio = 0.5
`)

	cfg, _, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, "ops", cfg.Server.Auth.Username)
	assert.True(t, cfg.Server.Auth.Enabled())
	assert.Equal(t, domain.DeletePolicyRestrict, cfg.DeletePolicy())
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRatio)
	assert.Equal(t, "devicemap", cfg.Tracing.ServiceName)
}

func TestLoadFromPathRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"delete policy", "inventory:\n  delete_policy: nuke\n"},
		{"collision", "assets:\n  collision: rename\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"sample ratio", "tracing:\n  sample_ratio: 2\n"},
		{"malformed", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "devicemap.yaml", tt.content)
			_, _, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	_, _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddr:         ":4000",
		EnvDatabasePath: "/tmp/x.db",
		EnvAssetDir:     "/srv/img",
		EnvDeletePolicy: "cascade",
		EnvMaxUpload:    "1024",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "/srv/img", cfg.Assets.Dir)
	assert.Equal(t, domain.DeletePolicyCascade, cfg.DeletePolicy())
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)

	env[EnvMaxUpload] = "lots"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestLoadUsesEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "server:\n  addr: \":7000\"\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvAddr, "")

	cfg, got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Server.Addr = ":5555"
			cfg.Inventory.DeletePolicy = "restrict"
			cfg.Server.ShutdownTimeout = Duration(42 * time.Second)

			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, cfg.Save(path))

			loaded, _, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, ":5555", loaded.Server.Addr)
			assert.Equal(t, domain.DeletePolicyRestrict, loaded.DeletePolicy())
			assert.Equal(t, 42*time.Second, loaded.Server.ShutdownTimeout.Duration())
		})
	}
}

func TestFindConfigPathXDG(t *testing.T) {
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, ConfigDirName), 0755))
	path := writeFile(t, filepath.Join(xdg, ConfigDirName), "config.toml", "")

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	assert.Equal(t, path, FindConfigPath())
}
