package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolateDataDir 把数据目录指向临时目录，避免读到用户配置
func isolateDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ResetDataDir()
	t.Setenv(EnvDataDir, dir)
	t.Cleanup(ResetDataDir)
	return dir
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, ":8000", cfg.Server.HTTPPort)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "_todokit._tcp", cfg.Discovery.Service)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolateDataDir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Server, cfg.Server)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := isolateDataDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: ":9100"
  read_timeout: 3s
database:
  driver: memory
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout, "未配置的键应保留默认值")
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_DataDirConfigFile(t *testing.T) {
	dir := isolateDataDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("app:\n  env: development\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, filepath.Join(dir, DefaultConfigFile), cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolateDataDir(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: \":9100\"\n"), 0o644))

	t.Setenv("TODOKIT_SERVER_HTTP_PORT", ":9200")
	t.Setenv("TODOKIT_RATE_LIMIT_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9200", cfg.Server.HTTPPort)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolateDataDir(t)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: postgres\n"},
		{"bad port", "server:\n  http_port: \"8000\"\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"broken yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "显式指定的配置文件必须存在")
}

func TestDBPath(t *testing.T) {
	dir := isolateDataDir(t)

	cfg := NewConfig()
	assert.Equal(t, filepath.Join(dir, DefaultDBFile), cfg.DBPath())

	cfg.Database.Path = "/var/lib/todo.db"
	assert.Equal(t, "/var/lib/todo.db", cfg.DBPath())
}

func TestDump(t *testing.T) {
	cfg := NewConfig()
	out, err := Dump(cfg)
	require.NoError(t, err)

	var decoded struct {
		Server struct {
			HTTPPort        string `yaml:"http_port"`
			ShutdownTimeout string `yaml:"shutdown_timeout"`
		} `yaml:"server"`
		RateLimit map[string]any `yaml:"rate_limit"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, ":8000", decoded.Server.HTTPPort)
	assert.Equal(t, "10s", decoded.Server.ShutdownTimeout)
	assert.Contains(t, decoded.RateLimit, "burst")
	assert.NotContains(t, string(out), "file:")
}
