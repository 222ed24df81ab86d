package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, BackendBolt, cfg.Storage.Backend)
	assert.Equal(t, "vitrina.db", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoadClient_Env(t *testing.T) {
	t.Setenv("VITRINA_SERVER", "https://shop.example.com")
	t.Setenv("VITRINA_API_KEY", "key")
	t.Setenv("VITRINA_STORAGE_BACKEND", "memory")
	t.Setenv("VITRINA_STORAGE_QUOTA", "1024")

	v, err := NewViper(ClientEnvPrefix, "")
	require.NoError(t, err)

	cfg, err := LoadClient(v)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.ServerURL)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, int64(1024), cfg.Storage.Quota)
}

func TestLoadClient_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	content := `
server = "http://10.0.0.1:9000"
timeout = "5s"

[storage]
backend = "redis"

[storage.redis]
addr = "redis:6379"
db = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v, err := NewViper(ClientEnvPrefix, path)
	require.NoError(t, err)

	cfg, err := LoadClient(v)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:9000", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
}

func TestNewViper_MissingExplicitFile(t *testing.T) {
	_, err := NewViper(ClientEnvPrefix, filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		set  map[string]any
		name string
		want string
	}{
		{name: "bad url", set: map[string]any{"server": "ftp://x"}, want: "server must be an http(s) URL"},
		{name: "bad backend", set: map[string]any{"storage.backend": "s3"}, want: "storage.backend must be one of"},
		{name: "negative quota", set: map[string]any{"storage.quota": -1}, want: "storage.quota cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := LoadClient(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadServer(t *testing.T) {
	v := viper.New()
	v.Set("jwt_secret", testSecret)
	v.Set("rate_limit.enabled", true)

	cfg, err := LoadServer(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "vitrina-server.db", cfg.DBPath)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, float64(20), cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadServer_Env(t *testing.T) {
	t.Setenv("VITRINA_SERVER_JWT_SECRET", testSecret)
	t.Setenv("VITRINA_SERVER_ADDRESS", ":9999")

	v, err := NewViper(ServerEnvPrefix, "")
	require.NoError(t, err)

	cfg, err := LoadServer(v)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Address)
	assert.Equal(t, testSecret, cfg.JWTSecret)
}

func TestLoadServer_Secret(t *testing.T) {
	_, err := LoadServer(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret is required")

	v := viper.New()
	v.Set("jwt_secret", "short")
	_, err = LoadServer(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}
