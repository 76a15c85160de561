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

func TestDefaults(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir())

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "jm_client", cfg.Client.CookieName)
	assert.Equal(t, 8760*time.Hour, cfg.Client.CookieMaxAge)
	assert.Equal(t, 5*time.Second, cfg.Polling.ChatInterval)
	assert.Equal(t, 30*time.Second, cfg.Polling.NotificationInterval)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JUNKMART_STORAGE_DRIVER", "redis")
	t.Setenv("JUNKMART_REDIS_ADDR", "cache:6379")
	t.Setenv("JUNKMART_POLLING_CHATINTERVAL", "10s")
	t.Setenv("JUNKMART_ALLOWCORSORIGINS", "https://a.example,https://b.example")

	v := viper.New()
	v.AddConfigPath(t.TempDir())
	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Second, cfg.Polling.ChatInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowCORSOrigins)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("environment: production\nbackend:\n  baseurl: https://api.junkmart.example\nstorage:\n  driver: memory\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "https://api.junkmart.example", cfg.Backend.BaseURL)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestValidation(t *testing.T) {
	t.Setenv("JUNKMART_STORAGE_DRIVER", "postgres")
	v := viper.New()
	v.AddConfigPath(t.TempDir())
	_, err := load(v)
	assert.ErrorContains(t, err, "postgres.dsn")

	t.Setenv("JUNKMART_STORAGE_DRIVER", "s3")
	_, err = load(viper.New())
	assert.ErrorContains(t, err, "unknown storage driver")
}
