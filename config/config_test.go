package config

import (
	"os"
	"testing"
	"time"

	"github.com/infinitybotlist/lanyard/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{EnvHost, EnvHTTPTimeout, EnvLogLevel, EnvRelayAddr, EnvRedisURL, EnvRateLimitRequests, EnvRateLimitWindow} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.API.Host)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel())
	assert.Equal(t, ":8080", cfg.Relay.Addr)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Relay.RedisURL)
	assert.Equal(t, 60, cfg.Relay.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.Relay.RateLimitWindow)

	client := cfg.HTTPClient(zap.NewNop().Sugar())
	assert.Nil(t, client.Transport)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvHost, "localhost:4001")
	t.Setenv(EnvHTTPTimeout, "5s")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvRateLimitRequests, "10")
	t.Setenv(EnvRateLimitWindow, "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel())
	assert.Equal(t, 10, cfg.Relay.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.Relay.RateLimitWindow)

	client := cfg.HTTPClient(zap.NewNop().Sugar())
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.IsType(t, proxy.HostRewriter{}, client.Transport)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvHost, "")
	os.Unsetenv(EnvHost)
	t.Setenv(EnvLogLevel, "loud")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv(EnvLogLevel, "info")
	t.Setenv(EnvHost, "local host")

	_, err = Load()
	assert.Error(t, err)

	os.Unsetenv(EnvHost)
	t.Setenv(EnvRateLimitRequests, "0")

	_, err = Load()
	assert.Error(t, err)
}
