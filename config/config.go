// Environment configuration for the lanyard binary and relay
package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/infinitybotlist/lanyard/proxy"
	"github.com/infinitybotlist/lanyard/snippets"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "LANYARD"

const (
	EnvHost              = "LANYARD_HOST"
	EnvHTTPTimeout       = "LANYARD_HTTP_TIMEOUT"
	EnvLogLevel          = "LANYARD_LOG_LEVEL"
	EnvRelayAddr         = "LANYARD_RELAY_ADDR"
	EnvRedisURL          = "LANYARD_REDIS_URL"
	EnvRateLimitRequests = "LANYARD_RATELIMIT_REQUESTS"
	EnvRateLimitWindow   = "LANYARD_RATELIMIT_WINDOW"
)

type Config struct {
	API   APIConfig
	Log   LogConfig
	Relay RelayConfig
}

type APIConfig struct {
	// Host of a self-hosted lanyard instance, empty to use api.lanyard.rest
	Host string `envconfig:"LANYARD_HOST" validate:"nospaces"`
	// Client side timeout, zero for none
	Timeout time.Duration `envconfig:"LANYARD_HTTP_TIMEOUT" default:"0s" validate:"gte=0"`
}

type LogConfig struct {
	Level string `envconfig:"LANYARD_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

type RelayConfig struct {
	Addr              string        `envconfig:"LANYARD_RELAY_ADDR" default:":8080" validate:"required,nospaces"`
	RedisURL          string        `envconfig:"LANYARD_REDIS_URL" default:"redis://localhost:6379/0" validate:"required,nospaces"`
	RateLimitRequests int           `envconfig:"LANYARD_RATELIMIT_REQUESTS" default:"60" validate:"gte=1"`
	RateLimitWindow   time.Duration `envconfig:"LANYARD_RATELIMIT_WINDOW" default:"1m" validate:"gt=0"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	v := validator.New()

	if err := snippets.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("registering validators: %w", err)
	}

	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LogLevel returns the configured zap level
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)

	if err != nil {
		return zapcore.InfoLevel
	}

	return level
}

// HTTPClient returns the client lanyard requests should be made with
func (c *Config) HTTPClient(logger *zap.SugaredLogger) *http.Client {
	client := &http.Client{
		Timeout: c.API.Timeout,
	}

	if c.API.Host != "" {
		client.Transport = proxy.NewHostRewriter(c.API.Host, http.DefaultTransport, func(s string) {
			logger.Debug(s)
		})
	}

	return client
}
