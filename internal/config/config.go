// Package config loads the HTTP service settings from the environment.
// Database and logger settings live next to their constructors in pkg/.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Addr string `env:"HTTP_ADDR,default=0.0.0.0:8000"`

	// JWTSecret signs session tokens. It must be shared by every instance
	// for tokens to survive restarts and load balancing.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=5h"`

	TriviaBaseURL string        `env:"TRIVIA_BASE_URL,default=https://opentdb.com"`
	TriviaTimeout time.Duration `env:"TRIVIA_TIMEOUT,default=5s"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimitRequests  int           `env:"RATE_LIMIT_REQUESTS,default=100"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`

	SnowflakeNode int64 `env:"SNOWFLAKE_NODE,default=1"`
}

// Load decodes Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.TriviaTimeout <= 0 {
		return nil, fmt.Errorf("TRIVIA_TIMEOUT must be positive, got %s", cfg.TriviaTimeout)
	}
	return cfg, nil
}
