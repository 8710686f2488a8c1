package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the RCI API service.
type Config struct {
	Addr         string        `env:"RCI_ADDR,default=:8080"`
	DatabaseDSN  string        `env:"RCI_PG_DSN"`
	JWTSecret    string        `env:"RCI_JWT_SECRET,required"`
	TokenIssuer  string        `env:"RCI_TOKEN_ISSUER,default=rci-backend"`
	TokenTTL     time.Duration `env:"RCI_TOKEN_TTL,default=1h"`
	RateBurst    int           `env:"RCI_RATE_BURST,default=20"`
	RatePerSec   int           `env:"RCI_RATE_PER_SEC,default=10"`
	MaxBodyBytes int64         `env:"RCI_MAX_BODY_BYTES,default=1048576"`

	// Comma-separated browser origins allowed by CORS. Empty means
	// localhost-only (dev mode).
	CORSOrigins []string `env:"RCI_CORS_ORIGINS"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
