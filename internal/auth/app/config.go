package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded once at startup from the
// environment. The two signing secrets are the only required values; their
// absence is a fatal configuration error.
type Config struct {
	// JWTSecret signs access tokens. Minimum 32 bytes.
	JWTSecret string `env:"RENTFUSE_JWT_SECRET,required"`

	// JWTRefreshSecret signs refresh tokens, independent of JWTSecret so an
	// access-token leak can never forge refresh tokens.
	JWTRefreshSecret string `env:"RENTFUSE_JWT_REFRESH_SECRET,required"`

	Issuer   string `env:"RENTFUSE_ISSUER" envDefault:"rentfuse-auth"`
	Audience string `env:"RENTFUSE_AUDIENCE" envDefault:"rentfuse"`

	DatabaseFile string `env:"RENTFUSE_DATABASE_FILE" envDefault:"rentfuse.db"`

	Env       string `env:"RENTFUSE_ENV" envDefault:"dev"`
	LogLevel  string `env:"RENTFUSE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RENTFUSE_LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"RENTFUSE_PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"RENTFUSE_SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"RENTFUSE_HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	AccessTokenTTL  time.Duration `env:"RENTFUSE_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"RENTFUSE_REFRESH_TOKEN_TTL" envDefault:"168h"`

	SessionLifetime time.Duration `env:"RENTFUSE_SESSION_LIFETIME" envDefault:"2h"`
	SessionRotation time.Duration `env:"RENTFUSE_SESSION_ROTATION" envDefault:"30m"`

	AuditBuffer int `env:"RENTFUSE_AUDIT_BUFFER" envDefault:"256"`
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
