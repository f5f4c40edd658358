package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Host        string `env:"HOST,default=0.0.0.0"`
	Port        int    `env:"PORT,default=8787"`
	Environment string `env:"ENVIRONMENT,default=development"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
	LogFile  string `env:"LOG_FILE"`

	// DatabaseDriver is "postgres" or "sqlite".
	DatabaseDriver    string        `env:"DATABASE_DRIVER,default=postgres"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=1h"`

	AWSRegion string `env:"AWS_REGION,default=us-east-1"`
	AWSBucket string `env:"AWS_BUCKET"`
	CDNURL    string `env:"CDN_URL"`

	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT,default=6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// CORSOrigins is a comma separated allow list; empty allows all origins.
	CORSOrigins string `env:"CORS_ORIGINS"`

	EnableChatBulkDelete bool `env:"ENABLE_CHAT_BULK_DELETE,default=false"`

	StoryCleanupInterval time.Duration `env:"STORY_CLEANUP_INTERVAL,default=1h"`

	WSRateLimit float64 `env:"WS_RATE_LIMIT,default=10"`
	WSRateBurst int     `env:"WS_RATE_BURST,default=20"`

	HTTPRateLimit float64 `env:"HTTP_RATE_LIMIT,default=20"`
	HTTPRateBurst int     `env:"HTTP_RATE_BURST,default=40"`

	OTelEnabled  bool   `env:"OTEL_ENABLED,default=false"`
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4318"`
	ServiceName  string `env:"OTEL_SERVICE_NAME,default=social-media-backend"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "social.db"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DBConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// AllowedOrigins splits CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
