package shared

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`

	TwilioAccountSID string        `envconfig:"TWILIO_ACCOUNT_SID" required:"true"`
	TwilioAuthToken  string        `envconfig:"TWILIO_AUTH_TOKEN" required:"true"`
	TwilioNumber     string        `envconfig:"TWILIO_WHATSAPP_NUMBER" required:"true"`
	TwilioBaseURL    string        `envconfig:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	TwilioRPS        int           `envconfig:"TWILIO_RPS" default:"10"`
	SendTimeout      time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	DedupTTL  time.Duration `envconfig:"DEDUP_TTL" default:"24h"`

	CORSAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load exports envFile (when it exists) without overriding variables already
// set, then reads and validates the configuration. An empty envFile means
// ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMySQL, c.DBDriver)
	}
	if c.TwilioRPS <= 0 {
		return fmt.Errorf("TWILIO_RPS must be positive, got %d", c.TwilioRPS)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive, got %s", c.SendTimeout)
	}
	return nil
}

// RedisEnabled reports whether the listing cache and delivery dedup are on.
func (c Config) RedisEnabled() bool { return c.RedisAddr != "" }
