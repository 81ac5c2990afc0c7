package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server
type Config struct {
	Port        string `env:"PORT" envDefault:"8787"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE" envDefault:"memberguard.log"`

	Wix        WixConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	EmailCheck EmailCheckConfig
	Alerts     AlertConfig
	Moderation ModerationConfig
	Telemetry  TelemetryConfig

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// WixConfig identifies the app towards the Wix platform
type WixConfig struct {
	AppID     string `env:"WIX_APP_ID"`
	AppSecret string `env:"WIX_APP_SECRET"`
	PublicKey string `env:"WIX_APP_PUBLIC_KEY"`
	BaseURL   string `env:"WIX_API_BASE_URL" envDefault:"https://www.wixapis.com"`
}

// RedisConfig locates the key-value store holding toggle flags
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
}

// DatabaseConfig selects the activity log backend.
// DATABASE_URL wins; otherwise a local SQLite file is used.
type DatabaseConfig struct {
	URL        string `env:"DATABASE_URL"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"memberguard.db"`
}

// EmailCheckConfig points at the disposable-domain reputation service
type EmailCheckConfig struct {
	BaseURL string `env:"ISFAKEMAIL_BASE_URL" envDefault:"https://isfakemail.com"`
}

// AlertConfig configures delivery of fake-member alerts
type AlertConfig struct {
	Provider      string `env:"ALERT_PROVIDER" envDefault:"sendpulse"`
	FromEmail     string `env:"ALERT_FROM_EMAIL" envDefault:"team@certifiedcode.us"`
	FromName      string `env:"ALERT_FROM_NAME" envDefault:"Block Fake Email Members by Certified Code"`
	FallbackEmail string `env:"ALERT_FALLBACK_EMAIL"`

	SendPulseBaseURL      string `env:"SENDPULSE_BASE_URL" envDefault:"https://api.sendpulse.com"`
	SendPulseClientID     string `env:"SENDPULSE_CLIENT_ID"`
	SendPulseClientSecret string `env:"SENDPULSE_CLIENT_SECRET"`
	SendPulseTemplateID   int    `env:"SENDPULSE_TEMPLATE_ID" envDefault:"246649"`

	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`
}

// ModerationConfig selects how inbox messages are screened
type ModerationConfig struct {
	Provider      string `env:"MODERATION_PROVIDER" envDefault:"keywords"`
	KeywordsFile  string `env:"MODERATION_KEYWORDS_FILE"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODERATION_MODEL" envDefault:"omni-moderation-latest"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

// TelemetryConfig configures OpenTelemetry export
type TelemetryConfig struct {
	Enabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"memberguard"`
	OTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SamplingRate float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
	Secure       bool    `env:"OTEL_EXPORTER_OTLP_SECURE" envDefault:"false"`
}

// Load reads a .env file when present and parses the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the server cannot run without
func (c *Config) Validate() error {
	var missing []string
	if c.Wix.AppID == "" {
		missing = append(missing, "WIX_APP_ID")
	}
	if c.Wix.AppSecret == "" {
		missing = append(missing, "WIX_APP_SECRET")
	}
	if c.Wix.PublicKey == "" {
		missing = append(missing, "WIX_APP_PUBLIC_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.Alerts.Provider {
	case "sendpulse", "ses", "none":
	default:
		return fmt.Errorf("unknown ALERT_PROVIDER %q", c.Alerts.Provider)
	}

	switch c.Moderation.Provider {
	case "keywords", "openai", "gemini":
	default:
		return fmt.Errorf("unknown MODERATION_PROVIDER %q", c.Moderation.Provider)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr returns host:port for the Redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}
