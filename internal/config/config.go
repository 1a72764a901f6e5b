package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string    `mapstructure:"env"`      // current application environment (local, dev, production)
	Timezone         string    `mapstructure:"timezone"` // zone that defines the calendar day for quotas and schedules
	TelegramAPIToken string    `mapstructure:"-"`        // Telegram API token loaded from environment
	Content          Content   `mapstructure:"content"`
	DB               DB        `mapstructure:"database"`
	Stripe           Stripe    `mapstructure:"stripe"`
	OpenAI           OpenAI    `mapstructure:"openai"`
	HTTP             HTTP      `mapstructure:"http"`
	Scheduler        Scheduler `mapstructure:"scheduler"`
	Quota            Quota     `mapstructure:"quota"`
}

// Content points at the static lesson and quiz banks.
type Content struct {
	LessonsPath string `mapstructure:"lessons_path"`
	QuizzesPath string `mapstructure:"quizzes_path"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // apply embedded migrations on startup
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Stripe holds payment provider settings. Secrets come from the environment.
type Stripe struct {
	SecretKey     string `mapstructure:"-"`
	WebhookSecret string `mapstructure:"-"`
	PriceID       string `mapstructure:"price_id"`
	AppURL        string `mapstructure:"app_url"` // base URL used for checkout and portal redirects
}

// OpenAI configures the AI answer feature.
type OpenAI struct {
	APIKey    string `mapstructure:"-"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// HTTP configures the webhook and admin server.
type HTTP struct {
	Addr       string `mapstructure:"addr"`
	AdminToken string `mapstructure:"-"` // empty disables the admin routes
}

// Scheduler maps job names to cron specs and sets the pause between per-user sends.
type Scheduler struct {
	Jobs     map[string]string `mapstructure:"jobs"`
	Throttle time.Duration     `mapstructure:"throttle"`
}

// Quota overrides the daily AI question limits.
type Quota struct {
	Free    int `mapstructure:"free"`
	Premium int `mapstructure:"premium"`
}

// Limits converts the quota section into domain limits.
func (q Quota) Limits() entities.QuotaLimits {
	return entities.QuotaLimits{Free: q.Free, Premium: q.Premium}
}

// Location parses the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return entities.ParseLocation(c.Timezone)
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine, real deployments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("content.lessons_path", "assets/data/lessons.json")
	v.SetDefault("content.quizzes_path", "assets/data/quizzes.json")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("stripe.app_url", "http://localhost:8080")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("scheduler.throttle", "500ms")
	v.SetDefault("scheduler.jobs", DefaultJobs())
	v.SetDefault("quota.free", entities.FreeQuestionLimit)
	v.SetDefault("quota.premium", entities.PremiumQuestionLimit)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("stripe_secret_key", "STRIPE_SECRET_KEY")
	_ = v.BindEnv("stripe_webhook_secret", "STRIPE_WEBHOOK_SECRET")
	_ = v.BindEnv("stripe.price_id", "STRIPE_PRICE_ID")
	_ = v.BindEnv("stripe.app_url", "APP_URL")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("admin_token", "ADMIN_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
	}

	cfg.Stripe.SecretKey = v.GetString("stripe_secret_key")
	cfg.Stripe.WebhookSecret = v.GetString("stripe_webhook_secret")
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")
	cfg.HTTP.AdminToken = v.GetString("admin_token")

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	return &cfg, nil
}

// DefaultJobs returns the default broadcast schedule.
func DefaultJobs() map[string]string {
	return map[string]string{
		"lesson_morning":   "0 10 * * *",
		"lesson_afternoon": "0 15 * * *",
		"lesson_evening":   "0 20 * * *",
		"weekly_quiz":      "0 20 * * 0",
		"weekly_summary":   "0 21 * * 6",
		"review_reminder":  "0 19 * * 3",
		"reengagement":     "0 12 * * 1",
	}
}
