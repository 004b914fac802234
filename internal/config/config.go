package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the application reads at startup.
type Config struct {
	AppPort string
	AppEnv  string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseDSN string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitMQURL string // empty means events are dispatched in-process
	QueueName   string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	MediaDir  string
	ExportDir string

	FetchTimeout  time.Duration
	ResetTokenTTL time.Duration
	PurgeSchedule string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "retailorders.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("QUEUE_NAME", "retail_tasks")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@retail.local")
	v.SetDefault("MEDIA_DIR", "media")
	v.SetDefault("EXPORT_DIR", "exports")
	v.SetDefault("FETCH_TIMEOUT", 15*time.Second)
	v.SetDefault("RESET_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("PURGE_SCHEDULE", "@hourly")
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file as well. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:       v.GetString("APP_PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		QueueName:     v.GetString("QUEUE_NAME"),
		SMTPHost:      v.GetString("SMTP_HOST"),
		SMTPPort:      v.GetInt("SMTP_PORT"),
		SMTPUser:      v.GetString("SMTP_USER"),
		SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		SMTPFrom:      v.GetString("SMTP_FROM"),
		MediaDir:      v.GetString("MEDIA_DIR"),
		ExportDir:     v.GetString("EXPORT_DIR"),
		FetchTimeout:  v.GetDuration("FETCH_TIMEOUT"),
		ResetTokenTTL: v.GetDuration("RESET_TOKEN_TTL"),
		PurgeSchedule: v.GetString("PURGE_SCHEDULE"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	return cfg, nil
}
