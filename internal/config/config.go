package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	AppPort   string `mapstructure:"APP_PORT" validate:"required"`
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=console json"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER" validate:"oneof=postgres sqlite"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN" validate:"required"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL" validate:"gt=0"`

	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`
	SenderEmail    string `mapstructure:"USER_EMAIL" validate:"required_with=SendGridAPIKey,omitempty,email"`

	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE" validate:"required_with=RabbitMQURL"`
}

var keys = []string{
	"APP_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_DRIVER", "DATABASE_DSN",
	"JWT_SECRET", "TOKEN_TTL",
	"SENDGRID_API_KEY", "USER_EMAIL",
	"RABBITMQ_URL", "RABBITMQ_QUEUE",
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:taskapp.db?cache=shared")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("RABBITMQ_QUEUE", "account_events")
}

// Load reads configuration from the environment, and from an optional
// .env-style file when path is not empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
