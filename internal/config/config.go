// Package config loads service settings from the environment (and an optional
// .env file) through viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultSecretKey = "change_me_in_production"

type Config struct {
	Env           string `mapstructure:"ENV"`
	Port          string `mapstructure:"PORT"`
	DBPath        string `mapstructure:"DB_PATH"`
	SecretKey     string `mapstructure:"SECRET_KEY"`
	TimeZone      string `mapstructure:"TZ"`
	CookieSecure  bool   `mapstructure:"COOKIE_SECURE"`
	PhotoDir      string `mapstructure:"PHOTO_DIR"`
	PhotoMaxBytes int64  `mapstructure:"PHOTO_MAX_BYTES"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	AllowBackfill bool   `mapstructure:"ALLOW_BACKFILL"`
}

var envKeys = []string{
	"ENV",
	"PORT",
	"DB_PATH",
	"SECRET_KEY",
	"TZ",
	"COOKIE_SECURE",
	"PHOTO_DIR",
	"PHOTO_MAX_BYTES",
	"RABBITMQ_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"ALLOW_BACKFILL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", filepath.Join("data", "medtrack.db"))
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("TZ", "UTC")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("PHOTO_DIR", filepath.Join("data", "photos"))
	v.SetDefault("PHOTO_MAX_BYTES", 5<<20)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ALLOW_BACKFILL", false)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	// A missing .env file is fine; the environment alone is enough.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TZ, falling back to UTC for unknown zone names.
func (c *Config) Location() (*time.Location, bool) {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" {
		return time.UTC, true
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be changed from the default in production")
	}
	if c.PhotoMaxBytes <= 0 {
		return fmt.Errorf("PHOTO_MAX_BYTES must be positive, got %d", c.PhotoMaxBytes)
	}
	if strings.TrimSpace(c.PhotoDir) == "" {
		return errors.New("PHOTO_DIR must not be empty")
	}
	return nil
}
