package main

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lunars/server/glicko"
)

type Config struct {
	DatabaseURL string
	Port        string
	AutoMigrate bool
	Debug       bool

	RatingPeriod time.Duration
	Glicko       glicko.Config

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// LoadConfig reads .env (if present) and the process environment.
// Environment variables win over .env entries.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	defaults := glicko.DefaultConfig()
	v.SetDefault("PORT", "8080")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("DEBUG", false)
	v.SetDefault("RATING_PERIOD_DAYS", 7)
	v.SetDefault("GLICKO_TAU", defaults.Tau)
	v.SetDefault("GLICKO_CANONICAL_VOLATILITY", defaults.CanonicalVolatility)
	v.SetDefault("READ_TIMEOUT", "15s")
	v.SetDefault("WRITE_TIMEOUT", "15s")
	v.SetDefault("REQUEST_TIMEOUT", "10s")

	cfg := Config{
		DatabaseURL:    v.GetString("DATABASE_URL"),
		Port:           v.GetString("PORT"),
		AutoMigrate:    v.GetBool("AUTO_MIGRATE"),
		Debug:          v.GetBool("DEBUG"),
		RatingPeriod:   time.Duration(v.GetInt("RATING_PERIOD_DAYS")) * 24 * time.Hour,
		Glicko:         defaults,
		ReadTimeout:    v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:   v.GetDuration("WRITE_TIMEOUT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
	}
	cfg.Glicko.Tau = v.GetFloat64("GLICKO_TAU")
	cfg.Glicko.CanonicalVolatility = v.GetBool("GLICKO_CANONICAL_VOLATILITY")

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("missing required env var DATABASE_URL; put it in .env (dev) or set it on the host (prod)")
	}
	if cfg.RatingPeriod <= 0 {
		return Config{}, errors.New("RATING_PERIOD_DAYS must be positive")
	}
	if cfg.Glicko.Tau <= 0 {
		return Config{}, errors.New("GLICKO_TAU must be positive")
	}
	return cfg, nil
}
