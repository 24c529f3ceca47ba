package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, read from the environment.
type Config struct {
	MongoURI           string
	DatabaseName       string
	Port               string
	JWTSecret          string
	ChapaSecretKey     string
	ChapaWebhookSecret string
	AppBaseURL         string
	FreshDecayHours    int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	cfg := &Config{
		MongoURI:           os.Getenv("MONGOURI"),
		DatabaseName:       os.Getenv("MONGO_DB"),
		Port:               os.Getenv("PORT"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ChapaSecretKey:     os.Getenv("CHAPA_SECRET_KEY"),
		ChapaWebhookSecret: os.Getenv("CHAPA_WEBHOOK_SECRET"),
		AppBaseURL:         os.Getenv("APP_BASE_URL"),
		FreshDecayHours:    3,
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGOURI environment variable not set")
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "asafishdb"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if v := os.Getenv("FRESH_DECAY_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid FRESH_DECAY_HOURS %q", v)
		}
		cfg.FreshDecayHours = hours
	}

	return cfg, nil
}

// DecayThreshold returns the freshness decay threshold as a duration.
func (c *Config) DecayThreshold() time.Duration {
	return time.Duration(c.FreshDecayHours) * time.Hour
}
