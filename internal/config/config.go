package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings. Secrets are injected from the
// environment at startup instead of living as literals in the code.
type Config struct {
	HTTPAddr     string
	DatabaseDSN  string
	JWTSecret    []byte
	TokenTTL     time.Duration
	RedisAddr    string
	KafkaBrokers []string
}

// Load reads the configuration from the environment. A .env file is
// honored when present. The JWT secret is mandatory.
func Load() (Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}

	cfg := Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:  getEnv("DATABASE_URL", "host=localhost user=busline password=busline dbname=busline port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:    []byte(secret),
		TokenTTL:     time.Hour,
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, errors.New("TOKEN_TTL is not a valid duration")
		}
		cfg.TokenTTL = parsed
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
