// Package config loads application settings from a .env file and the
// environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every non-database setting the server needs at startup.
// Database settings live with the database package.
type Config struct {
	Port string

	// JWTSecret signs and verifies session tokens. Required.
	JWTSecret string
	// TokenTTL bounds session token validity.
	TokenTTL time.Duration

	// MidtransServerKey authenticates against the payment provider. Required
	// unless the provider is stubbed out.
	MidtransServerKey  string
	MidtransProduction bool
	// ProviderTimeout bounds the single external round trip of a charge
	// authorization.
	ProviderTimeout time.Duration
}

// Load reads .env (if present), then the environment, applying defaults for
// everything except secrets.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           getDuration("TOKEN_TTL", time.Hour),
		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: getBool("MIDTRANS_PRODUCTION", false),
		ProviderTimeout:    getDuration("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

// Validate reports fatal misconfiguration. Called once at startup; the
// process must not serve traffic without a signing secret.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errMissing("JWT_SECRET")
	}
	return nil
}

type errMissing string

func (e errMissing) Error() string { return "missing required environment variable " + string(e) }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
