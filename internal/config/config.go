package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPPort string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	TextProviderURL     string
	TextProviderAPIKey  string
	TextProviderTimeout time.Duration

	StripeAPIKey  string
	StripeBaseURL string

	AirwallexClientID string
	AirwallexAPIKey   string
	AirwallexBaseURL  string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "creditledger"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPPort: getenv("HTTP_PORT", "8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "creditledger"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		TextProviderURL:     getenv("TEXT_PROVIDER_URL", ""),
		TextProviderAPIKey:  strings.TrimSpace(getenv("TEXT_PROVIDER_API_KEY", "")),
		TextProviderTimeout: getenvDuration("TEXT_PROVIDER_TIMEOUT", 60*time.Second),

		StripeAPIKey:  strings.TrimSpace(getenv("STRIPE_API_KEY", "")),
		StripeBaseURL: getenv("STRIPE_BASE_URL", "https://api.stripe.com"),

		AirwallexClientID: strings.TrimSpace(getenv("AIRWALLEX_CLIENT_ID", "")),
		AirwallexAPIKey:   strings.TrimSpace(getenv("AIRWALLEX_API_KEY", "")),
		AirwallexBaseURL:  getenv("AIRWALLEX_BASE_URL", "https://api.airwallex.com"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

// Module provides the application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)
