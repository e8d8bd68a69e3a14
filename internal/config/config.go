package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	FrontendURL         string
	AllowedOrigins      []string
	SessionCookieName   string
	SessionTTL          time.Duration
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	AllowedEmailDomains []string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	DevRoutesEnabled    bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an
// optional .env file. Missing secrets are a fatal startup error.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AEGIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Aegis Campus API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8000")
	v.SetDefault("frontend.url", "http://localhost:4173")
	v.SetDefault("session.cookie_name", "aegis_session")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("allowed.email_domains", "iitmandi.ac.in,students.iitmandi.ac.in")

	ttlString := v.GetString("session.ttl")
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		FrontendURL:         strings.TrimRight(v.GetString("frontend.url"), "/"),
		SessionCookieName:   v.GetString("session.cookie_name"),
		SessionTTL:          ttl,
		GoogleClientID:      v.GetString("google.client_id"),
		GoogleClientSecret:  v.GetString("google.client_secret"),
		GoogleRedirectURL:   v.GetString("google.redirect_url"),
		AllowedEmailDomains: splitList(v.GetString("allowed.email_domains")),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		DevRoutesEnabled:    v.GetString("app.env") != "production",
	}

	cfg.AllowedOrigins = []string{"http://localhost:4173", cfg.FrontendURL}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return Config{}, fmt.Errorf("google oauth credentials must be provided")
	}

	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return Config{}, fmt.Errorf("cloudinary credentials must be provided")
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
