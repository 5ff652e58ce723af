package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string
	PingTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KeycloakConfig struct {
	URL                   string
	Realm                 string
	ClientID              string
	ClientSecret          string
	JWKSRequestsPerMinute int
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigin string
}

// Issuer derives the realm issuer URL from the Keycloak base URL and realm name.
func (k KeycloakConfig) Issuer() string {
	return strings.TrimRight(k.URL, "/") + "/realms/" + k.Realm
}

// JWKSURI derives the realm certificate endpoint, used as a fallback when OIDC
// discovery is unavailable.
func (k KeycloakConfig) JWKSURI() string {
	return k.Issuer() + "/protocol/openid-connect/certs"
}

// IsProduction reports whether internal error detail should be suppressed from
// response bodies.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("DATABASE_PING_TIMEOUT", 10)
	viper.SetDefault("KC_URL", "http://localhost:8080")
	viper.SetDefault("KC_REALM", "Demo-Realm")
	viper.SetDefault("KC_CLIENT_ID", "demo-backend")
	viper.SetDefault("JWKS_REQUESTS_PER_MINUTE", 5)
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:         viper.GetString("DATABASE_URL"),
			PingTimeout: time.Duration(viper.GetInt("DATABASE_PING_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Keycloak: KeycloakConfig{
			URL:                   viper.GetString("KC_URL"),
			Realm:                 viper.GetString("KC_REALM"),
			ClientID:              viper.GetString("KC_CLIENT_ID"),
			ClientSecret:          os.Getenv("KC_CLIENT_SECRET"),
			JWKSRequestsPerMinute: viper.GetInt("JWKS_REQUESTS_PER_MINUTE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigin: viper.GetString("FRONTEND_URL"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("environment variable DATABASE_URL is required")
	}
	if cfg.Keycloak.JWKSRequestsPerMinute <= 0 {
		cfg.Keycloak.JWKSRequestsPerMinute = 5
	}

	return cfg, nil
}
