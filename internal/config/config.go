package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	CookieSecure   bool
	AllowedOrigins string
	RateLimit      RateLimitConfig
	UserRateLimit  RateLimitConfig
	LoginRateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the session-store connection. URL wins over the
// host/port pair when both are set.
type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig keeps the raw expiry descriptors next to their parsed
// durations so the configured value can be reported back verbatim.
type JWTConfig struct {
	AccessSecret     string
	AccessExpiresIn  string
	AccessTTL        time.Duration
	RefreshSecret    string
	RefreshExpiresIn string
	RefreshTTL       time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type SeedConfig struct {
	AdminPhone    string
	AdminPassword string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT", "100"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW", "60"))
	userRateLimit, _ := strconv.Atoi(getEnv("USER_RATE_LIMIT", "60"))
	loginRateLimit, _ := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "5"))
	rateLimitEnabled := getEnv("RATE_LIMIT_ENABLED", "true") == "true"

	jwtCfg, err := loadJWT()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			CookieSecure:   getEnv("COOKIE_SECURE", "true") == "true",
			AllowedOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
			RateLimit: RateLimitConfig{
				Enabled: rateLimitEnabled,
				Limit:   rateLimit,
				Window:  time.Duration(rateLimitWindow) * time.Second,
			},
			UserRateLimit: RateLimitConfig{
				Enabled: rateLimitEnabled,
				Limit:   userRateLimit,
				Window:  time.Duration(rateLimitWindow) * time.Second,
			},
			LoginRateLimit: RateLimitConfig{
				Enabled: rateLimitEnabled,
				Limit:   loginRateLimit,
				Window:  time.Minute,
			},
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "repairdesk"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: *jwtCfg,
		Seed: SeedConfig{
			AdminPhone:    getEnv("SEED_ADMIN_PHONE", ""),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
	}, nil
}

func loadJWT() (*JWTConfig, error) {
	cfg := &JWTConfig{
		AccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		AccessExpiresIn:  getEnv("JWT_ACCESS_EXPIRES_IN", "1d"),
		RefreshSecret:    getEnv("JWT_REFRESH_SECRET", ""),
		RefreshExpiresIn: getEnv("JWT_REFRESH_EXPIRES_IN", "7d"),
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve validates the secrets and parses both expiry descriptors.
func (c *JWTConfig) Resolve() error {
	if c.AccessSecret == "" {
		return errors.New("JWT_ACCESS_SECRET is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET is required")
	}

	var err error
	if c.AccessTTL, err = ParseTTL(c.AccessExpiresIn); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRES_IN: %w", err)
	}
	if c.RefreshTTL, err = ParseTTL(c.RefreshExpiresIn); err != nil {
		return fmt.Errorf("JWT_REFRESH_EXPIRES_IN: %w", err)
	}
	return nil
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
