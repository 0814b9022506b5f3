package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO (profile avatars).
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

// AdminConfig describes the admin account seeded at startup. Empty email disables seeding.
type AdminConfig struct {
	Email    string
	Password string
}

// TradingConfig holds simulator settings.
type TradingConfig struct {
	DemoBalance   float64
	CloseInterval time.Duration
}

// MarketConfig holds price feed settings.
type MarketConfig struct {
	TickInterval   time.Duration
	HistorySize    int
	SeedPoints     int
	QuoteURL       string
	QuoteTTL       time.Duration
	RequestTimeout time.Duration
}

// InvestmentConfig holds the accrual schedule (robfig/cron syntax).
type InvestmentConfig struct {
	AccrualSchedule string
}

// ReferralConfig holds signup bonus amounts.
type ReferralConfig struct {
	SignupBonus   float64
	ReferrerBonus float64
}

// RateLimitConfig configures per-client limits on auth endpoints.
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	PublicURL  string
	Timezone   string
	LogLevel   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Admin      AdminConfig
	Trading    TradingConfig
	Market     MarketConfig
	Investment InvestmentConfig
	Referral   ReferralConfig
	RateLimit  RateLimitConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:   getEnv("APP_HOST", "localhost:8080"),
		Port:      getEnv("PORT", "8080"),
		PublicURL: getEnv("APP_PUBLIC_URL", "http://localhost:5173"),
		Timezone:  getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "avatars"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", "cryptoinvest"),
			TokenTTL:  getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Trading: TradingConfig{
			DemoBalance:   getEnvFloat("TRADING_DEMO_BALANCE", 10000),
			CloseInterval: getEnvDuration("TRADING_CLOSE_INTERVAL", time.Second),
		},
		Market: MarketConfig{
			TickInterval:   getEnvDuration("MARKET_TICK_INTERVAL", 2*time.Second),
			HistorySize:    getEnvInt("MARKET_HISTORY_SIZE", 100),
			SeedPoints:     getEnvInt("MARKET_SEED_POINTS", 60),
			QuoteURL:       getEnv("MARKET_QUOTE_URL", "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,ethereum&vs_currencies=usd"),
			QuoteTTL:       getEnvDuration("MARKET_QUOTE_TTL", time.Minute),
			RequestTimeout: getEnvDuration("MARKET_REQUEST_TIMEOUT", 5*time.Second),
		},
		Investment: InvestmentConfig{
			AccrualSchedule: getEnv("ACCRUAL_SCHEDULE", "@every 1h"),
		},
		Referral: ReferralConfig{
			SignupBonus:   getEnvFloat("REFERRAL_SIGNUP_BONUS", 10),
			ReferrerBonus: getEnvFloat("REFERRAL_REFERRER_BONUS", 5),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 5),
			Burst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level parses LogLevel, falling back to info.
func (c *AppConfig) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
