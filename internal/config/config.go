package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string

	CORSAllowOrigins []string
	// DefaultPageLimit applies to GET /submissions when no limit is given.
	DefaultPageLimit int
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type LogConfig struct {
	Level string
	File  string
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads configuration from the environment, loading a .env file from the
// working directory first when one exists. Variables already set in the
// process environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, fallback string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return fallback
		}
		return v
	}
	optInt := func(key string, fallback int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return fallback
		}
		return v
	}
	optInt32 := func(key string, fallback int32) int32 {
		v := optInt(key, int(fallback))
		if v > math.MaxInt32 {
			invalid = append(invalid, key)
			return fallback
		}
		return int32(v)
	}
	optSeconds := func(key string, fallback time.Duration) time.Duration {
		secs := optInt(key, -1)
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}

	cfg.App = AppConfig{
		AppName:          req("APP_NAME"),
		Environment:      req("APP_ENV"),
		HTTPPort:         req("HTTP_PORT"),
		CORSAllowOrigins: splitList(opt("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DefaultPageLimit: optInt("SUBMISSIONS_DEFAULT_LIMIT", 50),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         req("DB_HOST"),
		DBPort:         req("DB_PORT"),
		DBName:         req("DB_NAME"),
		DBUser:         req("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE", "disable"),
		ConnectTimeout: optSeconds("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:   optInt32("DB_POOL_MAX_CONNS", 0),
		PoolMinConns:   optInt32("DB_POOL_MIN_CONNS", 0),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", ""),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
		TTL:      optSeconds("REDIS_TTL", 600*time.Second),
	}

	cfg.Log = LogConfig{
		Level: opt("LOG_LEVEL", "info"),
		File:  opt("LOG_FILE", ""),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
