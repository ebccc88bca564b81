package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction is the APP_ENV value that turns on production-only behaviour
	// such as Secure session cookies.
	EnvProduction = "production"

	// DefaultCookieName is used when COOKIE_NAME is not set.
	DefaultCookieName = "auth-token"
	// DefaultTokenLifetime is used when JWT_EXPIRES_IN is not set.
	DefaultTokenLifetime = 7 * 24 * time.Hour
	// DefaultBcryptCost is the adaptive hashing cost for stored passwords.
	DefaultBcryptCost = 12
)

// Storage backends selectable through DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is empty.
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string

	DBDriver      string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret     string
	TokenLifetime time.Duration
	CookieName    string
	BcryptCost    int

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. Outside
// production a .env file in the working directory is read first; variables
// already present in the environment win.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != EnvProduction {
		_ = godotenv.Load()
	}

	lifetime, err := ParseDuration(getEnv("JWT_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "admindash"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/admindash?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenLifetime: lifetime,
		CookieName:    getEnv("COOKIE_NAME", DefaultCookieName),
		BcryptCost:    getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, ErrMissingJWTSecret
	}

	switch cfg.DBDriver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ParseDuration accepts Go durations ("12h", "90m"), a day suffix ("7d") and
// bare integers, which are read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Second
	} else if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
