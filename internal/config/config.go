package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // HOSTEL_TZ must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	DBDriver         string
	DatabaseURL      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	QueueBackend     string
	QueueKey         string
	RateLimitPerMin  int
	RateLimitBackend string
	TimeZone         string
	LogLevel         slog.Level
	TemplatesDir     string
}

// Load reads an optional .env file, then returns configuration populated
// from environment variables with defaults suited to a local SQLite setup.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "error", err)
	}
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8081"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", "hostel_hms.db"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          intEnv("REDIS_DB", 0),
		QueueBackend:     getEnv("QUEUE_BACKEND", "memory"),
		QueueKey:         getEnv("QUEUE_KEY", "hostel:events"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		TimeZone:         getEnv("HOSTEL_TZ", ""),
		LogLevel:         levelEnv("LOG_LEVEL", slog.LevelInfo),
		TemplatesDir:     getEnv("TEMPLATES_DIR", ""),
	}
}

// Production reports whether the app runs in a production environment.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Location resolves TimeZone; an empty value means the process local zone.
func (a App) Location() (*time.Location, error) {
	if a.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", a.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		slog.Warn("invalid int, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}

func levelEnv(key string, fallback slog.Level) slog.Level {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(val)); err != nil {
		slog.Warn("invalid log level, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	return lvl
}
