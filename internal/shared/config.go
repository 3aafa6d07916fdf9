package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	TravelBase  string
	TravelKey   string
	JWTSecret   string
	AppBaseURL  string // public base used in activation/reset links
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	SyncEvery   time.Duration
	CacheTTL    time.Duration
	SeedOnBoot  bool
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":5000"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/calendar?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		TravelBase:  env("TRAVEL_BASE_URL", "https://api.travelbooking.example/v1"),
		TravelKey:   env("TRAVEL_API_KEY", ""),
		JWTSecret:   env("JWT_SECRET", ""),
		AppBaseURL:  env("APP_BASE_URL", "http://localhost:3000"),
		SMTPHost:    env("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    atoi("SMTP_PORT", 465),
		SMTPUser:    env("SMTP_USER", ""),
		SMTPPass:    env("SMTP_PASSWORD", ""),
		SMTPFrom:    env("SMTP_FROM", ""),
		SyncEvery:   time.Duration(atoi("SYNC_INTERVAL_HOURS", 6)) * time.Hour,
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SeedOnBoot:  env("SEED_ON_BOOT", "1") != "0",
	}
	if c.TravelKey == "" {
		log.Warn().Msg("TRAVEL_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
