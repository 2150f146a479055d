package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	OpenAIKey    string
	OpenAIBase   string
	OpenAIModel  string
	HotelAPIURL  string
	HotelAPIUser string
	HotelAPIPass string
	SnapshotPath string
	RedisAddr    string
	RedisPass    string
	RedisDB      int
	CacheTTL     time.Duration
	DescWorkers  int
	ChatTimeout  time.Duration
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
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		OpenAIKey:    env("OPENAI_API_KEY", ""),
		OpenAIBase:   env("OPENAI_API_URL", "https://api.deepseek.com/v1"),
		OpenAIModel:  env("OPENAI_MODEL", "deepseek-chat"),
		HotelAPIURL:  env("HOTEL_API_URL", "https://api.travelnext.works/api/hotel-api-v6/hotel_search"),
		HotelAPIUser: env("HOTEL_API_USER", ""),
		HotelAPIPass: env("HOTEL_API_PASSWORD", ""),
		SnapshotPath: env("HOTEL_SNAPSHOT_PATH", "data/hotels_snapshot.json"),
		RedisAddr:    env("REDIS_ADDR", ""),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		DescWorkers:  atoi("DESC_WORKERS", 4),
		ChatTimeout:  time.Duration(atoi("CHAT_TIMEOUT_SECONDS", 30)) * time.Second,
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty, text generation disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
