package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	KVDSN         string // sqlite file for persisted session state
	BackendURL    string // remote booking API base URL
	SessionSecret string // HS256 key for sid cookies
	RedisAddr     string // optional; empty disables the catalog cache
	AMQPURL       string // optional; empty disables event publishing
	LogFile       string
}

func Load() Config {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		KVDSN:         getenv("KV_DSN", "autocare.db"),
		BackendURL:    getenv("BACKEND_API_URL", "http://localhost:9090/api"),
		SessionSecret: getenv("SESSION_SECRET", "dev-only-secret"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		LogFile:       getenv("LOG_FILE", "./autocare.log"),
	}
	log.Printf("[config] PORT=%s KV_DSN=%s BACKEND_API_URL=%s REDIS_ADDR=%s LOG_FILE=%s",
		cfg.Port, cfg.KVDSN, cfg.BackendURL, cfg.RedisAddr, cfg.LogFile)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
