package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	APIBaseURL  string
	SocketURL   string
	HTTPTimeout time.Duration

	SocketMaxRetries    uint64
	SocketRetryBase     time.Duration
	HandshakeMaxRetries uint64
	HandshakeRetryBase  time.Duration
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "taxiclient"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "http://localhost:3000"))
	cfg.SocketURL = cast.ToString(getOrReturnDefault("SOCKET_URL", "ws://localhost:3000/socket"))
	cfg.HTTPTimeout = time.Duration(cast.ToInt(getOrReturnDefault("HTTP_TIMEOUT_SECONDS", 10))) * time.Second

	cfg.SocketMaxRetries = cast.ToUint64(getOrReturnDefault("SOCKET_MAX_RETRIES", 5))
	cfg.SocketRetryBase = time.Duration(cast.ToInt(getOrReturnDefault("SOCKET_RETRY_BASE_MS", 1000))) * time.Millisecond
	cfg.HandshakeMaxRetries = cast.ToUint64(getOrReturnDefault("HANDSHAKE_MAX_RETRIES", 5))
	cfg.HandshakeRetryBase = time.Duration(cast.ToInt(getOrReturnDefault("HANDSHAKE_RETRY_BASE_MS", 200))) * time.Millisecond

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
