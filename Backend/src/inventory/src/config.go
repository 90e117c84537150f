package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DBPath    string
	DBDriver  string
	IDFloor   int64
	CacheSize int
	LogLevel  string
	// RabbitMQ es opcional: sin URL no se publican eventos
	RabbitURL      string
	RabbitExchange string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return def
	}
	return n
}

// LoadConfig reads an optional .env file first; variables already set in the
// environment win over the file.
func LoadConfig(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", f).Msg("could not load env file")
		}
	}

	return Config{
		DBPath:         getenv("BOOKSTORE_DB_PATH", "ebookstore"),
		DBDriver:       getenv("BOOKSTORE_DB_DRIVER", driverModernc),
		IDFloor:        getenvInt("BOOKSTORE_ID_FLOOR", defaultIDFloor),
		CacheSize:      int(getenvInt("BOOKSTORE_CACHE_SIZE", 128)),
		LogLevel:       getenv("BOOKSTORE_LOG_LEVEL", "warn"),
		RabbitURL:      getenv("RABBITMQ_URL", ""),
		RabbitExchange: getenv("RABBITMQ_EXCHANGE", "bookstore.events"),
	}
}
