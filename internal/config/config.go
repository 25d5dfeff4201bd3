// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present; values
// already set in the process environment win over the file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Every field has a local
// default so the site starts on a developer machine without any setup.
type Config struct {
	Env  string // application environment (e.g. "dev", "production")
	Port string // HTTP port to listen on

	DBDriver    string // "postgres" or "mysql"
	DatabaseURL string // connection string for the relational store
	DBUser      string // mysql fallback when DATABASE_URL is empty
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string

	PublicBaseURL  string // prefix for proof links handed back to clients
	StaticDir      string // marketing site root served at "/"
	UploadDir      string // local proof directory
	MaxUploadBytes int64  // hard ceiling per proof file

	Storage StorageConfig

	RabbitURL     string // empty disables event publishing
	QueueConsumer bool   // run the proof log consumer inside the server
	QueueLogDir   string

	Debug     bool
	SentryDSN string
}

// StorageConfig selects where proofs are written.
type StorageConfig struct {
	Backend        string // "local" or "minio"
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// DefaultMaxUploadBytes is the proof size ceiling (10 MiB).
const DefaultMaxUploadBytes int64 = 10 << 20

// Load reads configuration values from the environment and returns a Config.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not read .env: %v", err)
	}

	cfg := Config{
		Env:  getenv("APP_ENV", "dev"),
		Port: getenv("PORT", "3000"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBUser:      getenv("DB_USER", "root"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "3306"),
		DBName:      getenv("DB_NAME", "monkey_ranch"),

		StaticDir:      getenv("STATIC_DIR", "public"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),

		Storage: StorageConfig{
			Backend:        strings.ToLower(getenv("STORAGE_BACKEND", "local")),
			MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
			MinioBucket:    getenv("MINIO_BUCKET", "comprobantes"),
			MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		},

		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		QueueConsumer: envBool("QUEUE_CONSUMER", false),
		QueueLogDir:   getenv("QUEUE_LOG_DIR", "logs"),

		Debug:     envBool("LOG_DEBUG", false),
		SentryDSN: os.Getenv("SENTRY_DSN"),
	}
	cfg.PublicBaseURL = strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.DatabaseURL == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseURL = "postgresql://localhost:5432/monkey_ranch?sslmode=disable"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envInt64(k string, d int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
