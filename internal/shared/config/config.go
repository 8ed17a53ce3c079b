package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	BackendBaseURL string
	BackendTimeout time.Duration

	PollInterval    time.Duration
	PollRetryDelay  time.Duration
	PollMaxFailures int
	PollMaxDuration time.Duration
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	StateBackend  string
	StateDir      string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string
	DatabaseURL   string
	ValkeyAddress string
	ValkeyPass    string
	ValkeyTLS     bool

	LogFormat string
	LogLevel  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	backend := normalizeStateBackend(getEnv("STATE_BACKEND", "file"))
	dbURL := os.Getenv("DATABASE_URL")

	if backend == StateBackendPostgres && dbURL == "" {
		slog.Warn("STATE_BACKEND=postgres without DATABASE_URL")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		BackendBaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"), "/"),
		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 120)) * time.Second,

		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		PollRetryDelay:  time.Duration(getEnvInt("POLL_RETRY_DELAY_MS", 2000)) * time.Millisecond,
		PollMaxFailures: getEnvInt("POLL_MAX_FAILURES", 30),
		PollMaxDuration: time.Duration(getEnvInt("POLL_MAX_DURATION_SECONDS", 1800)) * time.Second,
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,

		StateBackend:  backend,
		StateDir:      getEnv("STATE_DIR", "./data"),
		AWSRegion:     getEnv("AWS_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:   getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:   dbURL,
		ValkeyAddress: getEnv("VALKEY_INIT_ADDRESS", "127.0.0.1:6379"),
		ValkeyPass:    os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:     getEnvBool("VALKEY_TLS", false),

		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat(env)),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// State persistence backends.
const (
	StateBackendMemory   = "memory"
	StateBackendFile     = "file"
	StateBackendS3       = "s3"
	StateBackendPostgres = "postgres"
	StateBackendValkey   = "valkey"
)

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		slog.Warn("invalid int env, using default", slog.String("key", key), slog.Int("default", def))
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStateBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory", "mem":
		return StateBackendMemory
	case "s3":
		return StateBackendS3
	case "postgres", "pg":
		return StateBackendPostgres
	case "valkey", "redis":
		return StateBackendValkey
	default:
		return StateBackendFile
	}
}

func defaultLogFormat(env string) string {
	if env == "production" || env == "staging" {
		return "json"
	}
	return "text"
}
