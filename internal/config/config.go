package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	QueueDriverHTTP     = "http"
	QueueDriverDatabase = "database"
)

type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"oneof=dev prod test"`
	LogLevel string `validate:"omitempty,oneof=trace debug info warn error"`
	LogFile  string

	DatabaseDriver string `validate:"oneof=postgres sqlite"`
	DatabaseURL    string `validate:"required"`

	StreamAPIKey      string `validate:"required"`
	StreamAPISecret   string `validate:"required"`
	StreamBaseURL     string `validate:"required,url"`
	StreamRealtimeURL string `validate:"required,url"`
	StreamCallType    string `validate:"required"`
	OpenAIAPIKey      string

	QueueDriver          string `validate:"oneof=http database"`
	QueueEventURL        string `validate:"required_if=QueueDriver http"`
	QueueEventKey        string `validate:"required_if=QueueDriver http"`
	PostProcessEventName string `validate:"required"`

	CORSAllowedOrigins []string

	UpstreamTimeout     time.Duration `validate:"gt=0"`
	AgentLaunchWorkers  int           `validate:"gte=1"`
	AgentLaunchAttempts int           `validate:"gte=1"`
	WebhookMaxBodyBytes int64         `validate:"gt=0"`
}

// Load reads .env (if present) and the process environment, applies defaults and validates.
func Load() (*Config, error) {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	timeout, err := durationEnv("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	workers, err := intEnv("AGENT_LAUNCH_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	attempts, err := intEnv("AGENT_LAUNCH_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	maxBody, err := intEnv("WEBHOOK_MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "dev"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogFile:  os.Getenv("LOG_FILE"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		StreamAPIKey:      os.Getenv("STREAM_API_KEY"),
		StreamAPISecret:   os.Getenv("STREAM_API_SECRET"),
		StreamBaseURL:     getEnv("STREAM_BASE_URL", "https://video.stream-io-api.com"),
		StreamRealtimeURL: getEnv("STREAM_REALTIME_URL", "wss://video.stream-io-api.com/video/connect_agent"),
		StreamCallType:    getEnv("STREAM_CALL_TYPE", "default"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),

		QueueDriver:          getEnv("QUEUE_DRIVER", QueueDriverHTTP),
		QueueEventURL:        getEnv("QUEUE_EVENT_URL", "https://inn.gs"),
		QueueEventKey:        os.Getenv("QUEUE_EVENT_KEY"),
		PostProcessEventName: getEnv("POSTPROCESS_EVENT_NAME", "meetings/processing"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		UpstreamTimeout:     timeout,
		AgentLaunchWorkers:  workers,
		AgentLaunchAttempts: attempts,
		WebhookMaxBodyBytes: int64(maxBody),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
