package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/lab-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Completion API configuration
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`

	// Local JSON storage and in-memory caches
	StorageCfg StorageConfig `envPrefix:"STORAGE_"`

	// Intake limits
	IntakeCfg IntakeConfig `envPrefix:"INTAKE_"`

	// Hosted analysis form
	FormCfg FormConfig `envPrefix:"FORM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN,notEmpty"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	QueueSize          int                  `env:"QUEUE_SIZE" envDefault:"32"`
	ChunkDelay         time.Duration        `env:"CHUNK_DELAY" envDefault:"500ms"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Model         string               `env:"MODEL"`
	ModelFilter   string               `env:"MODEL_FILTER" envDefault:"qwen"`
	ModelCacheTTL time.Duration        `env:"MODEL_CACHE_TTL" envDefault:"1h"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"200s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"190s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://api.intelligence.io.solutions/api/v1"`
}

// StorageConfig holds file store and cache settings
type StorageConfig struct {
	DataDir    string        `env:"DATA_DIR" envDefault:"user_data"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	ReportTTL  time.Duration `env:"REPORT_TTL" envDefault:"2h"`
}

// IntakeConfig holds analysis intake limits
type IntakeConfig struct {
	MaxPDFSize    int64 `env:"MAX_PDF_SIZE" envDefault:"10485760"` // 10 MiB
	MaxTextLength int   `env:"MAX_TEXT_LENGTH" envDefault:"15000"`
	PDFWorkers    int64 `env:"PDF_WORKERS" envDefault:"4"`
}

// FormConfig holds settings of the hosted analysis form
type FormConfig struct {
	ServerAddr string        `env:"SERVER_ADDR" envDefault:":8080"`
	PublicURL  string        `env:"PUBLIC_URL"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.TelegramCfg.QueueSize < 1 || cfg.TelegramCfg.QueueSize > 1024 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_QUEUE_SIZE must be between 1 and 1024, got %d", cfg.TelegramCfg.QueueSize))
	}

	if cfg.TelegramCfg.ChunkDelay < 0 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_CHUNK_DELAY must not be negative, got %s", cfg.TelegramCfg.ChunkDelay))
	}

	// Validate intake configuration
	if cfg.IntakeCfg.MaxPDFSize < 1 {
		errors = append(errors, fmt.Sprintf("INTAKE_MAX_PDF_SIZE must be positive, got %d", cfg.IntakeCfg.MaxPDFSize))
	}

	if cfg.IntakeCfg.MaxTextLength < 100 {
		errors = append(errors, fmt.Sprintf("INTAKE_MAX_TEXT_LENGTH must be at least 100, got %d", cfg.IntakeCfg.MaxTextLength))
	}

	if cfg.IntakeCfg.PDFWorkers < 1 || cfg.IntakeCfg.PDFWorkers > 64 {
		errors = append(errors, fmt.Sprintf("INTAKE_PDF_WORKERS must be between 1 and 64, got %d", cfg.IntakeCfg.PDFWorkers))
	}

	// Validate storage configuration
	if strings.TrimSpace(cfg.StorageCfg.DataDir) == "" {
		errors = append(errors, "STORAGE_DATA_DIR must not be empty")
	}

	if cfg.StorageCfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("STORAGE_SESSION_TTL must be positive, got %s", cfg.StorageCfg.SessionTTL))
	}

	// Validate form configuration
	if cfg.FormCfg.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("FORM_TOKEN_TTL must be positive, got %s", cfg.FormCfg.TokenTTL))
	}

	if cfg.FormCfg.PublicURL != "" && !strings.HasPrefix(cfg.FormCfg.PublicURL, "https://") {
		errors = append(errors, "FORM_PUBLIC_URL must use https")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
