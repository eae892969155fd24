// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// DBURL empty disables Postgres; profiles are then not persisted.
	DBURL string `env:"DB_URL"`
	// RedisURL empty disables the result cache.
	RedisURL string `env:"REDIS_URL"`
	// KafkaBrokers empty disables profile events.
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	ProfileEventsTopic string   `env:"PROFILE_EVENTS_TOPIC" envDefault:"profile.extracted"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"cv-autofill"`

	MaxUploadMB      int64  `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin  int    `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	// ExtractBudgetPerMin caps extractions across all replicas; needs Redis. Zero disables it.
	ExtractBudgetPerMin   int           `env:"EXTRACT_BUDGET_PER_MIN" envDefault:"0"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	// HTTPWriteTimeout bounds non-streaming handlers; OCR of long PDFs can be slow.
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// API basic auth; both empty leaves /v1 open.
	APIUsername     string `env:"API_USERNAME"`
	APIPasswordHash string `env:"API_PASSWORD_HASH"`

	PdftoppmBin    string        `env:"PDFTOPPM_BIN" envDefault:"pdftoppm"`
	PdfinfoBin     string        `env:"PDFINFO_BIN" envDefault:"pdfinfo"`
	TesseractBin   string        `env:"TESSERACT_BIN" envDefault:"tesseract"`
	TesseractLang  string        `env:"TESSERACT_LANG" envDefault:"eng"`
	TessdataDir    string        `env:"TESSDATA_DIR"`
	RasterScale    float64       `env:"RASTER_SCALE" envDefault:"1.5"`
	RasterMaxPages int           `env:"RASTER_MAX_PAGES" envDefault:"0"`
	OCRTimeout     time.Duration `env:"OCR_TIMEOUT" envDefault:"60s"`

	StatusClearAfter time.Duration `env:"STATUS_CLEAR_AFTER" envDefault:"10s"`
	SessionIdleTTL   time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	ProfileCacheTTL  time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"24h"`
	HeuristicsFile   string        `env:"HEURISTICS_FILE"`
	EntityRecognizer string        `env:"ENTITY_RECOGNIZER" envDefault:"prose"`

	DataRetentionDays int           `env:"DATA_RETENTION_DAYS" envDefault:"90"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	AWSRegion        string `env:"AWS_REGION"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`

	// Retry for external dependencies at startup
	RetryInitialInterval time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"250ms"`
	RetryMaxInterval     time.Duration `env:"RETRY_MAX_INTERVAL" envDefault:"5s"`
	RetryMaxElapsed      time.Duration `env:"RETRY_MAX_ELAPSED" envDefault:"30s"`
	RetryMultiplier      float64       `env:"RETRY_MULTIPLIER" envDefault:"2.0"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.RasterScale <= 0 {
		return Config{}, fmt.Errorf("op=config.Load: RASTER_SCALE must be positive, got %v", cfg.RasterScale)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// AuthEnabled reports whether basic auth guards the API.
func (c Config) AuthEnabled() bool { return c.APIUsername != "" && c.APIPasswordHash != "" }

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }
