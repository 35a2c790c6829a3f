// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Extraction ExtractionConfig        `mapstructure:"extraction"`
	Scoring    ScoringConfig           `mapstructure:"scoring"`
	Matching   MatchingConfig          `mapstructure:"matching"`
	RateLimit  RateLimitConfig         `mapstructure:"rate_limit"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	MaxUploadBytes     int64    `mapstructure:"max_upload_bytes"`
	ReadTimeout        int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout       int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout    int      `mapstructure:"shutdown_timeout"` // milliseconds
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ExtractionConfig struct {
	MinTextLength    int       `mapstructure:"min_text_length"`
	PdftotextPath    string    `mapstructure:"pdftotext_path"`
	PdftotextTimeout int       `mapstructure:"pdftotext_timeout"` // milliseconds
	TempDir          string    `mapstructure:"temp_dir"`
	OCR              OCRConfig `mapstructure:"ocr"`
}

type OCRConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	RasterizerPath string `mapstructure:"rasterizer_path"`
	TesseractPath  string `mapstructure:"tesseract_path"`
	Language       string `mapstructure:"language"`
	DPI            int    `mapstructure:"dpi"`
	MaxPages       int    `mapstructure:"max_pages"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
}

type ScoringConfig struct {
	Scheme  string         `mapstructure:"scheme"`
	Weights *WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig overrides the weights of the selected scheme.
type WeightsConfig struct {
	Lexical    float64 `mapstructure:"lexical"`
	Skills     float64 `mapstructure:"skills"`
	Experience float64 `mapstructure:"experience"`
	Title      float64 `mapstructure:"title"`
}

type MatchingConfig struct {
	DefaultLimit    int  `mapstructure:"default_limit"`
	MaxLimit        int  `mapstructure:"max_limit"`
	FallbackLimit   int  `mapstructure:"fallback_limit"`
	FallbackOnEmpty bool `mapstructure:"fallback_on_empty"`
}

type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
	Backend           string `mapstructure:"backend"` // memory | redis
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
