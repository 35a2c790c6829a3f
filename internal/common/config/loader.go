// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SchemeBlended = "blended"
	SchemeLegacy  = "legacy"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"

	// MatchResumeWorker is the workflow task type served by the match-resume worker.
	MatchResumeWorker = "match-resume"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// APP_ENVIRONMENT, SERVER_PORT, EXTRACTION_OCR_ENABLED, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	// applyDefaults cannot tell an explicit false from an unset bool
	v.SetDefault("matching.fallback_on_empty", true)
	v.SetDefault("rate_limit.enabled", true)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			// an unset variable expands to "" so applyDefaults and the
			// plain-env overrides can fill the field
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideFromEnv applies the handful of plain environment variables the
// original deployment used (PORT, REDIS_URL style) when the file left them empty.
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("PORT"); val != "" {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Camunda.BrokerAddress == "" {
		if val := os.Getenv("ZEEBE_ADDRESS"); val != "" {
			cfg.Camunda.BrokerAddress = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "resume-matcher"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.Extraction.MinTextLength == 0 {
		cfg.Extraction.MinTextLength = 140
	}
	if cfg.Extraction.PdftotextPath == "" {
		cfg.Extraction.PdftotextPath = "pdftotext"
	}
	if cfg.Extraction.PdftotextTimeout == 0 {
		cfg.Extraction.PdftotextTimeout = 10000
	}
	ocr := &cfg.Extraction.OCR
	if ocr.RasterizerPath == "" {
		ocr.RasterizerPath = "pdftoppm"
	}
	if ocr.TesseractPath == "" {
		ocr.TesseractPath = "tesseract"
	}
	if ocr.Language == "" {
		ocr.Language = "eng"
	}
	if ocr.DPI == 0 {
		ocr.DPI = 200
	}
	if ocr.MaxPages == 0 {
		ocr.MaxPages = 5
	}
	if ocr.Timeout == 0 {
		ocr.Timeout = 60000
	}

	if cfg.Scoring.Scheme == "" {
		cfg.Scoring.Scheme = SchemeBlended
	}

	if cfg.Matching.DefaultLimit == 0 {
		cfg.Matching.DefaultLimit = 20
	}
	if cfg.Matching.MaxLimit == 0 {
		cfg.Matching.MaxLimit = 100
	}
	if cfg.Matching.FallbackLimit == 0 {
		cfg.Matching.FallbackLimit = 10
	}

	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 30
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = RateLimitBackendMemory
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 90000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}
	if cfg.Extraction.MinTextLength <= 0 {
		return fmt.Errorf("extraction.min_text_length must be positive, got %d", cfg.Extraction.MinTextLength)
	}

	switch cfg.Scoring.Scheme {
	case SchemeBlended, SchemeLegacy:
	default:
		return fmt.Errorf("scoring.scheme must be %q or %q, got %q", SchemeBlended, SchemeLegacy, cfg.Scoring.Scheme)
	}
	if w := cfg.Scoring.Weights; w != nil {
		if w.Lexical < 0 || w.Skills < 0 || w.Experience < 0 || w.Title < 0 {
			return fmt.Errorf("scoring.weights must not be negative")
		}
		if w.Lexical+w.Skills+w.Experience+w.Title == 0 {
			return fmt.Errorf("scoring.weights must not all be zero")
		}
	}

	if cfg.Matching.MaxLimit < 1 {
		return fmt.Errorf("matching.max_limit must be positive")
	}

	switch cfg.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if cfg.RateLimit.Enabled && cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("rate_limit.backend must be %q or %q", RateLimitBackendMemory, RateLimitBackendRedis)
	}

	if IsWorkerEnabled(cfg, MatchResumeWorker) && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when the %s worker is enabled", MatchResumeWorker)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       false,
		MaxJobsActive: 5,
		Timeout:       90000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled reports whether a worker is configured and enabled.
// Workers are opt-in: the HTTP service runs without a workflow broker.
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return false
}
