package matchresume

import (
	"fmt"
	"time"

	"resume-matcher/internal/common/config"
)

type Config struct {
	Enabled        bool
	MaxJobsActive  int
	Timeout        time.Duration
	MaxUploadBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        90 * time.Second,
		MaxUploadBytes: 10 << 20,
	}
}

// createConfigFromAppConfig reads the worker entry and the server upload cap
// from the application config. custom wins when given.
func createConfigFromAppConfig(appCfg *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}
	wc := config.GetWorkerConfig(appCfg, TaskType)
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if appCfg.Server.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = appCfg.Server.MaxUploadBytes
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must not be negative")
	}
	return nil
}
