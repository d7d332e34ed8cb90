package core

import (
	"fmt"

	"github.com/spf13/viper"

	"erpmcp/pkg/models"
)

// ConfigFileName is the optional YAML config file discovered in the base
// path. A missing file is not an error; defaults apply.
const ConfigFileName = ".erpmcp"

// DefaultServerConfig returns a ServerConfig populated with defaults.
func DefaultServerConfig() models.ServerConfig {
	return models.ServerConfig{
		LogLevel:        "warn",
		CacheTTLMinutes: 10,
		Thresholds:      DefaultThresholds(),
		Recommend:       DefaultRecommendConfig(),
		Audit: models.AuditConfig{
			Enabled: false,
			Path:    ".erpmcp_audit.jsonl",
		},
	}
}

// LoadServerConfig reads the .erpmcp YAML file from basePath using Viper,
// falling back to defaults for any missing key or a missing file.
func LoadServerConfig(basePath string) (models.ServerConfig, error) {
	cfg := DefaultServerConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("cache_ttl_minutes", cfg.CacheTTLMinutes)
	v.SetDefault("fuzzy_thresholds.keyword", cfg.Thresholds.Keyword)
	v.SetDefault("fuzzy_thresholds.operation_name", cfg.Thresholds.OperationName)
	v.SetDefault("fuzzy_thresholds.error_message", cfg.Thresholds.ErrorMessage)
	v.SetDefault("recommend.high_cutoff", cfg.Recommend.HighCutoff)
	v.SetDefault("recommend.medium_cutoff", cfg.Recommend.MediumCutoff)
	v.SetDefault("recommend.max_alternatives", cfg.Recommend.MaxAlternatives)
	v.SetDefault("audit.enabled", cfg.Audit.Enabled)
	v.SetDefault("audit.path", cfg.Audit.Path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading %s config: %w", ConfigFileName, err)
		}
	}

	cfg.LogLevel = v.GetString("log_level")
	cfg.CacheTTLMinutes = v.GetInt("cache_ttl_minutes")
	cfg.Thresholds.Keyword = v.GetFloat64("fuzzy_thresholds.keyword")
	cfg.Thresholds.OperationName = v.GetFloat64("fuzzy_thresholds.operation_name")
	cfg.Thresholds.ErrorMessage = v.GetFloat64("fuzzy_thresholds.error_message")
	cfg.Recommend.HighCutoff = v.GetFloat64("recommend.high_cutoff")
	cfg.Recommend.MediumCutoff = v.GetFloat64("recommend.medium_cutoff")
	cfg.Recommend.MaxAlternatives = v.GetInt("recommend.max_alternatives")
	cfg.Audit.Enabled = v.GetBool("audit.enabled")
	cfg.Audit.Path = v.GetString("audit.path")

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validateConfig(cfg models.ServerConfig) error {
	check := func(name string, value float64) error {
		if value <= 0 || value > 1 {
			return fmt.Errorf("config %s must be in (0, 1], got %v", name, value)
		}
		return nil
	}
	if err := check("fuzzy_thresholds.keyword", cfg.Thresholds.Keyword); err != nil {
		return err
	}
	if err := check("fuzzy_thresholds.operation_name", cfg.Thresholds.OperationName); err != nil {
		return err
	}
	if err := check("fuzzy_thresholds.error_message", cfg.Thresholds.ErrorMessage); err != nil {
		return err
	}
	if err := check("recommend.high_cutoff", cfg.Recommend.HighCutoff); err != nil {
		return err
	}
	if err := check("recommend.medium_cutoff", cfg.Recommend.MediumCutoff); err != nil {
		return err
	}
	if cfg.Recommend.MediumCutoff > cfg.Recommend.HighCutoff {
		return fmt.Errorf("config recommend.medium_cutoff (%v) must not exceed recommend.high_cutoff (%v)",
			cfg.Recommend.MediumCutoff, cfg.Recommend.HighCutoff)
	}
	return nil
}
