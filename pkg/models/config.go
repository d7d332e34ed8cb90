package models

// FuzzyThresholds holds the named threshold profiles used by the fuzzy
// matcher. Keyword is the generous profile for free-text tokens;
// OperationName and ErrorMessage are progressively stricter.
type FuzzyThresholds struct {
	Keyword       float64 `yaml:"keyword" json:"keyword"`
	OperationName float64 `yaml:"operation_name" json:"operation_name"`
	ErrorMessage  float64 `yaml:"error_message" json:"error_message"`
}

// RecommendConfig tunes the confidence bucketing of operation
// recommendations. Scores at or above HighCutoff are labelled high,
// at or above MediumCutoff medium, below that low.
type RecommendConfig struct {
	HighCutoff      float64 `yaml:"high_cutoff" json:"high_cutoff"`
	MediumCutoff    float64 `yaml:"medium_cutoff" json:"medium_cutoff"`
	MaxAlternatives int     `yaml:"max_alternatives" json:"max_alternatives"`
}

// AuditConfig controls the tool-call audit log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// ServerConfig is the merged configuration for the server process.
type ServerConfig struct {
	LogLevel        string          `yaml:"log_level" json:"log_level"`
	CacheTTLMinutes int             `yaml:"cache_ttl_minutes" json:"cache_ttl_minutes"`
	Thresholds      FuzzyThresholds `yaml:"fuzzy_thresholds" json:"fuzzy_thresholds"`
	Recommend       RecommendConfig `yaml:"recommend" json:"recommend"`
	Audit           AuditConfig     `yaml:"audit" json:"audit"`
}
