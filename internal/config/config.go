package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"    validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache"       validate:"required"`
	Judge       JudgeConfig       `mapstructure:"judge"       validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains the Postgres connection settings. Review states and
// the content pool always live in Postgres; the validation cache does too
// unless another cache backend is selected.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// CacheConfig configures the validation cache tiers and the pre-filter.
type CacheConfig struct {
	// MemoryCapacity bounds the in-process LRU tier.
	MemoryCapacity int `mapstructure:"memory_capacity" validate:"gt=0"`
	// TTL is the staleness horizon used by scheduled purges. Reads never filter on it.
	TTL                 time.Duration `mapstructure:"ttl"                  validate:"gt=0"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold" validate:"gt=0,lte=1"`

	// Backend selects the durable tier.
	Backend        string `mapstructure:"backend"          validate:"oneof=postgres sqlite redis"`
	SQLitePath     string `mapstructure:"sqlite_path"      validate:"required_if=Backend sqlite"`
	RedisURL       string `mapstructure:"redis_url"        validate:"required_if=Backend redis"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
}

// JudgeConfig contains the semantic judge settings.
type JudgeConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`
	// PromptTemplatePath overrides the embedded judge prompt when set.
	PromptTemplatePath string  `mapstructure:"prompt_template_path"`
	Temperature        float32 `mapstructure:"temperature"          validate:"gte=0,lte=2"`

	MaxAttempts       int           `mapstructure:"max_attempts"       validate:"gte=1,lte=10"`
	BaseBackoff       time.Duration `mapstructure:"base_backoff"       validate:"gt=0"`
	AttemptTimeout    time.Duration `mapstructure:"attempt_timeout"    validate:"gt=0"`
	OverrideThreshold float64       `mapstructure:"override_threshold" validate:"gt=0,lte=1"`

	// ThesaurusPath points at an optional JSON file of paraphrase hints.
	ThesaurusPath string `mapstructure:"thesaurus_path"`
}

// MaintenanceConfig schedules background cache maintenance. A zero interval
// disables the corresponding task.
type MaintenanceConfig struct {
	PurgeInterval   time.Duration `mapstructure:"purge_interval"    validate:"gte=0"`
	AuditInterval   time.Duration `mapstructure:"audit_interval"    validate:"gte=0"`
	AuditSampleSize int           `mapstructure:"audit_sample_size" validate:"gt=0"`
	WorkerCount     int           `mapstructure:"worker_count"      validate:"gt=0"`
	QueueSize       int           `mapstructure:"queue_size"        validate:"gt=0"`
}
