package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the configuration reads,
// e.g. VOCAB_SERVER_PORT for server.port.
const EnvPrefix = "VOCAB"

// keys without a default still have to be bound so that Unmarshal sees them
var requiredKeys = []string{
	"database.url",
	"judge.gemini_api_key",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given YAML file instead of looking
// for config.yaml in the working directory. An empty path means the default lookup.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("cache.memory_capacity", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.similarity_threshold", 0.85)
	v.SetDefault("cache.backend", "postgres")
	v.SetDefault("cache.sqlite_path", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_key_prefix", "vocab:validation:")

	v.SetDefault("judge.model_name", "gemini-2.0-flash")
	v.SetDefault("judge.prompt_template_path", "")
	v.SetDefault("judge.temperature", 0.1)
	v.SetDefault("judge.max_attempts", 3)
	v.SetDefault("judge.base_backoff", "500ms")
	v.SetDefault("judge.attempt_timeout", "20s")
	v.SetDefault("judge.override_threshold", 0.55)
	v.SetDefault("judge.thesaurus_path", "")

	v.SetDefault("maintenance.purge_interval", "0s")
	v.SetDefault("maintenance.audit_interval", "0s")
	v.SetDefault("maintenance.audit_sample_size", 100)
	v.SetDefault("maintenance.worker_count", 1)
	v.SetDefault("maintenance.queue_size", 16)
}
