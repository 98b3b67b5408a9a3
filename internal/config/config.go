package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete portal client configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Languages LanguagesConfig `mapstructure:"languages"`
	History   HistoryConfig   `mapstructure:"history"`
	SDK       SDKConfig       `mapstructure:"sdk"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig defines the REST backend connection
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// SessionConfig defines where the authenticated session is kept between
// CLI invocations. "memory" lives for a single process, "file" mimics the
// browser's session-scoped storage, "redis" is for shared-workstation
// deployments.
type SessionConfig struct {
	Type  string      `mapstructure:"type"`
	Path  string      `mapstructure:"path"`
	TTL   string      `mapstructure:"ttl"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines the optional redis session backend
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LanguagesConfig defines language directory behavior
type LanguagesConfig struct {
	PollInterval string `mapstructure:"poll_interval"`
	PageSize     int    `mapstructure:"page_size"`
}

// HistoryConfig defines call history defaults
type HistoryConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// SDKConfig defines the external video client
type SDKConfig struct {
	DescriptorURL string `mapstructure:"descriptor_url"`
	CallbackPort  int    `mapstructure:"callback_port"`
	EntryID       string `mapstructure:"entry_id"`
	DefaultName   string `mapstructure:"default_name"`
}

// MetricsConfig defines the optional Prometheus endpoint (watch mode only)
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", "30s")

	// Session defaults
	v.SetDefault("session.type", "file")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.redis.host", "127.0.0.1")
	v.SetDefault("session.redis.port", 6379)
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.pool_size", 10)
	v.SetDefault("session.redis.min_idle_conns", 2)
	v.SetDefault("session.redis.dial_timeout", "5s")
	v.SetDefault("session.redis.read_timeout", "3s")
	v.SetDefault("session.redis.write_timeout", "3s")

	// Language directory defaults
	v.SetDefault("languages.poll_interval", "60s")
	v.SetDefault("languages.page_size", 25)

	// Call history defaults
	v.SetDefault("history.page_size", 10)

	// Video SDK defaults
	v.SetDefault("sdk.descriptor_url", "https://us01ccistatic.zoom.us/us01cci/web-sdk/video-client.json")
	v.SetDefault("sdk.callback_port", 0)
	v.SetDefault("sdk.entry_id", "")
	v.SetDefault("sdk.default_name", "Customer")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9464)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (set PORTAL_API_BASE_URL or the config file)")
	}
	if _, err := url.ParseRequestURI(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if _, err := time.ParseDuration(cfg.API.Timeout); err != nil {
		return fmt.Errorf("invalid api.timeout: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Languages.PollInterval); err != nil {
		return fmt.Errorf("invalid languages.poll_interval: %w", err)
	}

	switch cfg.Session.Type {
	case "memory", "redis":
	case "file":
		if cfg.Session.Path == "" {
			return fmt.Errorf("session.path is required for the file session store")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	default:
		return fmt.Errorf("unknown session.type: %q (must be memory, file, or redis)", cfg.Session.Type)
	}

	if cfg.History.PageSize <= 0 {
		cfg.History.PageSize = 10
	}
	if cfg.Languages.PageSize <= 0 {
		cfg.Languages.PageSize = 25
	}

	return nil
}

// APITimeout returns the parsed API timeout.
func (c *Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PollInterval returns the parsed availability poll interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Languages.PollInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// SessionTTL returns the parsed session TTL for backends that expire.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func defaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "portal", "session.json")
}
