package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SourceType identifies the remote catalog backend
type SourceType string

const (
	SourceTypeRickAndMorty SourceType = "rickandmorty"
	SourceTypeFixture      SourceType = "fixture" // Offline synthetic catalog
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
}

// APIConfig holds remote catalog configuration
type APIConfig struct {
	Source          SourceType    `mapstructure:"source"`   // "rickandmorty" or "fixture"
	BaseURL         string        `mapstructure:"base_url"` // API root
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ResourceTimeout time.Duration `mapstructure:"resource_timeout"` // Must exceed request_timeout
	RateLimit       float64       `mapstructure:"rate_limit"`       // Requests per second, 0 = unlimited
	Burst           int           `mapstructure:"burst"`
}

// CacheConfig holds local store configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Empty keeps the cache in memory
}

// SessionConfig holds authenticated-session configuration
type SessionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Reason  string        `mapstructure:"reason"` // Shown when prompting
}

// AuthConfig holds PIN authentication configuration
type AuthConfig struct {
	PINHash     string `mapstructure:"pin_hash"` // bcrypt hash, set by `citadel pin`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// ViewerConfig holds the external image viewer
type ViewerConfig struct {
	Command string `mapstructure:"command"` // e.g. "feh -Z"; empty uses the system default
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Source:          SourceTypeRickAndMorty,
			BaseURL:         "https://rickandmortyapi.com/api",
			RequestTimeout:  30 * time.Second,
			ResourceTimeout: 60 * time.Second,
			RateLimit:       5,
			Burst:           2,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Session: SessionConfig{
			Timeout: 5 * time.Minute,
			Reason:  "Unlock your favorite characters",
		},
		Auth: AuthConfig{
			MaxAttempts: 3,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// Validate rejects configurations the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.API.Source {
	case SourceTypeRickAndMorty, SourceTypeFixture:
	default:
		errs = append(errs, fmt.Errorf("unknown api.source: %q", c.API.Source))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("api.request_timeout must be positive"))
	}
	if c.API.RequestTimeout >= c.API.ResourceTimeout {
		errs = append(errs, fmt.Errorf("api.request_timeout (%s) must be shorter than api.resource_timeout (%s)",
			c.API.RequestTimeout, c.API.ResourceTimeout))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.Session.Timeout <= 0 {
		errs = append(errs, errors.New("session.timeout must be positive"))
	}
	if strings.TrimSpace(c.Session.Reason) == "" {
		errs = append(errs, errors.New("session.reason must not be empty"))
	}
	if c.Auth.MaxAttempts <= 0 {
		errs = append(errs, errors.New("auth.max_attempts must be positive"))
	}
	return errors.Join(errs...)
}

// HasPIN returns true once a PIN has been set up
func (c *Config) HasPIN() bool {
	return c.Auth.PINHash != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "citadel", "citadel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "citadel", "citadel.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "citadel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "citadel")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "citadel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "citadel", "cache")
	}
}

// ConfigFilePath returns where SaveConfig writes
func ConfigFilePath() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// LoadConfig loads configuration from file and environment.
// An empty configFile searches the default config directory and ".".
func LoadConfig(configFile string) (*Config, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newViper registers every key with its default so environment overrides
// such as CITADEL_API_BASE_URL reach Unmarshal
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CITADEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range settings(DefaultConfig()) {
		v.SetDefault(key, value)
	}
	return v
}

// settings flattens cfg into snake_case viper keys
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"api.source":           string(cfg.API.Source),
		"api.base_url":         cfg.API.BaseURL,
		"api.request_timeout":  cfg.API.RequestTimeout.String(),
		"api.resource_timeout": cfg.API.ResourceTimeout.String(),
		"api.rate_limit":       cfg.API.RateLimit,
		"api.burst":            cfg.API.Burst,
		"cache.dir":            cfg.Cache.Dir,
		"session.timeout":      cfg.Session.Timeout.String(),
		"session.reason":       cfg.Session.Reason,
		"auth.pin_hash":        cfg.Auth.PINHash,
		"auth.max_attempts":    cfg.Auth.MaxAttempts,
		"logging.file":         cfg.Logging.File,
		"logging.level":        cfg.Logging.Level,
		"viewer.command":       cfg.Viewer.Command,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, ConfigFilePath())
}

// SaveConfigTo saves the configuration to configFile
func SaveConfigTo(cfg *Config, configFile string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
