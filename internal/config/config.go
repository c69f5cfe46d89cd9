package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	strict "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINCH_DB_URL or FINCH_SERVER_ADDR
const EnvPrefix = "FINCH"

// Config represents the complete finch configuration
type Config struct {
	// Theme is exposed to templates through the theme function
	Theme string `toml:"theme" mapstructure:"theme"`
	// DBURL selects the store: sqlite:<path>, sqlite://<path>, postgres:// or postgresql://
	DBURL string `toml:"db_url" mapstructure:"db_url"`

	Server     ServerConfig     `toml:"server" mapstructure:"server"`
	Store      StoreConfig      `toml:"store" mapstructure:"store"`
	Templates  TemplatesConfig  `toml:"templates" mapstructure:"templates"`
	Pagination PaginationConfig `toml:"pagination" mapstructure:"pagination"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`
}

// ServerConfig contains listener configuration
type ServerConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`
	// MetricsAddr enables the operations listener (/metrics, /health) when non-empty
	MetricsAddr string `toml:"metrics_addr" mapstructure:"metrics_addr"`
}

// StoreConfig contains relational store configuration
type StoreConfig struct {
	QueryTimeoutMs int `toml:"query_timeout_ms" mapstructure:"query_timeout_ms"`
}

// TemplatesConfig contains template engine configuration
type TemplatesConfig struct {
	// Reload recompiles templates before each landing page render; ignored in release builds
	Reload bool `toml:"reload" mapstructure:"reload"`
}

// PaginationConfig bounds the team listing page size
type PaginationConfig struct {
	DefaultSize int `toml:"default_size" mapstructure:"default_size"`
	MaxSize     int `toml:"max_size" mapstructure:"max_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
	// File tees log output into a size-rotated file when set
	File       string `toml:"file" mapstructure:"file"`
	MaxSize    string `toml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme: "",
		DBURL: "",
		Server: ServerConfig{
			Addr: "127.0.0.1:3000",
		},
		Store: StoreConfig{
			QueryTimeoutMs: 5000,
		},
		Templates: TemplatesConfig{
			Reload: true,
		},
		Pagination: PaginationConfig{
			DefaultSize: 5,
			MaxSize:     50,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// QueryTimeout returns the per-request store deadline
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Store.QueryTimeoutMs) * time.Millisecond
}

// DefaultPath returns <user config dir>/finch/finch.toml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "finch", "finch.toml"), nil
}

// LoadConfig loads the configuration from path, or from DefaultPath when path is empty. A
// missing file is created with the defaults first. Environment variables override file values.
func LoadConfig(path string) (*Config, string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := DefaultConfig().Save(path); err != nil {
			return nil, path, err
		}
	} else if err != nil {
		return nil, path, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(path); err != nil {
		return nil, path, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, path, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return &cfg, path, nil
}

// checkUnknownKeys rejects keys that do not map to a Config field, so a misspelled key fails
// loudly instead of silently keeping its default
func checkUnknownKeys(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	dec := strict.NewDecoder(f)
	dec.DisallowUnknownFields()

	var probe Config
	err = dec.Decode(&probe)

	var missing *strict.StrictMissingError
	if errors.As(err, &missing) && len(missing.Errors) > 0 {
		return &ConfigError{
			Field:   strings.Join(missing.Errors[0].Key(), "."),
			Message: "unknown key in " + path,
		}
	}
	// Syntax errors are reported by viper below with its own context.
	return nil
}

// setDefaults registers every key so environment overrides apply even when the file omits it
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("theme", d.Theme)
	v.SetDefault("db_url", d.DBURL)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.metrics_addr", d.Server.MetricsAddr)
	v.SetDefault("store.query_timeout_ms", d.Store.QueryTimeoutMs)
	v.SetDefault("templates.reload", d.Templates.Reload)
	v.SetDefault("pagination.default_size", d.Pagination.DefaultSize)
	v.SetDefault("pagination.max_size", d.Pagination.MaxSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the configuration to path, creating parent directories
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBURL) == "" {
		return &ConfigError{Field: "db_url", Message: "must be set (or provide " + EnvPrefix + "_DB_URL)"}
	}
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "must not be empty"}
	}
	if c.Store.QueryTimeoutMs < 0 {
		return &ConfigError{Field: "store.query_timeout_ms", Message: "must not be negative"}
	}
	if c.Pagination.DefaultSize <= 0 {
		return &ConfigError{Field: "pagination.default_size", Message: "must be positive"}
	}
	if c.Pagination.MaxSize < c.Pagination.DefaultSize {
		return &ConfigError{Field: "pagination.max_size", Message: "must be at least pagination.default_size"}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.max_backups", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be \"text\" or \"json\""}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
