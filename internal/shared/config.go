package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	Upload  UploadConfig  `toml:"upload" json:"upload"`
	History HistoryConfig `toml:"history" json:"history"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServerConfig locates the backend endpoints.
type ServerConfig struct {
	BaseURL    string `toml:"base_url" json:"base_url"`
	UploadPath string `toml:"upload_path" json:"upload_path"`
	LogsPath   string `toml:"logs_path" json:"logs_path"`
}

// UploadConfig contains multipart upload settings.
type UploadConfig struct {
	FieldName string `toml:"field_name" json:"field_name"`
	RateLimit int64  `toml:"rate_limit" json:"rate_limit"` // bytes per second, 0 = unlimited
}

// HistoryConfig contains the optional upload history database settings.
type HistoryConfig struct {
	Enabled      bool   `toml:"enabled" json:"enabled"`
	Path         string `toml:"path" json:"path"`
	MaxOpenConns int    `toml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" json:"max_idle_conns"`
}

// LoggingConfig contains diagnostic logging settings.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// LoadConfig reads the TOML file at path on top of [DefaultConfig], so omitted keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the server URL and endpoint paths.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server.base_url %q must be an absolute URL", ErrInvalidConfig, c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: server.base_url scheme %q is not http(s)", ErrInvalidConfig, u.Scheme)
	}
	if !strings.HasPrefix(c.Server.UploadPath, "/") {
		return fmt.Errorf("%w: server.upload_path must start with /", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Server.LogsPath, "/") {
		return fmt.Errorf("%w: server.logs_path must start with /", ErrInvalidConfig)
	}
	if c.Upload.FieldName == "" {
		return fmt.Errorf("%w: upload.field_name is empty", ErrInvalidConfig)
	}
	if c.Upload.RateLimit < 0 {
		return fmt.Errorf("%w: upload.rate_limit cannot be negative", ErrInvalidConfig)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("%w: history.path is required when history is enabled", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// UploadURL joins the base URL and the upload path.
func (c *Config) UploadURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Server.UploadPath
}

// LogsURL joins the base URL and the logs path.
func (c *Config) LogsURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Server.LogsPath
}
