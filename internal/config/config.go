// internal/config/config.go
//
// This package handles configuration and the .blogconsole directory
// structure. Every machine that runs the console gets a .blogconsole/
// folder holding the server connection settings and session logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConsoleDir is the name of the directory we create for the console.
	ConsoleDir = ".blogconsole"

	defaultServerURL   = "http://localhost:8080"
	defaultPageSize    = 50
	defaultQuotaPollMS = 5000
)

const defaultConfigYAML = `# stan-blog console configuration
version: 1

server:
  # Base URL of the blog backend. BLOG_SERVER_URL overrides this.
  url: http://localhost:8080
  # Access token for authenticated endpoints. BLOG_ACCESS_TOKEN overrides this.
  token: ""

account:
  # Admins bypass the AI title-generation quota gate.
  admin: false

lists:
  # Page size used when loading scoped file lists.
  page_size: 50

ai:
  # How often the quota check runs while the article editor is open.
  quota_check_interval_ms: 5000
`

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// AccountConfig describes the operator's role.
type AccountConfig struct {
	Admin bool `yaml:"admin"`
}

// ListsConfig holds paging preferences for resource lists.
type ListsConfig struct {
	PageSize int `yaml:"page_size"`
}

// AIConfig holds settings for the quota-gated title generator.
type AIConfig struct {
	QuotaCheckIntervalMS int `yaml:"quota_check_interval_ms"`
}

// FileConfig models .blogconsole/config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Account AccountConfig `yaml:"account"`
	Lists   ListsConfig   `yaml:"lists"`
	AI      AIConfig      `yaml:"ai"`
}

// Config holds the runtime configuration for the console.
type Config struct {
	// BaseDir is where .blogconsole lives, usually the user's home directory.
	BaseDir string

	// ConsoleHome is BaseDir/.blogconsole.
	ConsoleHome string

	File FileConfig
}

// InitConsoleDir creates the .blogconsole directory structure under baseDir
// and seeds a default config.yaml when none exists. Called on startup.
func InitConsoleDir(baseDir string) error {
	home := filepath.Join(baseDir, ConsoleDir)
	if err := os.MkdirAll(filepath.Join(home, "logs"), 0o755); err != nil {
		return err
	}
	return ensureConfigFile(filepath.Join(home, "config.yaml"))
}

// NewConfig loads the console configuration from baseDir/.blogconsole,
// applying BLOG_SERVER_URL and BLOG_ACCESS_TOKEN environment overrides.
func NewConfig(baseDir string) (*Config, error) {
	cfg, err := NewStoredConfig(baseDir)
	if err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(os.Getenv("BLOG_SERVER_URL")); env != "" {
		cfg.File.Server.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("BLOG_ACCESS_TOKEN")); env != "" {
		cfg.File.Server.Token = env
	}
	return cfg, nil
}

// NewStoredConfig loads the configuration exactly as persisted, with no
// environment overrides. Use this when a change will be written back, so a
// session's environment never ends up baked into config.yaml.
func NewStoredConfig(baseDir string) (*Config, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("config: base directory is required")
	}
	cfg := &Config{
		BaseDir:     baseDir,
		ConsoleHome: filepath.Join(baseDir, ConsoleDir),
		File:        defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultFileConfig() FileConfig {
	// The seeded YAML is the single source of defaults.
	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		return FileConfig{
			Version: 1,
			Server:  ServerConfig{URL: defaultServerURL},
			Lists:   ListsConfig{PageSize: defaultPageSize},
			AI:      AIConfig{QuotaCheckIntervalMS: defaultQuotaPollMS},
		}
	}
	return cfg
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.ConfigPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.ConfigPath(), err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.ConfigPath(), err)
	}
	c.File = mergeWithDefaults(parsed)
	return nil
}

// mergeWithDefaults fills zero-valued fields so a hand-trimmed config file
// keeps working.
func mergeWithDefaults(parsed FileConfig) FileConfig {
	merged := parsed
	if strings.TrimSpace(merged.Server.URL) == "" {
		merged.Server.URL = defaultServerURL
	}
	if merged.Lists.PageSize <= 0 {
		merged.Lists.PageSize = defaultPageSize
	}
	if merged.AI.QuotaCheckIntervalMS <= 0 {
		merged.AI.QuotaCheckIntervalMS = defaultQuotaPollMS
	}
	if merged.Version == 0 {
		merged.Version = 1
	}
	return merged
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.ConsoleHome, "config.yaml")
}

// LogsDir returns the directory session logs are written to.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ConsoleHome, "logs")
}

// ServerURL returns the backend base URL without a trailing slash.
func (c *Config) ServerURL() string {
	return strings.TrimRight(strings.TrimSpace(c.File.Server.URL), "/")
}

// AccessToken returns the configured bearer token, possibly empty.
func (c *Config) AccessToken() string {
	return strings.TrimSpace(c.File.Server.Token)
}

// Admin reports whether the operator bypasses the AI quota gate.
func (c *Config) Admin() bool {
	return c.File.Account.Admin
}

// PageSize returns the page size for scoped list loads.
func (c *Config) PageSize() int {
	return c.File.Lists.PageSize
}

// QuotaCheckInterval returns how often the quota poller fires.
func (c *Config) QuotaCheckInterval() time.Duration {
	return time.Duration(c.File.AI.QuotaCheckIntervalMS) * time.Millisecond
}

// SetServerURL updates the backend URL and persists it back to config.yaml
// so future launches reuse it.
func (c *Config) SetServerURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("config: server url is required")
	}
	c.File.Server.URL = trimmed
	return c.save()
}

// SetAccessToken updates the stored bearer token and persists it.
func (c *Config) SetAccessToken(token string) error {
	c.File.Server.Token = strings.TrimSpace(token)
	return c.save()
}

func (c *Config) save() error {
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.MkdirAll(c.ConsoleHome, 0o755); err != nil {
		return fmt.Errorf("config: ensure console dir: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}
