package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/cite/config.yml.
type GlobalConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"` // Default repository when not inside one

	// Crossref polite-pool identity
	Mailto   string `yaml:"mailto,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`

	CrossrefURL    string `yaml:"crossref_url,omitempty"`
	OpenLibraryURL string `yaml:"openlibrary_url,omitempty"`

	FetchConcurrency int           `yaml:"fetch_concurrency,omitempty"`
	ParseConcurrency int           `yaml:"parse_concurrency,omitempty"`
	RateLimit        float64       `yaml:"rate_limit,omitempty"` // Crossref requests per second
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "cite"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// EnvMailto overrides the mailto setting.
	EnvMailto = "CROSSREF_MAILTO"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/cite/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid global config %s: %w", path, err)
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Validate rejects negative limits.
func (c *GlobalConfig) Validate() error {
	switch {
	case c.FetchConcurrency < 0:
		return fmt.Errorf("fetch_concurrency must not be negative (got %d)", c.FetchConcurrency)
	case c.ParseConcurrency < 0:
		return fmt.Errorf("parse_concurrency must not be negative (got %d)", c.ParseConcurrency)
	case c.RateLimit < 0:
		return fmt.Errorf("rate_limit must not be negative (got %g)", c.RateLimit)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}
	return nil
}

// GetConfigValue returns the environment variable if set, else the config value.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// GetMailto returns the Crossref contact address, preferring CROSSREF_MAILTO.
func GetMailto() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return os.Getenv(EnvMailto)
	}
	return GetConfigValue(EnvMailto, cfg.Mailto)
}

// GetLibraryPath returns the configured default repository path.
func GetLibraryPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.LibraryPath
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No citegraph repository found.

Run 'cite init' to create one here, or set a default library in %s:
  mkdir -p %s
  echo 'library_path: /path/to/your/library' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
