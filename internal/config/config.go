// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: command-line switches > environment variables >
// config file > embedded config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces environment overrides, e.g. VITALIS_LOG_LEVEL.
const envPrefix = "VITALIS"

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all launcher configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Paths     PathsConfig     `yaml:"paths"`
	Singleton SingletonConfig `yaml:"singleton"`
	Logging   LoggingConfig   `yaml:"logging"`
	Update    UpdateConfig    `yaml:"update"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig describes the product as the OS sees it.
type AppConfig struct {
	ProductName    string   `yaml:"product_name"`
	ExecutableName string   `yaml:"executable_name"`
	Schemes        []string `yaml:"schemes"`
	FileExtensions []string `yaml:"file_extensions"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	UserDataDir string `yaml:"user_data_dir"`
}

// SingletonConfig holds single-instance hand-off settings.
type SingletonConfig struct {
	NotifyTimeout Duration `yaml:"notify_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// UpdateConfig holds settings for the background update stager.
type UpdateConfig struct {
	Enabled       bool     `yaml:"enabled"`
	CheckInterval Duration `yaml:"check_interval"`
	RepoOwner     string   `yaml:"repo_owner"`
	RepoName      string   `yaml:"repo_name"`
}

// MetricsConfig holds launch metrics settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			ProductName:    "Vitalis",
			ExecutableName: "vitalis",
			Schemes:        []string{"http", "https"},
			FileExtensions: []string{".htm", ".html"},
		},
		Paths: PathsConfig{
			UserDataDir: defaultUserDataDir(),
		},
		Singleton: SingletonConfig{
			NotifyTimeout: Duration{20 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Update: UpdateConfig{
			Enabled:       false,
			CheckInterval: Duration{6 * time.Hour},
			RepoOwner:     "Guliveer",
			RepoName:      "vitalis",
		},
		Metrics: MetricsConfig{
			Textfile: "metrics.prom",
		},
	}
}

// CLIOverrides holds values from command-line switches.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	UserDataDir string
	LogLevel    string
}

// envOverrides is filled by envconfig from VITALIS_* variables.
type envOverrides struct {
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	LogFile       string        `envconfig:"LOG_FILE"`
	UserDataDir   string        `envconfig:"USER_DATA_DIR"`
	NotifyTimeout time.Duration `envconfig:"NOTIFY_TIMEOUT"`
	UpdateEnabled *bool         `envconfig:"UPDATE_ENABLED"`
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI switches > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", filePath, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.UserDataDir != "" {
		cfg.Paths.UserDataDir = cli.UserDataDir
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Logging.File = env.LogFile
	}
	if env.UserDataDir != "" {
		cfg.Paths.UserDataDir = env.UserDataDir
	}
	if env.NotifyTimeout > 0 {
		cfg.Singleton.NotifyTimeout = Duration{env.NotifyTimeout}
	}
	if env.UpdateEnabled != nil {
		cfg.Update.Enabled = *env.UpdateEnabled
	}
	return nil
}

// Validate checks that the configuration can drive a launch.
func (c *Config) Validate() error {
	if c.App.ProductName == "" {
		return fmt.Errorf("product name is required")
	}
	if c.App.ExecutableName == "" {
		return fmt.Errorf("executable name is required")
	}
	if c.Paths.UserDataDir == "" {
		return fmt.Errorf("user data directory could not be determined; pass --user-data-dir")
	}
	if c.Singleton.NotifyTimeout.Duration <= 0 {
		return fmt.Errorf("singleton notify timeout must be positive (got: %s)", c.Singleton.NotifyTimeout.Duration)
	}
	return nil
}
