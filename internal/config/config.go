// Package config loads sitedeploy settings.
//
// Settings come from three layers, lowest precedence first: the optional YAML file
// (sitedeploy.yaml in the project root), the process environment (after .env from the
// project root has been merged in without overriding existing variables) and command
// line flags. The CLI maps environment variables and flags into Overrides; Resolve
// folds everything into the final Settings.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

const (
	// DefaultFileName is looked up in the project root when no path is given.
	DefaultFileName = "sitedeploy.yaml"
	// EnvPrefix prefixes every environment variable read by sitedeploy.
	EnvPrefix = "STATIC_WEBSITES_BUILDER_"
	// CurrentVersion is the only accepted value of the version key.
	CurrentVersion = "1"
)

// Config mirrors the YAML file.
type Config struct {
	Version   string        `yaml:"version"`
	DryRun    *bool         `yaml:"dry_run,omitempty"`
	Verbosity *int          `yaml:"verbosity,omitempty"`
	Minify    *bool         `yaml:"minify,omitempty"`
	Sites     []string      `yaml:"sites,omitempty"`
	Remote    RemoteConfig  `yaml:"remote"`
	Output    OutputConfig  `yaml:"output"`
	Logging   LoggingConfig `yaml:"logging"`
	Watch     WatchConfig   `yaml:"watch"`
}

// RemoteConfig describes the deployment target.
type RemoteConfig struct {
	Host         string      `yaml:"host"`
	Username     string      `yaml:"username"`
	Directory    string      `yaml:"directory"`
	IdentityFile string      `yaml:"identity_file"`
	Retry        RetryConfig `yaml:"retry"`
}

// RetryConfig configures retries of transient transfer failures.
type RetryConfig struct {
	Attempts int    `yaml:"attempts"` // retries after the first failure, 0 disables
	Backoff  string `yaml:"backoff"`  // fixed|linear|exponential
	Initial  string `yaml:"initial"`  // Go duration, default 1s
	Max      string `yaml:"max"`      // Go duration, default 30s
}

// OutputConfig configures optional run artifacts.
type OutputConfig struct {
	HistoryDB   string `yaml:"history_db"`   // SQLite run history, disabled when empty
	MetricsFile string `yaml:"metrics_file"` // Prometheus textfile, disabled when empty
}

// LoggingConfig configures the log handler.
type LoggingConfig struct {
	Format string `yaml:"format"` // text|json
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string   `yaml:"debounce"` // Go duration, default 500ms
	Paths    []string `yaml:"paths"`    // extra directories below the project root
}

// Load reads the YAML file at path. Environment variables in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryConfig, "configuration file not found").
				WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			WithContext("path", path).Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration file").
			WithContext("path", path).Build()
	}
	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("path", path).
			WithContext("version", cfg.Version).
			Build()
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but returns an empty Config when path does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return Load(path)
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	}
	minify := true
	example := Config{
		Version: CurrentVersion,
		Minify:  &minify,
		Remote: RemoteConfig{
			Host:      "example.org",
			Username:  "deploy",
			Directory: "sites",
		},
		Logging: LoggingConfig{Format: "text"},
		Watch:   WatchConfig{Debounce: "500ms"},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode example configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", path).Build()
	}
	return nil
}
