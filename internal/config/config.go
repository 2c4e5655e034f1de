// Package config provides configuration loading and management for gem-sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variables read by viper
	EnvPrefix = "GEM_SOURCES"

	// DefaultGemCommand is the package manager binary used for the live source registry
	DefaultGemCommand = "gem"

	// DefaultProbeTimeout bounds a single reachability probe
	DefaultProbeTimeout = 10 * time.Second

	// DefaultProbeConcurrency is the number of probes run in parallel during verification
	DefaultProbeConcurrency = 8

	// DefaultSourcesFileName is the sources file location relative to the XDG config home
	DefaultSourcesFileName = "gem-sources/sources.yml"
)

// Configuration keys. They double as flag names, and as env names once upper-cased
// with dashes replaced by underscores and EnvPrefix prepended.
const (
	KeySourcesFile      = "sources-file"
	KeyGemCommand       = "gem-command"
	KeyProbeTimeout     = "probe-timeout"
	KeyProbeConcurrency = "probe-concurrency"
	KeyLogLevel         = "log-level"
	KeyDebug            = "debug"
)

// Config represents the resolved runtime configuration
type Config struct {
	// SourcesFile is the path of the persisted sources document
	SourcesFile string

	// GemCommand is the package manager executable
	GemCommand string

	// ProbeTimeout bounds each reachability probe
	ProbeTimeout time.Duration

	// ProbeConcurrency is the number of probes in flight during verification
	ProbeConcurrency int

	// LogLevel is one of debug, info, warn or error
	LogLevel string
}

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	v     *viper.Viper
	flags *pflag.FlagSet
	path  string
}

// WithViper loads configuration through the given viper instance instead of a fresh one
func WithViper(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		if v == nil {
			return fmt.Errorf("viper instance is required")
		}
		cfg.v = v
		return nil
	}
}

// WithFlags binds the given flag set so that explicitly set flags override env and defaults
func WithFlags(flags *pflag.FlagSet) Option {
	return func(cfg *loaderConfig) error {
		if flags == nil {
			return fmt.Errorf("flag set is required")
		}
		cfg.flags = flags
		return nil
	}
}

// WithConfigPath loads settings from a YAML file in addition to env and flags
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// NewViper returns a viper instance wired to the GEM_SOURCES_ environment and defaults
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyGemCommand, DefaultGemCommand)
	v.SetDefault(KeyProbeTimeout, DefaultProbeTimeout)
	v.SetDefault(KeyProbeConcurrency, DefaultProbeConcurrency)
	return v
}

// LoadConfig resolves configuration from flags, environment, an optional file and defaults
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	v := loaderCfg.v
	if v == nil {
		v = NewViper()
	}

	if loaderCfg.flags != nil {
		if err := v.BindPFlags(loaderCfg.flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if loaderCfg.path != "" {
		v.SetConfigFile(loaderCfg.path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		SourcesFile:      v.GetString(KeySourcesFile),
		GemCommand:       v.GetString(KeyGemCommand),
		ProbeTimeout:     v.GetDuration(KeyProbeTimeout),
		ProbeConcurrency: v.GetInt(KeyProbeConcurrency),
		LogLevel:         resolveLogLevel(v),
	}

	if cfg.SourcesFile == "" {
		path, err := DefaultSourcesFile()
		if err != nil {
			return nil, err
		}
		cfg.SourcesFile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultSourcesFile returns the sources document path under the XDG config home,
// creating the parent directory if needed.
func DefaultSourcesFile() (string, error) {
	path, err := xdg.ConfigFile(DefaultSourcesFileName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve default sources file: %w", err)
	}
	return path, nil
}

// resolveLogLevel prefers GEM_SOURCES_LOG_LEVEL (or --log-level), then --debug,
// then the unprefixed LOG_LEVEL for compatibility with generic deployments.
func resolveLogLevel(v *viper.Viper) string {
	if lvl := v.GetString(KeyLogLevel); lvl != "" {
		return lvl
	}
	if v.GetBool(KeyDebug) {
		return "debug"
	}
	return os.Getenv("LOG_LEVEL")
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.SourcesFile == "" {
		return fmt.Errorf("%s is required", KeySourcesFile)
	}
	if info, err := os.Stat(c.SourcesFile); err == nil && info.IsDir() {
		return fmt.Errorf("%s must be a file, got directory %s", KeySourcesFile, c.SourcesFile)
	}

	if strings.TrimSpace(c.GemCommand) == "" {
		return fmt.Errorf("%s is required", KeyGemCommand)
	}

	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyProbeTimeout, c.ProbeTimeout)
	}

	if c.ProbeConcurrency < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyProbeConcurrency, c.ProbeConcurrency)
	}

	return nil
}
