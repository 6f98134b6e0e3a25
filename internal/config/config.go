// Package config provides configuration management for the lifecycle engine.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultMaxConcurrency bounds the number of (account, underlying)
	// groups analyzed in parallel.
	defaultMaxConcurrency = 4
	// defaultLogLevel is used when environment.log_level is unset.
	defaultLogLevel = "info"
)

// Broad-market ETFs and cash-settled index products recognized by the
// classifier when no allow-lists are configured.
var (
	defaultETFSymbols = []string{
		"SPY", "QQQ", "IWM", "DIA", "VTI", "VOO", "EFA", "EEM",
		"GLD", "SLV", "TLT", "HYG", "XLE", "XLF", "XLK", "SMH", "ARKK",
	}
	defaultIndexSymbols = []string{"SPX", "XSP", "NDX", "RUT", "DJX", "VIX"}
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Symbols     SymbolsConfig     `yaml:"symbols"`
	Storage     StorageConfig     `yaml:"storage"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// AnalysisConfig defines engine tuning parameters.
type AnalysisConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// SymbolsConfig carries the classifier allow-lists.
type SymbolsConfig struct {
	ETFs    []string `yaml:"etfs"`
	Indexes []string `yaml:"indexes"`
}

// StorageConfig defines where reconstructed trades are persisted.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment.LogLevel == "" {
		c.Environment.LogLevel = defaultLogLevel
	}
	if c.Analysis.MaxConcurrency <= 0 {
		c.Analysis.MaxConcurrency = defaultMaxConcurrency
	}
	if len(c.Symbols.ETFs) == 0 {
		c.Symbols.ETFs = append([]string(nil), defaultETFSymbols...)
	}
	if len(c.Symbols.Indexes) == 0 {
		c.Symbols.Indexes = append([]string(nil), defaultIndexSymbols...)
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Environment.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of debug|info|warn|error, got %q", c.Environment.LogLevel)
	}
	if c.Analysis.MaxConcurrency < 1 {
		return fmt.Errorf("analysis.max_concurrency must be >= 1, got %d", c.Analysis.MaxConcurrency)
	}
	return nil
}

// LogLevel translates the configured level for logrus.
func (c *Config) LogLevel() logrus.Level {
	switch strings.ToLower(c.Environment.LogLevel) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
