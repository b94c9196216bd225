package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethpandaops/testoor/pkg/filter"
	"github.com/ethpandaops/testoor/pkg/reporter"
	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes environment variable overrides, e.g. TESTOOR_RUN_DEFAULT_TIMEOUT.
	EnvPrefix = "TESTOOR"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultTimeout is the default per-test timeout.
	DefaultTimeout = 2 * time.Second

	// DefaultListen is the default status server address.
	DefaultListen = "127.0.0.1:9090"

	// DefaultRequestsPerMinute is the default per-IP request budget.
	DefaultRequestsPerMinute = 600

	// DefaultMetricsNamespace is the default prometheus namespace.
	DefaultMetricsNamespace = reporter.DefaultNamespace
)

// Output formats of the run command.
const (
	OutputConsole = "console"
	OutputJSON    = "json"
	OutputNone    = "none"
)

// Config is the root configuration for testoor.
type Config struct {
	Global  GlobalConfig  `yaml:"global" mapstructure:"global"`
	Run     RunConfig     `yaml:"run" mapstructure:"run"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// RunConfig contains test run settings.
type RunConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout" mapstructure:"default_timeout"`
	Filter         []string      `yaml:"filter,omitempty" mapstructure:"filter"`
	Output         string        `yaml:"output" mapstructure:"output"`
	Summary        bool          `yaml:"summary" mapstructure:"summary"`

	// MarkdownSummary is a file the markdown summary is written to after the
	// run, e.g. $GITHUB_STEP_SUMMARY. Empty disables it.
	MarkdownSummary string `yaml:"markdown_summary,omitempty" mapstructure:"markdown_summary"`
}

// MetricsConfig contains prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel: DefaultLogLevel,
		},
		Run: RunConfig{
			DefaultTimeout: DefaultTimeout,
			Filter:         []string{},
			Output:         OutputConsole,
			Summary:        true,
		},
		API: APIConfig{
			Server: APIServerConfig{
				Listen:      DefaultListen,
				CORSOrigins: []string{},
				RateLimit: RateLimitConfig{
					RequestsPerMinute: DefaultRequestsPerMinute,
				},
			},
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads the configuration file at path, if any, on top of the defaults
// and applies TESTOOR_* environment overrides. YAML and TOML files are
// supported and checked against the configuration schema.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}

		if err := v.MergeConfigMap(doc); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// readDocument decodes a config file into a generic document and validates it
// against the schema.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	doc := make(map[string]any, 4)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	// Round-trip through JSON so the schema sees plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config document: %w", err)
	}

	if err := validateDocument(bytes.NewReader(raw)); err != nil {
		return nil, err
	}

	return doc, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("global.log_level", d.Global.LogLevel)
	v.SetDefault("run.default_timeout", d.Run.DefaultTimeout)
	v.SetDefault("run.filter", d.Run.Filter)
	v.SetDefault("run.output", d.Run.Output)
	v.SetDefault("run.summary", d.Run.Summary)
	v.SetDefault("run.markdown_summary", d.Run.MarkdownSummary)
	v.SetDefault("api.enabled", d.API.Enabled)
	v.SetDefault("api.server.listen", d.API.Server.Listen)
	v.SetDefault("api.server.cors_origins", d.API.Server.CORSOrigins)
	v.SetDefault("api.server.rate_limit.enabled", d.API.Server.RateLimit.Enabled)
	v.SetDefault("api.server.rate_limit.requests_per_minute", d.API.Server.RateLimit.RequestsPerMinute)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// applyDefaults sets default values for options left empty.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Run.DefaultTimeout == 0 {
		c.Run.DefaultTimeout = DefaultTimeout
	}

	if c.Run.Output == "" {
		c.Run.Output = OutputConsole
	}

	if c.API.Server.Listen == "" {
		c.API.Server.Listen = DefaultListen
	}

	if c.API.Server.RateLimit.RequestsPerMinute == 0 {
		c.API.Server.RateLimit.RequestsPerMinute = DefaultRequestsPerMinute
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Global.LogLevel); err != nil {
		return fmt.Errorf("global.log_level: %w", err)
	}

	if c.Run.DefaultTimeout <= 0 {
		return fmt.Errorf("run.default_timeout must be positive, got %s", c.Run.DefaultTimeout)
	}

	switch c.Run.Output {
	case OutputConsole, OutputJSON, OutputNone:
	default:
		return fmt.Errorf("run.output: unknown output %q", c.Run.Output)
	}

	if err := filter.ValidatePatterns(c.Run.Filter); err != nil {
		return fmt.Errorf("run.filter: %w", err)
	}

	return c.API.Validate()
}
