package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the fedsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // HS256 key; empty disables auth (local only)
	Issuer    string `yaml:"issuer"`     // expected iss claim, optional
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds paging, fan-out and ranking settings.
type SearchConfig struct {
	DefaultPageSize      int    `yaml:"default_page_size"`
	MaxPageSize          int    `yaml:"max_page_size"`
	QuickSearchSize      int    `yaml:"quick_search_size"`
	EntityMaxPageSize    int    `yaml:"entity_max_page_size"`
	TimeoutMs            int    `yaml:"timeout_ms"`
	WindowBuffer         int    `yaml:"window_buffer"`
	MaxWindow            int    `yaml:"max_window"`
	MaxConcurrentFanouts int64  `yaml:"max_concurrent_fanouts"` // 0 = unlimited
	SynonymCacheTTLSec   int    `yaml:"synonym_cache_ttl_sec"`
	ScoreNormalization   string `yaml:"score_normalization"` // minmax (default), raw
}

// BreakerConfig holds per-executor circuit breaker settings.
type BreakerConfig struct {
	MaxFailures     int `yaml:"max_failures"`
	ResetTimeoutSec int `yaml:"reset_timeout_sec"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRate  float64 `yaml:"sample_rate"`
	ServiceName string  `yaml:"service_name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 1000
	}
	if c.Search.QuickSearchSize <= 0 {
		c.Search.QuickSearchSize = 10
	}
	if c.Search.EntityMaxPageSize <= 0 {
		c.Search.EntityMaxPageSize = 100
	}
	if c.Search.TimeoutMs <= 0 {
		c.Search.TimeoutMs = 5000
	}
	if c.Search.WindowBuffer <= 0 {
		c.Search.WindowBuffer = 10
	}
	if c.Search.MaxWindow <= 0 {
		c.Search.MaxWindow = 10000
	}
	if c.Search.SynonymCacheTTLSec <= 0 {
		c.Search.SynonymCacheTTLSec = 300
	}
	if c.Search.ScoreNormalization == "" {
		c.Search.ScoreNormalization = "minmax"
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.ResetTimeoutSec <= 0 {
		c.Breaker.ResetTimeoutSec = 30
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "fedsearch"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.MaxPageSize > 1000 {
		return fmt.Errorf("search.max_page_size must not exceed 1000, got %d", c.Search.MaxPageSize)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.QuickSearchSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.quick_search_size (%d) exceeds search.max_page_size (%d)",
			c.Search.QuickSearchSize, c.Search.MaxPageSize)
	}
	if c.Search.MaxConcurrentFanouts < 0 {
		return fmt.Errorf("search.max_concurrent_fanouts must be >= 0, got %d", c.Search.MaxConcurrentFanouts)
	}
	switch c.Search.ScoreNormalization {
	case "minmax", "raw":
		// ok
	default:
		return fmt.Errorf("search.score_normalization must be \"minmax\" or \"raw\", got %q",
			c.Search.ScoreNormalization)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

// Timeout returns the per-request fan-out deadline.
func (s SearchConfig) Timeout() time.Duration { return time.Duration(s.TimeoutMs) * time.Millisecond }

// SynonymCacheTTL returns how long a synonym table is reused.
func (s SearchConfig) SynonymCacheTTL() time.Duration {
	return time.Duration(s.SynonymCacheTTLSec) * time.Second
}

// ResetTimeout returns how long an open breaker fast-fails.
func (b BreakerConfig) ResetTimeout() time.Duration {
	return time.Duration(b.ResetTimeoutSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
