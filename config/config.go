package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultDevOrigins     = "http://localhost:5173"
	defaultHTTPAddr       = ":8000"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGeminiTimeout  = 10 * time.Second
	defaultMaxOpenConns   = 10
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	defaultLogLevel       = "info"
)

// Config struct to hold the configuration settings
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr           string  `yaml:"addr"`
	DevOrigins     string  `yaml:"dev_origins"`
	ProdOrigins    string  `yaml:"prod_origins"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  *bool  `yaml:"auto_migrate"`
}

// GeminiConfig holds the text generation credentials and call limits.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in-process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to the environment alone.
func LoadConfig(filename string) (*Config, error) {
	cfg, err := load(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseConfig loads the same sources as LoadConfig but only requires
// the database settings. Migration tooling uses it.
func LoadDatabaseConfig(filename string) (*Config, error) {
	cfg, err := load(filename)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return cfg, nil
}

func load(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides file values with environment variables when present.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GEMINI_TIMEOUT value: %w", err)
		}
		cfg.Gemini.Timeout = d
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("DEV_ORIGINS"); v != "" {
		cfg.HTTP.DevOrigins = v
	}
	if v := os.Getenv("PROD_ORIGINS"); v != "" {
		cfg.HTTP.ProdOrigins = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS value: %w", err)
		}
		cfg.HTTP.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST value: %w", err)
		}
		cfg.HTTP.RateLimitBurst = n
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b := v == "true"
		cfg.Postgres.AutoMigrate = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.HTTP.DevOrigins == "" {
		c.HTTP.DevOrigins = defaultDevOrigins
	}
	if c.HTTP.RateLimitRPS <= 0 {
		c.HTTP.RateLimitRPS = defaultRateLimitRPS
	}
	if c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = defaultRateLimitBurst
	}
	if c.Postgres.MaxOpenConns <= 0 {
		c.Postgres.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Postgres.AutoMigrate == nil {
		b := true
		c.Postgres.AutoMigrate = &b
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = defaultGeminiTimeout
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = defaultLogLevel
	}
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is not set")
	}
	switch c.Observability.Environment {
	case "":
		return errors.New("ENVIRONMENT is not set")
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be either %q or %q, got %q", EnvDevelopment, EnvProduction, c.Observability.Environment)
	}
	if _, err := c.AllowedOrigins(); err != nil {
		return err
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Observability.Environment == EnvDevelopment
}

// AutoMigrateEnabled reports whether migrations run at startup.
func (c *Config) AutoMigrateEnabled() bool {
	return c.Postgres.AutoMigrate == nil || *c.Postgres.AutoMigrate
}

// AllowedOrigins returns the CORS origins for the active environment.
func (c *Config) AllowedOrigins() ([]string, error) {
	raw := c.HTTP.ProdOrigins
	if c.IsDevelopment() {
		raw = c.HTTP.DevOrigins
	}
	if raw == "" {
		return nil, nil
	}

	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return nil, fmt.Errorf("invalid origin format: %s. Origins must start with http:// or https://", o)
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid URL format for origin: %s", o)
		}
		origins = append(origins, o)
	}
	return origins, nil
}
