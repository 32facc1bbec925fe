package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	USDA      USDAConfig      `yaml:"usda"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Planner   PlannerConfig   `yaml:"planner"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type USDAConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	CachePath string        `yaml:"cache_path"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// CatalogConfig points at the exercise dataset: a local path or gs://bucket/object.
type CatalogConfig struct {
	Source string `yaml:"source"`
}

type PlannerConfig struct {
	MaxRoundTrips       int `yaml:"max_round_trips"`
	SelectionLimit      int `yaml:"selection_limit"`
	AssistantRoundTrips int `yaml:"assistant_round_trips"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// LoadDotEnv loads environment variables from .env files. Missing files are
// skipped; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. Env vars use the prefix REPCOACH_ and
// underscore-separated paths:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT,
//	REPCOACH_DB_HOST, REPCOACH_DB_PORT, REPCOACH_DB_NAME,
//	REPCOACH_DB_USER, REPCOACH_DB_PASSWORD, REPCOACH_DB_SSLMODE,
//	REPCOACH_AUTH_API_KEY,
//	REPCOACH_TAILSCALE_ENABLED, REPCOACH_TAILSCALE_HOSTNAME, REPCOACH_TAILSCALE_STATE_DIR,
//	REPCOACH_GEMINI_API_KEY, REPCOACH_GEMINI_MODEL, REPCOACH_GEMINI_TIMEOUT,
//	REPCOACH_USDA_API_KEY, REPCOACH_USDA_BASE_URL, REPCOACH_USDA_CACHE_PATH,
//	REPCOACH_CATALOG_SOURCE,
//	REPCOACH_PLANNER_MAX_ROUND_TRIPS, REPCOACH_PLANNER_SELECTION_LIMIT
//
// GEMINI_API_KEY and USDA_API_KEY are accepted as fallbacks for the API keys.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "REPCOACH_SERVER_HOST")
	setInt(&cfg.Server.Port, "REPCOACH_SERVER_PORT")

	setString(&cfg.Database.Host, "REPCOACH_DB_HOST")
	setInt(&cfg.Database.Port, "REPCOACH_DB_PORT")
	setString(&cfg.Database.Name, "REPCOACH_DB_NAME")
	setString(&cfg.Database.User, "REPCOACH_DB_USER")
	setString(&cfg.Database.Password, "REPCOACH_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "REPCOACH_DB_SSLMODE")

	setString(&cfg.Auth.APIKey, "REPCOACH_AUTH_API_KEY")

	if v := os.Getenv("REPCOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString(&cfg.Tailscale.Hostname, "REPCOACH_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "REPCOACH_TAILSCALE_STATE_DIR")

	if cfg.Gemini.APIKey == "" {
		setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	}
	setString(&cfg.Gemini.APIKey, "REPCOACH_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "REPCOACH_GEMINI_MODEL")
	if v := os.Getenv("REPCOACH_GEMINI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Gemini.Timeout = d
		}
	}

	if cfg.USDA.APIKey == "" {
		setString(&cfg.USDA.APIKey, "USDA_API_KEY")
	}
	setString(&cfg.USDA.APIKey, "REPCOACH_USDA_API_KEY")
	setString(&cfg.USDA.BaseURL, "REPCOACH_USDA_BASE_URL")
	setString(&cfg.USDA.CachePath, "REPCOACH_USDA_CACHE_PATH")

	setString(&cfg.Catalog.Source, "REPCOACH_CATALOG_SOURCE")

	setInt(&cfg.Planner.MaxRoundTrips, "REPCOACH_PLANNER_MAX_ROUND_TRIPS")
	setInt(&cfg.Planner.SelectionLimit, "REPCOACH_PLANNER_SELECTION_LIMIT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "repcoach"
	}
	if cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = "tsnet-state"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 60 * time.Second
	}
	if cfg.USDA.APIKey == "" {
		cfg.USDA.APIKey = "DEMO_KEY"
	}
	if cfg.USDA.BaseURL == "" {
		cfg.USDA.BaseURL = "https://api.nal.usda.gov/fdc/v1"
	}
	if cfg.USDA.CachePath == "" {
		cfg.USDA.CachePath = "data/food-cache.db"
	}
	if cfg.USDA.CacheTTL == 0 {
		cfg.USDA.CacheTTL = 24 * time.Hour
	}
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "data/exercises.json"
	}
	if cfg.Planner.MaxRoundTrips == 0 {
		cfg.Planner.MaxRoundTrips = 8
	}
	if cfg.Planner.SelectionLimit == 0 {
		cfg.Planner.SelectionLimit = 5
	}
	if cfg.Planner.AssistantRoundTrips == 0 {
		cfg.Planner.AssistantRoundTrips = 6
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}
	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("gemini.timeout must be positive")
	}
	if c.Planner.MaxRoundTrips < 1 {
		return fmt.Errorf("planner.max_round_trips must be at least 1")
	}
	if c.Planner.SelectionLimit < 1 {
		return fmt.Errorf("planner.selection_limit must be at least 1")
	}
	return nil
}
