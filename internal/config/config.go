// Package config provides configuration management for Lineage.
// Settings come from an optional YAML file plus environment variables with
// the LINEAGE_ prefix; the environment always wins over the file, and every
// option has a working default.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Lineage service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Graph    GraphConfig    `yaml:"graph"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 6464)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	Engine      string `yaml:"engine"`       // Storage engine: sqlite, postgres (default: sqlite)
	DataPath    string `yaml:"data_path"`    // SQLite data directory (default: ./data)
	PostgresDSN string `yaml:"postgres_dsn"` // Postgres connection string
}

// SecurityConfig contains authentication and rate-limit settings.
type SecurityConfig struct {
	Mode           string  `yaml:"mode"`             // Security mode: development, production (default: development)
	APIToken       string  `yaml:"api_token"`        // Bearer token; required in production mode
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`   // Requests per second per client (default: 20)
	RateLimitBurst int     `yaml:"rate_limit_burst"` // Burst allowance (default: 40)
}

// PrivacyConfig tunes the redaction policy. The defaults match the
// documented policy; changing them changes who the API shows.
type PrivacyConfig struct {
	BirthCutoffYear int `yaml:"birth_cutoff_year"` // Born in or after this year is private (default: 1946)
	AgeCutoffYears  int `yaml:"age_cutoff_years"`  // Younger than this is private (default: 90)

	HistoricCutoffYears int `yaml:"historic_cutoff_years"` // Anchor age for inference (default: 150)
	HistoricMaxHops     int `yaml:"historic_max_hops"`     // Inference reach (default: 3)
}

// GraphConfig bounds the exploration operations.
type GraphConfig struct {
	MaxDepth        int `yaml:"max_depth"`         // Largest accepted neighborhood depth (default: 100)
	DefaultMaxNodes int `yaml:"default_max_nodes"` // Node budget when the caller gives none (default: 1000)
	MaxNodesLimit   int `yaml:"max_nodes_limit"`   // Largest accepted node budget (default: 6000)

	PathMaxHops  int `yaml:"path_max_hops"`  // Largest accepted path hop limit (default: 50)
	PathMaxNodes int `yaml:"path_max_nodes"` // Visit budget for path searches (default: 100000)
}

// LoadConfig loads configuration from LINEAGE_CONFIG_FILE (when set) and the
// environment. A missing file is an error; a missing variable falls back to
// the file value, then the default.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("LINEAGE_CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadConfigFile loads configuration from the given YAML file plus the
// environment. Used by the CLI's --config flag.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 6464,
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			Engine:   "sqlite",
			DataPath: "./data",
		},
		Security: SecurityConfig{
			Mode:           "development",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Privacy: PrivacyConfig{
			BirthCutoffYear:     1946,
			AgeCutoffYears:      90,
			HistoricCutoffYears: 150,
			HistoricMaxHops:     3,
		},
		Graph: GraphConfig{
			MaxDepth:        100,
			DefaultMaxNodes: 1000,
			MaxNodesLimit:   6000,
			PathMaxHops:     50,
			PathMaxNodes:    100000,
		},
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays LINEAGE_* environment variables on cfg. The current
// field value doubles as the default, so file values survive when the
// variable is unset.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("LINEAGE_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("LINEAGE_HOST", cfg.Server.Host)

	cfg.Storage.Engine = getEnv("LINEAGE_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DataPath = getEnv("LINEAGE_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresDSN = getEnv("LINEAGE_POSTGRES_DSN", cfg.Storage.PostgresDSN)

	cfg.Security.Mode = getEnv("LINEAGE_SECURITY_MODE", cfg.Security.Mode)
	cfg.Security.APIToken = getEnv("LINEAGE_API_TOKEN", cfg.Security.APIToken)
	cfg.Security.RateLimitRPS = getEnvFloat("LINEAGE_RATE_LIMIT_RPS", cfg.Security.RateLimitRPS)
	cfg.Security.RateLimitBurst = getEnvInt("LINEAGE_RATE_LIMIT_BURST", cfg.Security.RateLimitBurst)

	cfg.Privacy.BirthCutoffYear = getEnvInt("LINEAGE_PRIVACY_BIRTH_CUTOFF_YEAR", cfg.Privacy.BirthCutoffYear)
	cfg.Privacy.AgeCutoffYears = getEnvInt("LINEAGE_PRIVACY_AGE_CUTOFF_YEARS", cfg.Privacy.AgeCutoffYears)
	cfg.Privacy.HistoricCutoffYears = getEnvInt("LINEAGE_HISTORIC_CUTOFF_YEARS", cfg.Privacy.HistoricCutoffYears)
	cfg.Privacy.HistoricMaxHops = getEnvInt("LINEAGE_HISTORIC_MAX_HOPS", cfg.Privacy.HistoricMaxHops)

	cfg.Graph.MaxDepth = getEnvInt("LINEAGE_GRAPH_MAX_DEPTH", cfg.Graph.MaxDepth)
	cfg.Graph.DefaultMaxNodes = getEnvInt("LINEAGE_GRAPH_DEFAULT_MAX_NODES", cfg.Graph.DefaultMaxNodes)
	cfg.Graph.MaxNodesLimit = getEnvInt("LINEAGE_GRAPH_MAX_NODES_LIMIT", cfg.Graph.MaxNodesLimit)
	cfg.Graph.PathMaxHops = getEnvInt("LINEAGE_PATH_MAX_HOPS", cfg.Graph.PathMaxHops)
	cfg.Graph.PathMaxNodes = getEnvInt("LINEAGE_PATH_MAX_NODES", cfg.Graph.PathMaxNodes)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
