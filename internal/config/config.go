// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration. Values come from a JSON
// file with environment variables as fallback; CLI flags override both.
type Config struct {
	// Paths
	DataDir    string `json:"data_dir,omitempty"`    // Directory with catalog JSON files
	OutputDir  string `json:"output_dir,omitempty"`  // Root for generated artifacts
	ContextDir string `json:"context_dir,omitempty"` // Directory of documents to index as context

	// Candidate info printed on generated documents
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Headless browser for SPA job pages
	Verbose     bool   `json:"verbose,omitempty"`

	// Server
	ServerAddr    string `json:"server_addr,omitempty"`     // Listen address for aria serve
	MaxActiveRuns int    `json:"max_active_runs,omitempty"` // Concurrent generation cap for the server
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:       "data",
		OutputDir:     "out",
		ServerAddr:    ":8080",
		MaxActiveRuns: 2,
	}
}

// Load reads configuration from a JSON file, if path is non-empty, and
// fills the gaps from environment variables and the built-in defaults.
func Load(path string) (*Config, error) {
	cfg := Config{}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

// applyEnv fills empty fields from environment variables.
func (c *Config) applyEnv() {
	setIfEmpty(&c.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&c.DatabaseURL, "DATABASE_URL")
	setIfEmpty(&c.DataDir, "ARIA_DATA_DIR")
	setIfEmpty(&c.OutputDir, "ARIA_OUTPUT_DIR")
	setIfEmpty(&c.ContextDir, "ARIA_CONTEXT_DIR")
	setIfEmpty(&c.Name, "ARIA_NAME")
	setIfEmpty(&c.Email, "ARIA_EMAIL")
	setIfEmpty(&c.Phone, "ARIA_PHONE")
	setIfEmpty(&c.LinkedIn, "ARIA_LINKEDIN")
	setIfEmpty(&c.GitHub, "ARIA_GITHUB")
	setIfEmpty(&c.ServerAddr, "ARIA_SERVER_ADDR")
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// Validate checks that the configuration has valid values. Required fields
// are enforced by the commands that need them, not here.
func (c *Config) Validate() error {
	if c.MaxActiveRuns < 0 {
		return fmt.Errorf("config error: 'max_active_runs' must be non-negative")
	}
	if c.DataDir != "" {
		if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: data directory not found: %s", c.DataDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ContextDir == "" {
		result.ContextDir = defaults.ContextDir
	}
	if result.Name == "" {
		result.Name = defaults.Name
	}
	if result.Email == "" {
		result.Email = defaults.Email
	}
	if result.Phone == "" {
		result.Phone = defaults.Phone
	}
	if result.LinkedIn == "" {
		result.LinkedIn = defaults.LinkedIn
	}
	if result.GitHub == "" {
		result.GitHub = defaults.GitHub
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}
	if result.MaxActiveRuns == 0 {
		result.MaxActiveRuns = defaults.MaxActiveRuns
	}
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
