// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"

	"userdesk/local-app/internal/model"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "./data/config.json"

// DefaultAPIURL is the public mock directory the users are seeded from.
const DefaultAPIURL = "https://jsonplaceholder.typicode.com/users"

// Global variables to store the current configuration and its file path.
var (
	currentConfig *model.Config
	configPath    = DefaultConfigPath
)

// Default returns the configuration written on first start.
func Default() *model.Config {
	return &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  "./data",
		DatabaseFile: "userdesk.db",
		StorageKey:   "users",
		APIURL:       DefaultAPIURL,
		APITimeout:   "30s",
		LogFolder:    "./logs",
		CommandLog:   "commands.log",
		ErrorLog:     "errors.log",
		InfoLog:      "info.log",
		LogLevel:     "info",
		HistoryFile:  "./data/history",
		UI:           "auto",
	}
}

// ConfigLoad loads the configuration from the JSON file at path.
// If the file doesn't exist, it creates a default configuration.
// The file may contain comments and trailing commas.
func ConfigLoad(path string) error {
	if path != "" {
		configPath = path
	}

	// Ensure the config directory exists
	dataDir := filepath.Dir(configPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Check if the config file exists, if not create a default one
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := Default()
		if err := ConfigSave(defaultConfig); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		currentConfig = defaultConfig
		return nil
	}

	// Read and parse the existing config file
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(file)
	if err != nil {
		return fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	currentConfig = cfg
	return nil
}

// Parse decodes a JSON (or JSONC) configuration document. Fields absent
// from the document keep their default values.
func Parse(data []byte) (*model.Config, error) {
	cfg := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings of cfg.
func Validate(cfg *model.Config) error {
	switch cfg.DatabaseType {
	case "sqlite", "sqlite-pure", "file", "memory":
	default:
		return fmt.Errorf("unsupported database_type %q (want sqlite, sqlite-pure, file or memory)", cfg.DatabaseType)
	}

	switch cfg.UI {
	case "auto", "cli", "tui":
	default:
		return fmt.Errorf("unsupported ui %q (want auto, cli or tui)", cfg.UI)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q (want debug, info, warn or error)", cfg.LogLevel)
	}

	if cfg.StorageKey == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	if cfg.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if _, err := APITimeout(cfg); err != nil {
		return err
	}
	return nil
}

// APITimeout parses the api_timeout setting. Zero means no timeout.
func APITimeout(cfg *model.Config) (time.Duration, error) {
	if cfg.APITimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(cfg.APITimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api_timeout %q: %w", cfg.APITimeout, err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("invalid api_timeout %q: must not be negative", cfg.APITimeout)
	}
	return timeout, nil
}

// ConfigSave saves the provided configuration to the JSON file.
func ConfigSave(cfg *model.Config) error {
	// Marshal the config to JSON
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write the JSON data to the config file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// ConfigGet returns the current configuration.
func ConfigGet() *model.Config {
	return currentConfig
}
