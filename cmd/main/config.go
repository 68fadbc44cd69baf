package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/halcen/marquee/pkg/templating"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the preview HTTP server.
type ServerConfig struct {
	ServerAddr string `json:"server_addr"`
	LogLevel   string `json:"log_level"`

	// StaticDir is the directory served under the static URL prefix.
	StaticDir string `json:"static_dir"`

	// Routes maps reversal names to URL patterns, registered on the
	// template environment at startup so templates can call url().
	Routes map[string]string `json:"routes"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server    *ServerConfig      `json:"server_config"`
	Templates *templating.Config `json:"template_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr: ":8080",
		LogLevel:   "info",
		StaticDir:  "./static",
		Routes:     map[string]string{},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Server:    DefaultServerConfig(),
		Templates: templating.DefaultConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
