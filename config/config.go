package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Configuration struct {
	ApiPort  string `json:"api_port" yaml:"api_port"`
	LogPath  string `json:"log_path" yaml:"log_path"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	// 0 disables the diagnostics listener (/metrics, /health, pprof)
	DiagnosticsPort int `json:"diagnostics_port" yaml:"diagnostics_port"`

	// "stdout" or "" (no exporter)
	TracingExporter string `json:"tracing_exporter" yaml:"tracing_exporter"`

	// 0 keeps the transport default
	UpstreamTimeoutSeconds int `json:"upstream_timeout_seconds" yaml:"upstream_timeout_seconds"`

	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// Get reads the server configuration from a JSON file, or YAML when the
// extension says so. Missing values get defaults.
func Get(path string) (Configuration, error) {
	var c Configuration
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(b, &c)
		default:
			err = json.Unmarshal(b, &c)
		}
		if err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	c.applyDefaults()
	return c, nil
}

func (c *Configuration) applyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.UpstreamTimeoutSeconds < 0 {
		c.UpstreamTimeoutSeconds = 0
	}
}
