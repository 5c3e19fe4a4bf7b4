package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cstone-estimating/proposal/fetch"
)

// Config holds the upload service configuration.
type Config struct {
	Listen             string        `yaml:"listen"`
	DefaultMappingPath string        `yaml:"default_mapping_path"`
	DefaultCoordsPath  string        `yaml:"default_coords_path"`
	MaxDownloadMB      float64       `yaml:"max_download_mb"`
	MaxUploadMB        float64       `yaml:"max_upload_mb"`
	DownloadTimeout    time.Duration `yaml:"download_timeout"`
	UserAgent          string        `yaml:"user_agent"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:             ":8080",
		DefaultMappingPath: "configs/mapping.json",
		DefaultCoordsPath:  "configs/coordinates.json",
		MaxDownloadMB:      fetch.DefaultMaxMB,
		MaxUploadMB:        100,
		DownloadTimeout:    fetch.DefaultTimeout,
		UserAgent:          fetch.DefaultUserAgent,
		ShutdownTimeout:    10 * time.Second,
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from MAX_DOWNLOAD_MB and LISTEN_ADDR when they
// are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("MAX_DOWNLOAD_MB"); v != "" {
		mb, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MAX_DOWNLOAD_MB: %w", err)
		}
		c.MaxDownloadMB = mb
	}
	if v := getenv("LISTEN_ADDR"); v != "" {
		c.Listen = v
	}
	return c.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DefaultMappingPath == "" {
		return fmt.Errorf("default_mapping_path is required")
	}
	if c.DefaultCoordsPath == "" {
		return fmt.Errorf("default_coords_path is required")
	}
	if c.MaxDownloadMB <= 0 {
		return fmt.Errorf("max_download_mb must be > 0")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download_timeout must be > 0")
	}
	return nil
}

// MaxUploadBytes returns the request body cap in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB * 1024 * 1024) }
