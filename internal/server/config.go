package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ehs-tools/safety-dashboard/internal/config"
	"github.com/ehs-tools/safety-dashboard/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	RawShutdownTimeout string            `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	shutdownTimeout time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not
// exist, defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		Logging:         config.LoggingConfig{},
		shutdownTimeout: 10 * time.Second,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return c.shutdownTimeout
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	if c.RawShutdownTimeout == "" {
		c.shutdownTimeout = 10 * time.Second
		return nil
	}

	d, err := time.ParseDuration(c.RawShutdownTimeout)
	if err != nil {
		return fmt.Errorf("invalid shutdownTimeout %q: %w", c.RawShutdownTimeout, err)
	}
	if d <= 0 {
		d = 10 * time.Second
	}
	c.shutdownTimeout = d
	return nil
}
