// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/ehs-tools/safety-dashboard/internal/indicator"
	"github.com/ehs-tools/safety-dashboard/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for safety-dashboard.
type Configuration struct {
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Indicators IndicatorsConfig `yaml:"indicators,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// UpstreamConfig points at the EHS backend service that owns raw accident
// records and per-year summaries.
type UpstreamConfig struct {
	BaseURL                string `yaml:"baseUrl"`
	TimeoutSeconds         int    `yaml:"timeoutSeconds,omitempty"`
	RetryMaxElapsedSeconds int    `yaml:"retryMaxElapsedSeconds,omitempty"`
}

// IndicatorsConfig holds indicator presentation defaults.
type IndicatorsConfig struct {
	// DefaultBasis is the exposure-hours basis used when a request does
	// not select one (200000 or 1000000).
	DefaultBasis float64 `yaml:"defaultBasis,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

func (conf *Configuration) applyDefaults() {
	if conf.Upstream.TimeoutSeconds <= 0 {
		conf.Upstream.TimeoutSeconds = constants.DefaultUpstreamTimeoutSeconds
	}
	if conf.Upstream.RetryMaxElapsedSeconds < 0 {
		conf.Upstream.RetryMaxElapsedSeconds = 0
	}
	if conf.Upstream.RetryMaxElapsedSeconds == 0 {
		conf.Upstream.RetryMaxElapsedSeconds = constants.DefaultRetryMaxElapsedSeconds
	}
	if conf.Indicators.DefaultBasis == 0 {
		conf.Indicators.DefaultBasis = constants.ReferenceBasisHours
	}
}

// Validate checks the configuration for values the application cannot run
// with.
func (conf *Configuration) Validate() error {
	if conf.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.baseUrl is required")
	}
	if _, err := indicator.ParseBasis(conf.Indicators.DefaultBasis); err != nil {
		return fmt.Errorf("indicators.defaultBasis: %w", err)
	}
	return nil
}

// DefaultBasis returns the configured default exposure-hours basis.
func (conf *Configuration) DefaultBasis() indicator.Basis {
	basis, err := indicator.ParseBasis(conf.Indicators.DefaultBasis)
	if err != nil {
		return indicator.BasisReference
	}
	return basis
}
