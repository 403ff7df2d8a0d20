// Package config loads client and service settings.
//
// Config file locations (priority order):
//  1. the path given on the command line
//  2. $PIPELINE_CONFIG
//  3. ./pipeline.yaml
//
// Environment variables override file values:
// PIPELINE_ENDPOINT, PIPELINE_LISTEN, DATABASE_URL, PIPELINE_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/pipeline/analysis"
	"github.com/meikuraledutech/pipeline/internal/logging"
	"github.com/meikuraledutech/pipeline/workflow"
)

// DefaultPath is read when no other config file is named.
const DefaultPath = "pipeline.yaml"

// Config holds every setting of the CLI and the analysis service.
type Config struct {
	// Endpoint is the base URL of the analysis service.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds each analysis request. Zero leaves it to the transport.
	Timeout time.Duration `yaml:"timeout"`
	// InFlight is the policy for a submit fired while one is running:
	// ignore, queue or replace.
	InFlight    string `yaml:"in_flight"`
	DatabaseURL string `yaml:"database_url"`
	// Listen is the analysis service address.
	Listen       string   `yaml:"listen"`
	AllowOrigins []string `yaml:"allow_origins"`
	LogLevel     string   `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     analysis.DefaultEndpoint,
		InFlight:     string(workflow.PolicyIgnore),
		Listen:       ":8000",
		AllowOrigins: analysis.DefaultAllowOrigins,
		LogLevel:     "info",
	}
}

// Load reads path, or $PIPELINE_CONFIG, or ./pipeline.yaml when present,
// then applies environment overrides. A missing default file is not an
// error; a missing explicitly named file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("PIPELINE_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg = DefaultConfig()
		} else {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks values that are parsed later.
func (c *Config) Validate() error {
	if _, err := workflow.ParsePolicy(c.InFlight); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	return nil
}

// Policy returns the parsed in-flight policy.
func (c *Config) Policy() workflow.Policy {
	p, _ := workflow.ParsePolicy(c.InFlight)
	return p
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.InFlight == "" {
		c.InFlight = def.InFlight
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = def.AllowOrigins
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PIPELINE_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("PIPELINE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("PIPELINE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
