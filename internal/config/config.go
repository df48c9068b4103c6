// Package config loads the abcalc configuration: YAML file first, then environment
// overrides (ABCALC_ADDR, ABCALC_LOG_LEVEL, ABCALC_LOG_FORMAT), then defaults for anything
// left empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TomTonic/abcalc"
)

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Bayes  BayesConfig  `yaml:"bayes"`
	Sizing SizingConfig `yaml:"sizing"`
}

type LogConfig struct {
	// debug, info, warn or error
	Level string `yaml:"level"`
	// json or console
	Format      string   `yaml:"format"`
	OutputPaths []string `yaml:"output_paths"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	// MaxSamples caps the Monte Carlo draws a single API request may ask for.
	MaxSamples uint64 `yaml:"max_samples"`
}

type BayesConfig struct {
	Samples uint64 `yaml:"samples"`
	// 0 picks a fresh random seed per calculation
	Seed uint64 `yaml:"seed"`
}

type SizingConfig struct {
	ZMethod abcalc.ZMethod `yaml:"z_method"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stderr"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
			MaxSamples:      1_000_000,
		},
		Bayes: BayesConfig{
			Samples: abcalc.DefaultMonteCarloSamples,
		},
		Sizing: SizingConfig{
			ZMethod: abcalc.ZAnalytic,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields the defaults with
// environment overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ABCALC_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("ABCALC_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("ABCALC_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
}

// fillDefaults restores defaults for fields a config file explicitly emptied.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = d.Log.OutputPaths
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Bayes.Samples == 0 {
		c.Bayes.Samples = d.Bayes.Samples
	}
	if c.Sizing.ZMethod == "" {
		c.Sizing.ZMethod = d.Sizing.ZMethod
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, console", c.Log.Format))
	}
	switch c.Sizing.ZMethod {
	case abcalc.ZAnalytic, abcalc.ZTable:
	default:
		errs = append(errs, fmt.Errorf("sizing.z_method %q is not one of analytic, table", c.Sizing.ZMethod))
	}
	if c.Server.MaxSamples > 0 && c.Bayes.Samples > c.Server.MaxSamples {
		errs = append(errs, fmt.Errorf("bayes.samples %d exceeds server.max_samples %d", c.Bayes.Samples, c.Server.MaxSamples))
	}
	if c.Bayes.Samples > abcalc.MaxMonteCarloSamples {
		errs = append(errs, fmt.Errorf("bayes.samples %d exceeds %d", c.Bayes.Samples, abcalc.MaxMonteCarloSamples))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	return errors.Join(errs...)
}
