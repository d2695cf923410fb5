// Package config loads rootlab settings and batch problems from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/rootlab/internal/runner"
)

// EnvVar names the environment variable consulted by LoadFromEnv
const EnvVar = "ROOTLAB_CONFIG"

// ErrUnsupportedFormat is returned for a config file that is neither TOML nor YAML
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config holds the complete application configuration
type Config struct {
	General   GeneralConfig   `toml:"general" yaml:"general"`
	Solver    SolverConfig    `toml:"solver" yaml:"solver"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Optimizer OptimizerConfig `toml:"optimizer" yaml:"optimizer"`
	Problems  []Problem       `toml:"problems" yaml:"problems"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	DataDir  string `toml:"data_dir" yaml:"data_dir"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// SolverConfig holds defaults applied to every run
type SolverConfig struct {
	Tol            float64 `toml:"tol" yaml:"tol"`
	MaxIter        int     `toml:"max_iter" yaml:"max_iter"`
	ScanStep       float64 `toml:"scan_step" yaml:"scan_step"`
	FourierSamples int     `toml:"fourier_samples" yaml:"fourier_samples"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// OptimizerConfig holds the mayfly seed search settings
type OptimizerConfig struct {
	MaxIters int   `toml:"max_iters" yaml:"max_iters"`
	PopSize  int   `toml:"pop_size" yaml:"pop_size"`
	Seed     int64 `toml:"seed" yaml:"seed"`
}

// Problem is one named entry of a batch file
type Problem struct {
	Name             string `toml:"name" yaml:"name"`
	runner.RunConfig `yaml:",inline"`
}

// Duration wraps time.Duration for text-based config formats
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file and applies defaults
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by ROOTLAB_CONFIG, then ./rootlab.toml or
// ./rootlab.yaml. Without any of them it returns Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range []string{"./rootlab.toml", "./rootlab.yaml", "./rootlab.yml"} {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}

	if c.Solver.Tol == 0 {
		c.Solver.Tol = runner.DefaultTol
	}
	if c.Solver.MaxIter == 0 {
		c.Solver.MaxIter = runner.DefaultMaxIter
	}
	if c.Solver.ScanStep == 0 {
		c.Solver.ScanStep = 0.5
	}
	if c.Solver.FourierSamples == 0 {
		c.Solver.FourierSamples = 50
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 15 * time.Second
	}

	if c.Optimizer.MaxIters == 0 {
		c.Optimizer.MaxIters = 200
	}
	if c.Optimizer.PopSize == 0 {
		c.Optimizer.PopSize = 20
	}
	if c.Optimizer.Seed == 0 {
		c.Optimizer.Seed = 1
	}

	for i := range c.Problems {
		c.Problems[i].ApplyDefaults(c.Solver.Tol, c.Solver.MaxIter)
		if c.Problems[i].Name == "" {
			c.Problems[i].Name = fmt.Sprintf("problem-%d", i+1)
		}
	}
}

// Validate checks solver defaults and every batch problem
func (c *Config) Validate() error {
	if !(c.Solver.Tol > 0) {
		return fmt.Errorf("config: solver.tol must be positive, got %g", c.Solver.Tol)
	}
	if c.Solver.MaxIter < 1 {
		return fmt.Errorf("config: solver.max_iter must be at least 1, got %d", c.Solver.MaxIter)
	}
	if !(c.Solver.ScanStep > 0) {
		return fmt.Errorf("config: solver.scan_step must be positive, got %g", c.Solver.ScanStep)
	}
	for i := range c.Problems {
		if err := c.Problems[i].Validate(); err != nil {
			return fmt.Errorf("config: problem %q: %w", c.Problems[i].Name, err)
		}
	}
	return nil
}

// Batch returns the problems as runner inputs
func (c *Config) Batch() []runner.NamedConfig {
	out := make([]runner.NamedConfig, len(c.Problems))
	for i, p := range c.Problems {
		out[i] = runner.NamedConfig{Name: p.Name, RunConfig: p.RunConfig}
	}
	return out
}
