package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"regionnet/internal/array"
	"regionnet/internal/model"
)

// Config holds a graph description plus how to run it.
type Config struct {
	Graph model.GraphSpec `yaml:"graph"`
	Run   RunConfig       `yaml:"run"`
	Trace TraceConfig     `yaml:"trace"`
	Log   LogConfig       `yaml:"log"`
}

type RunConfig struct {
	Steps int `yaml:"steps"`
}

// TraceConfig selects which outputs are snapshotted after each step and
// where the snapshots go.
type TraceConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Outputs []string `yaml:"outputs"`
	Store   string   `yaml:"store"`
	DBPath  string   `yaml:"db_path"`
}

func (t TraceConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

var (
	ValidStores     = []string{"memory", "sqlite"}
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"auto", "text", "json"}
)

// LoadFromPath reads a graph file, fills defaults and validates the result.
// The graph name defaults to the file name without extension.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if cfg.Graph.Name == "" {
		cfg.Graph.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML and merges defaults without validating.
func Parse(data []byte) (*Config, error) {
	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return Merge(loaded, DefaultConfig()), nil
}

// Merge fills zero values in cfg from defaults.
func Merge(cfg, defaults *Config) *Config {
	out := *cfg
	if out.Run.Steps == 0 {
		out.Run.Steps = defaults.Run.Steps
	}
	if out.Trace.Enabled == nil {
		out.Trace.Enabled = defaults.Trace.Enabled
	}
	if out.Trace.Store == "" {
		out.Trace.Store = defaults.Trace.Store
	}
	if out.Trace.DBPath == "" {
		out.Trace.DBPath = defaults.Trace.DBPath
	}
	if out.Log.Level == "" {
		out.Log.Level = defaults.Log.Level
	}
	if out.Log.Format == "" {
		out.Log.Format = defaults.Log.Format
	}
	out.Graph.Regions = append([]model.RegionSpec(nil), cfg.Graph.Regions...)
	for i := range out.Graph.Regions {
		if out.Graph.Regions[i].Nodes == 0 {
			out.Graph.Regions[i].Nodes = 1
		}
	}
	return &out
}

// Validate checks graph structure and run settings.
func Validate(cfg *Config) error {
	if len(cfg.Graph.Regions) == 0 {
		return fmt.Errorf("%w: graph has no regions", ErrInvalidConfig)
	}

	types := make(map[string]array.BasicType, len(cfg.Graph.Regions))
	for i, region := range cfg.Graph.Regions {
		if region.Name == "" {
			return fmt.Errorf("%w: regions[%d] has no name", ErrInvalidConfig, i)
		}
		if strings.Contains(region.Name, ".") {
			return fmt.Errorf("%w: region name %q must not contain '.'", ErrInvalidConfig, region.Name)
		}
		if _, exists := types[region.Name]; exists {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidConfig, region.Name)
		}
		if region.Kind == "" {
			return fmt.Errorf("%w: region %q has no kind", ErrInvalidConfig, region.Name)
		}
		if region.Nodes < 0 {
			return fmt.Errorf("%w: region %q nodes must be positive, got %d", ErrInvalidConfig, region.Name, region.Nodes)
		}
		if region.Width < 0 {
			return fmt.Errorf("%w: region %q width must be positive, got %d", ErrInvalidConfig, region.Name, region.Width)
		}
		t, err := RegionType(region)
		if err != nil {
			return fmt.Errorf("%w: region %q: %v", ErrInvalidConfig, region.Name, err)
		}
		types[region.Name] = t
	}

	for i, link := range cfg.Graph.Links {
		src, _, err := SplitEndpoint(link.Source)
		if err != nil {
			return fmt.Errorf("%w: links[%d] source: %v", ErrInvalidConfig, i, err)
		}
		dest, _, err := SplitEndpoint(link.Destination)
		if err != nil {
			return fmt.Errorf("%w: links[%d] destination: %v", ErrInvalidConfig, i, err)
		}
		if _, ok := types[src]; !ok {
			return fmt.Errorf("%w: links[%d] unknown source region %q", ErrInvalidConfig, i, src)
		}
		if _, ok := types[dest]; !ok {
			return fmt.Errorf("%w: links[%d] unknown destination region %q", ErrInvalidConfig, i, dest)
		}
		if link.SourceNode != nil && *link.SourceNode < 0 {
			return fmt.Errorf("%w: links[%d] source_node must be >= 0, got %d", ErrInvalidConfig, i, *link.SourceNode)
		}
	}

	for _, endpoint := range cfg.Trace.Outputs {
		region, _, err := SplitEndpoint(endpoint)
		if err != nil {
			return fmt.Errorf("%w: trace output: %v", ErrInvalidConfig, err)
		}
		if _, ok := types[region]; !ok {
			return fmt.Errorf("%w: trace output %q names unknown region", ErrInvalidConfig, endpoint)
		}
	}

	if cfg.Run.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Run.Steps)
	}
	if !contains(ValidStores, cfg.Trace.Store) {
		return fmt.Errorf("%w: trace store must be one of %v, got %q", ErrInvalidConfig, ValidStores, cfg.Trace.Store)
	}
	if !contains(ValidLogLevels, cfg.Log.Level) {
		return fmt.Errorf("%w: log level must be one of %v, got %q", ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}
	if !contains(ValidLogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w: log format must be one of %v, got %q", ErrInvalidConfig, ValidLogFormats, cfg.Log.Format)
	}
	return nil
}

// RegionType resolves the element type of a region spec; empty means Real32.
func RegionType(region model.RegionSpec) (array.BasicType, error) {
	if region.Type == "" {
		return array.Real32, nil
	}
	return array.ParseBasicType(region.Type)
}

// SplitEndpoint splits "region.port".
func SplitEndpoint(endpoint string) (string, string, error) {
	region, port, ok := strings.Cut(endpoint, ".")
	if !ok || region == "" || port == "" {
		return "", "", fmt.Errorf("endpoint %q must be region.port", endpoint)
	}
	return region, port, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
