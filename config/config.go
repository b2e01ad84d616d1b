// Package config provides configuration loading and access for the noise tools.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/xnoise/noisemap"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Map       MapConfig       `yaml:"map"`
	Workers   int             `yaml:"workers"` // 0 = GOMAXPROCS
	Render    RenderConfig    `yaml:"render"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Preview   PreviewConfig   `yaml:"preview"`
	Graph     GraphConfig     `yaml:"graph"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// MapConfig describes the grid to generate.
type MapConfig struct {
	Width      int                 `yaml:"width"`
	Height     int                 `yaml:"height"`
	Projection noisemap.Projection `yaml:"projection"`
	Bounds     *noisemap.Bounds    `yaml:"bounds,omitempty"` // nil = standard region for the projection
	Seamless   bool                `yaml:"seamless"`         // planar only
	Normalize  bool                `yaml:"normalize"`        // raw output mapped from [-1,1] to [0,1]
	Border     *float64            `yaml:"border,omitempty"` // edge value for colour output, nil = none
}

// RenderConfig holds image output settings.
type RenderConfig struct {
	Gradient        string  `yaml:"gradient"` // grayscale | terrain
	NormalIntensity float64 `yaml:"normal_intensity"`
}

// OutputConfig holds file output settings. Empty file names disable that output.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	HeightFile string `yaml:"height_file"`
	NormalFile string `yaml:"normal_file"`
	ColorFile  string `yaml:"color_file"`
	Snapshot   bool   `yaml:"snapshot"` // JSON snapshot of the raw map values
	ConfigFile string `yaml:"config_file"`
}

// TelemetryConfig holds pass statistics settings.
type TelemetryConfig struct {
	CSV        bool `yaml:"csv"`
	PerfWindow int  `yaml:"perf_window"` // passes per perf summary
}

// ServerConfig holds the streaming server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxSize      int           `yaml:"max_size"` // largest width or height a client may request
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PreviewConfig holds interactive preview window settings.
type PreviewConfig struct {
	ScreenWidth  int `yaml:"screen_width"`
	ScreenHeight int `yaml:"screen_height"`
	MapSize      int `yaml:"map_size"`
	TargetFPS    int `yaml:"target_fps"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Bounds noisemap.Bounds // Map.Bounds or the standard region
	Border float32         // Map.Border or NaN
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// merge overlays data on c. Scalars present in data replace the defaults;
// a graph section replaces the default graph as a whole.
func (c *Config) merge(data []byte) error {
	var probe struct {
		Graph *GraphConfig `yaml:"graph"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if probe.Graph != nil {
		c.Graph = GraphConfig{}
	}
	// Unmarshal into same struct - only overwrites fields present in file
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map: size %dx%d must be positive", c.Map.Width, c.Map.Height)
	}
	if c.Map.Bounds != nil {
		if err := c.Map.Bounds.Validate(); err != nil {
			return fmt.Errorf("map: %w", err)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: %d must not be negative", c.Workers)
	}
	if len(c.Graph.Nodes) == 0 {
		return fmt.Errorf("graph: no nodes")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Bounds = noisemap.StandardBounds(c.Map.Projection)
	if c.Map.Bounds != nil {
		c.Derived.Bounds = *c.Map.Bounds
	}
	c.Derived.Border = float32(math.NaN())
	if c.Map.Border != nil {
		c.Derived.Border = float32(*c.Map.Border)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
