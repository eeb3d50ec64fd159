// Package config holds the static presentation configuration: the two
// view surfaces and the global defaults applied at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SurfaceConfig names one view surface. The JSON tags serve the config
// endpoint the renderer bootstraps from.
type SurfaceConfig struct {
	// Type is "web-map" for the 2D surface or "web-scene" for the 3D one.
	Type string `yaml:"type" json:"type"`
	// Item is the backing content identifier in the mapping platform.
	Item string `yaml:"item" json:"item"`
	// Container is the DOM element id the surface renders into.
	Container string `yaml:"container" json:"container"`
}

type Config struct {
	Primary   SurfaceConfig `yaml:"primary" json:"primary"`
	Secondary SurfaceConfig `yaml:"secondary" json:"secondary"`

	StoryPath         string     `yaml:"storyPath" json:"-"`
	InitialZoom       int        `yaml:"initialZoom" json:"initialZoom"`
	InitialCenter     [2]float64 `yaml:"initialCenter" json:"initialCenter"` // [longitude, latitude]
	PlaybackRate      float64    `yaml:"playbackRate" json:"playbackRate"`   // time-slider ticks per second
	DisableNavigation bool       `yaml:"disableNavigation" json:"disableNavigation"`
	// FitMode selects how a viewpoint with both extent and scale is
	// applied: "scale" keeps center+scale, "extent" fits the rectangle.
	FitMode string `yaml:"fitMode" json:"fitMode"`
	// GoToDurationMs is the animation length for discrete slide jumps.
	GoToDurationMs int `yaml:"goToDurationMs" json:"goToDurationMs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Primary:        SurfaceConfig{Type: "web-map", Container: "mapDiv"},
		Secondary:      SurfaceConfig{Type: "web-scene", Container: "sceneDiv"},
		StoryPath:      "story.json",
		InitialZoom:    4,
		PlaybackRate:   1.0,
		FitMode:        "extent",
		GoToDurationMs: 800,
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.FitMode != "scale" && c.FitMode != "extent" {
		return fmt.Errorf("fitMode must be \"scale\" or \"extent\", got %q", c.FitMode)
	}
	if c.Primary.Container == "" || c.Secondary.Container == "" {
		return fmt.Errorf("both surfaces need a container id")
	}
	if c.StoryPath == "" {
		return fmt.Errorf("storyPath is required")
	}
	return nil
}

// GoToDuration returns the discrete-jump animation duration.
func (c *Config) GoToDuration() time.Duration {
	return time.Duration(c.GoToDurationMs) * time.Millisecond
}
