// Package config holds the settings shared by the softrast commands.
//
// Values come from SOFTRAST_* environment variables and may be overridden
// by command-line flags.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/image/draw"
)

type Config struct {
	Width       int    `envconfig:"WIDTH" default:"800"`
	Height      int    `envconfig:"HEIGHT" default:"600"`
	SampleRate  int    `envconfig:"SAMPLE_RATE" default:"4"`
	Workers     int    `envconfig:"WORKERS" default:"1"`
	ImageFilter string `envconfig:"IMAGE_FILTER" default:"nearest"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("softrast", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RegisterFlags binds cfg's fields to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "canvas width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "canvas height in pixels")
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "supersamples per pixel along each axis")
	fs.IntVar(&c.Workers, "workers", c.Workers, "rasterizer goroutines (0 = GOMAXPROCS)")
	fs.StringVar(&c.ImageFilter, "filter", c.ImageFilter, "image sampling: nearest, approx-bilinear, bilinear, catmull-rom")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// Validate reports settings the renderer cannot use.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: canvas size %dx%d must be positive", c.Width, c.Height)
	}
	if c.SampleRate < 1 {
		return fmt.Errorf("config: sample rate %d must be at least 1", c.SampleRate)
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Filter returns the interpolator named by ImageFilter.
func (c *Config) Filter() (draw.Interpolator, error) {
	switch strings.ToLower(c.ImageFilter) {
	case "nearest", "":
		return draw.NearestNeighbor, nil
	case "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom":
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("config: unknown image filter %q", c.ImageFilter)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}
