// Package config loads ls-greatcircle settings from a JSON file and merges
// command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-greatcircle/internal/remap"
	"github.com/litescript/ls-greatcircle/internal/solar"
)

// Defaults
const (
	DefaultMaxSourceWidth = 2048
	DefaultOutputWidth    = 160
	DefaultOutputHeight   = 96
	DefaultLogLevel       = "info"
	DefaultPollInterval   = 100 * time.Millisecond
)

// Config holds every setting the CLI understands.
type Config struct {
	// Source map; empty means the built-in graticule.
	Source         string `json:"source"`
	MaxSourceWidth int    `json:"max_source_width"`

	// Headless output size. The TUI follows the terminal instead.
	OutputWidth  int `json:"output_width"`
	OutputHeight int `json:"output_height"`

	LogLevel       string `json:"log_level"`
	LogFile        string `json:"log_file"`
	MetricsAddr    string `json:"metrics_addr"`
	PollIntervalMS int    `json:"poll_interval_ms"`

	Anchors []AnchorEntry `json:"anchors"`
}

// AnchorEntry is an anchor as written in the config file.
type AnchorEntry struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Source         string
	MaxSourceWidth int
	OutputWidth    int
	OutputHeight   int
	LogLevel       string
	LogFile        string
	MetricsAddr    string
	Anchors        []remap.Anchor
}

// Load reads a JSON config file. Fields not set in the file keep their zero
// values. A relative source path is taken relative to the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Source != "" && !filepath.IsAbs(cfg.Source) {
		cfg.Source = filepath.Join(filepath.Dir(path), cfg.Source)
	}
	for i, a := range cfg.Anchors {
		if a.U < 0 || a.U >= 1 || a.V < 0 || a.V >= 1 {
			return Config{}, fmt.Errorf("config: parse %s: anchor %d (%g, %g) outside [0,1)", path, i, a.U, a.V)
		}
	}

	return cfg, nil
}

// Resolve applies non-zero flags over the file values and fills anything
// still unset with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Source != "" {
		c.Source = flags.Source
	}
	if flags.MaxSourceWidth > 0 {
		c.MaxSourceWidth = flags.MaxSourceWidth
	}
	if flags.OutputWidth > 0 {
		c.OutputWidth = flags.OutputWidth
	}
	if flags.OutputHeight > 0 {
		c.OutputHeight = flags.OutputHeight
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.MetricsAddr != "" {
		c.MetricsAddr = flags.MetricsAddr
	}
	if len(flags.Anchors) > 0 {
		c.Anchors = c.Anchors[:0]
		for _, a := range flags.Anchors {
			c.Anchors = append(c.Anchors, AnchorEntry{U: a.U, V: a.V})
		}
	}

	if c.MaxSourceWidth <= 0 {
		c.MaxSourceWidth = DefaultMaxSourceWidth
	}
	if c.OutputWidth <= 0 {
		c.OutputWidth = DefaultOutputWidth
	}
	if c.OutputHeight <= 0 {
		c.OutputHeight = DefaultOutputHeight
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = int(DefaultPollInterval / time.Millisecond)
	}
}

// PollInterval is how often the UI polls for a finished raster.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// AnchorList returns the configured anchors in order.
func (c *Config) AnchorList() []remap.Anchor {
	out := make([]remap.Anchor, len(c.Anchors))
	for i, a := range c.Anchors {
		out[i] = remap.Anchor{U: a.U, V: a.V}
	}
	return out
}

// ParseAnchor parses "u,v" with both fractions in [0,1), or "sun" for the
// current subsolar point.
func ParseAnchor(s string) (remap.Anchor, error) {
	if strings.EqualFold(strings.TrimSpace(s), "sun") {
		return solar.Anchor(time.Now()), nil
	}
	us, vs, ok := strings.Cut(s, ",")
	if !ok {
		return remap.Anchor{}, fmt.Errorf("config: anchor %q: want u,v", s)
	}
	u, err := strconv.ParseFloat(strings.TrimSpace(us), 64)
	if err != nil {
		return remap.Anchor{}, fmt.Errorf("config: anchor %q: %w", s, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(vs), 64)
	if err != nil {
		return remap.Anchor{}, fmt.Errorf("config: anchor %q: %w", s, err)
	}
	if u < 0 || u >= 1 || v < 0 || v >= 1 {
		return remap.Anchor{}, fmt.Errorf("config: anchor %q: fractions must be in [0,1)", s)
	}
	return remap.Anchor{U: u, V: v}, nil
}

// ParseSize parses "WxH" with positive dimensions.
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("config: size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("config: size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("config: size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("config: size %q: dimensions must be positive", s)
	}
	return w, h, nil
}
