// Package config loads PureBlocks run configuration from YAML.
//
// Every field is optional; anything missing from the file keeps its value
// from Default, which reproduces the editor's built-in canvas and interpreter
// settings.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
)

// Canvas describes the drawing surface a program runs against.
type Canvas struct {
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	Background string  `yaml:"background" json:"background"`
	Color      string  `yaml:"color" json:"color"`
	Fill       bool    `yaml:"fill" json:"fill"`
	LineWidth  float64 `yaml:"line_width" json:"line_width"`
	FontSize   float64 `yaml:"font_size" json:"font_size"`
}

// Interpreter holds executor limits.
type Interpreter struct {
	WhileLimit int  `yaml:"while_limit" json:"while_limit"`
	MaxRange   int  `yaml:"max_range" json:"max_range"`
	Banner     bool `yaml:"banner" json:"banner"`
}

// Console controls terminal output.
type Console struct {
	Color bool `yaml:"color" json:"color"`
}

// Server configures the serve subcommand. An empty Redis address disables
// the console stream.
type Server struct {
	Addr   string `yaml:"addr" json:"addr"`
	DB     string `yaml:"db" json:"db"`
	Redis  string `yaml:"redis" json:"redis"`
	Stream string `yaml:"stream" json:"stream"`
}

// Config is the top-level configuration document.
type Config struct {
	Canvas      Canvas      `yaml:"canvas" json:"canvas"`
	Interpreter Interpreter `yaml:"interpreter" json:"interpreter"`
	Console     Console     `yaml:"console" json:"console"`
	Server      Server      `yaml:"server" json:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: Canvas{
			Width:      400,
			Height:     300,
			Background: "#ffffff",
			Color:      "#ff0000",
			Fill:       true,
			LineWidth:  2,
			FontSize:   16,
		},
		Interpreter: Interpreter{
			WhileLimit: 1000,
			MaxRange:   1_000_000,
			Banner:     true,
		},
		Console: Console{Color: true},
		Server: Server{
			Addr:   ":8080",
			DB:     "pureblocks.db",
			Stream: "pureblocks:console",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and color strings.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.LineWidth < 0 {
		return fmt.Errorf("config: line_width %v must not be negative", c.Canvas.LineWidth)
	}
	if c.Canvas.FontSize <= 0 {
		return fmt.Errorf("config: font_size %v must be positive", c.Canvas.FontSize)
	}
	if _, err := host.ParseColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("config: background: %w", err)
	}
	if _, err := host.ParseColor(c.Canvas.Color); err != nil {
		return fmt.Errorf("config: color: %w", err)
	}
	if c.Interpreter.WhileLimit <= 0 {
		return fmt.Errorf("config: while_limit %d must be positive", c.Interpreter.WhileLimit)
	}
	if c.Interpreter.MaxRange <= 0 {
		return fmt.Errorf("config: max_range %d must be positive", c.Interpreter.MaxRange)
	}
	return nil
}

// BackgroundColor returns the parsed canvas background.
func (c Canvas) BackgroundColor() color.RGBA {
	col, _ := host.ParseColor(c.Background)
	return col
}

// PenColor returns the parsed initial drawing color.
func (c Canvas) PenColor() color.RGBA {
	col, _ := host.ParseColor(c.Color)
	return col
}

// Prime applies the initial pen state to s, the way the editor prepares its
// canvas before each run.
func (c Canvas) Prime(s host.Surface) {
	s.SetColor(c.PenColor())
	s.SetFill(c.Fill)
	s.SetLineWidth(c.LineWidth)
}
