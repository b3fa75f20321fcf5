package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bsprender/internal/render"
)

var ErrInvalid = errors.New("invalid config")

// Config holds all viewer configuration values
type Config struct {
	Display DisplayConfig `yaml:"display"`
	View    ViewConfig    `yaml:"view"`
	Limits  render.Limits `yaml:"limits"`
	Assets  AssetsConfig  `yaml:"assets"`
	Debug   DebugConfig   `yaml:"debug"`
}

type DisplayConfig struct {
	// Scale multiplies the 320x200 frame for the window size.
	Scale       int    `yaml:"scale"`
	WindowTitle string `yaml:"window_title"`
	Resizable   bool   `yaml:"resizable"`
}

type ViewConfig struct {
	// Blocks is the view size, 3 to 11. 10 leaves room for the status bar,
	// 11 fills the screen.
	Blocks int `yaml:"blocks"`
	// Detail is 0 for high and 1 for low detail.
	Detail        int `yaml:"detail"`
	ViewHeight    int `yaml:"view_height"`
	FixedColormap int `yaml:"fixed_colormap"`

	MoveSpeed int `yaml:"move_speed"` // map units per tick
	TurnSpeed int `yaml:"turn_speed"` // degrees per tick
}

type AssetsConfig struct {
	WAD string `yaml:"wad"`
	Map string `yaml:"map"`
}

type DebugConfig struct {
	PerfLog bool `yaml:"perf_log"`
	// PerfLogInterval is in seconds.
	PerfLogInterval int    `yaml:"perf_log_interval"`
	LogFile         string `yaml:"log_file"`
}

var GlobalConfig *Config

// Default returns a usable configuration with the classic renderer limits.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Scale:       3,
			WindowTitle: "BSP Renderer",
			Resizable:   true,
		},
		View: ViewConfig{
			Blocks:     render.MaxBlocks,
			ViewHeight: 41,
			MoveSpeed:  8,
			TurnSpeed:  3,
		},
		Limits: render.DefaultLimits(),
		Assets: AssetsConfig{
			WAD: "doom1.wad",
			Map: "E1M1",
		},
		Debug: DebugConfig{PerfLogInterval: 3},
	}
}

// LoadConfig loads the configuration from a YAML file. Keys missing from the
// file keep their Default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	// Set global config for easy access
	GlobalConfig = config

	return config, nil
}

// MustLoadConfig loads the configuration and panics on error
func MustLoadConfig(filename string) *Config {
	config, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return config
}

// Validate rejects values the renderer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Display.Scale < 1:
		return fmt.Errorf("%w: display.scale %d", ErrInvalid, c.Display.Scale)
	case c.View.Blocks < render.MinBlocks || c.View.Blocks > render.MaxBlocks:
		return fmt.Errorf("%w: view.blocks %d not in [%d, %d]", ErrInvalid, c.View.Blocks, render.MinBlocks, render.MaxBlocks)
	case c.View.Detail != 0 && c.View.Detail != 1:
		return fmt.Errorf("%w: view.detail %d", ErrInvalid, c.View.Detail)
	case c.View.FixedColormap < 0 || c.View.FixedColormap >= render.NumColormaps+2:
		return fmt.Errorf("%w: view.fixed_colormap %d", ErrInvalid, c.View.FixedColormap)
	case c.Limits.VisPlanes < 1 || c.Limits.DrawSegs < 1 || c.Limits.Openings < 1 || c.Limits.VisSprites < 1:
		return fmt.Errorf("%w: limits %+v", ErrInvalid, c.Limits)
	case c.Assets.Map == "":
		return fmt.Errorf("%w: assets.map is empty", ErrInvalid)
	case c.Debug.PerfLog && c.Debug.PerfLogInterval < 1:
		return fmt.Errorf("%w: debug.perf_log_interval %d", ErrInvalid, c.Debug.PerfLogInterval)
	}
	return nil
}

// Helper functions for easy access to commonly used values
func (c *Config) GetWindowSize() (int, int) {
	return render.ScreenWidth * c.Display.Scale, render.ScreenHeight * c.Display.Scale
}

func (c *Config) GetScreenBlocks() int {
	return c.View.Blocks
}

func (c *Config) GetDetail() int {
	return c.View.Detail
}

func (c *Config) GetLimits() render.Limits {
	return c.Limits
}

func (c *Config) GetMoveSpeed() int {
	return c.View.MoveSpeed
}

func (c *Config) GetTurnSpeed() int {
	return c.View.TurnSpeed
}
