// Package config provides configuration loading and the typed configuration
// consumed by the frame sinks.
package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output kinds accepted in the config file.
const (
	OutputFile    = "file"
	OutputPreview = "preview"
	OutputNull    = "null"
)

// Config represents the full configuration file for framepipe.
type Config struct {
	// Render
	Width  uint     `yaml:"width" toml:"width"`
	Height uint     `yaml:"height" toml:"height"`
	FPS    Rational `yaml:"fps" toml:"fps"`
	Frames int      `yaml:"frames" toml:"frames"`

	// Audio (optional)
	Audio *AudioFileConfig `yaml:"audio" toml:"audio"`

	// Output
	Output OutputFileConfig `yaml:"output" toml:"output"`

	// External tools
	FFmpegPath string `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	FFplayPath string `yaml:"ffplay_path" toml:"ffplay_path"`

	// Test pattern
	Pattern PatternConfig `yaml:"pattern" toml:"pattern"`

	// Diagnostics
	LogLevel    string `yaml:"log_level" toml:"log_level"`
	Verify      bool   `yaml:"verify" toml:"verify"`
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
}

// AudioFileConfig is the audio section of the config file. Times are seconds.
type AudioFileConfig struct {
	Path      string   `yaml:"path" toml:"path"`
	BeginTime float64  `yaml:"begin_time" toml:"begin_time"`
	EndTime   *float64 `yaml:"end_time" toml:"end_time"`
}

// OutputFileConfig is the output section of the config file.
type OutputFileConfig struct {
	Kind          string `yaml:"kind" toml:"kind"`
	Path          string `yaml:"path" toml:"path"`
	Args          string `yaml:"args" toml:"args"`
	VideoTemplate string `yaml:"video_template" toml:"video_template"`
	AudioTemplate string `yaml:"audio_template" toml:"audio_template"`
}

// PatternConfig themes the built-in test pattern renderer.
type PatternConfig struct {
	BackgroundColor string `yaml:"background_color" toml:"background_color"`
	BarColor        string `yaml:"bar_color" toml:"bar_color"`
	TextColor       string `yaml:"text_color" toml:"text_color"`
	Label           string `yaml:"label" toml:"label"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Width:  1280,
		Height: 720,
		FPS:    NewRational(60, 1),
		Frames: 300,

		Output: OutputFileConfig{
			Kind: OutputFile,
		},

		Pattern: PatternConfig{
			BackgroundColor: "#1a1a2e",
			BarColor:        "#4ade80",
			TextColor:       "#ffffff",
			Label:           "framepipe",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML (.yaml, .yml) or TOML (.toml) file
// on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := c.Render().Validate(); err != nil {
		return err
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frame count %d is negative", ErrInvalidConfig, c.Frames)
	}
	if err := c.AudioConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.OutputConfig(); err != nil {
		return err
	}
	return nil
}

// Render returns the render section as a RenderConfig.
func (c Config) Render() RenderConfig {
	return RenderConfig{Width: c.Width, Height: c.Height, FPS: c.FPS}
}

// AudioConfig returns the audio section, or nil when no audio is configured.
func (c Config) AudioConfig() *AudioConfig {
	if c.Audio == nil || c.Audio.Path == "" {
		return nil
	}
	a := &AudioConfig{
		Path:      c.Audio.Path,
		BeginTime: secondsToDuration(c.Audio.BeginTime),
	}
	if c.Audio.EndTime != nil {
		end := secondsToDuration(*c.Audio.EndTime)
		a.EndTime = &end
	}
	return a
}

// OutputConfig returns the output section as one of the OutputConfig variants.
// Empty templates fall back to the variant defaults.
func (c Config) OutputConfig() (OutputConfig, error) {
	out := c.Output
	switch out.Kind {
	case OutputFile, "":
		cfg := NewEncoderFileConfig(out.Path)
		cfg.Args = out.Args
		cfg.FFmpegPath = c.FFmpegPath
		if out.VideoTemplate != "" {
			cfg.VideoTemplate = out.VideoTemplate
		}
		if out.AudioTemplate != "" {
			cfg.AudioTemplate = out.AudioTemplate
		}
		return cfg, nil
	case OutputPreview:
		cfg := NewPreviewPlayerConfig()
		cfg.FFmpegPath = c.FFmpegPath
		cfg.FFplayPath = c.FFplayPath
		if out.VideoTemplate != "" {
			cfg.VideoTemplate = out.VideoTemplate
		}
		if out.AudioTemplate != "" {
			cfg.AudioTemplate = out.AudioTemplate
		}
		return cfg, nil
	case OutputNull:
		return NullConfig{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output kind %q", ErrInvalidConfig, out.Kind)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 {
		return color.Black
	}

	return color.RGBA{
		R: hexByte(hex[0], hex[1]),
		G: hexByte(hex[2], hex[3]),
		B: hexByte(hex[4], hex[5]),
		A: 255,
	}
}

func hexByte(hi, lo byte) uint8 {
	return hexValue(hi)<<4 | hexValue(lo)
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
