package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Render().FPS != NewRational(60, 1) {
		t.Errorf("default fps = %v", cfg.FPS)
	}

	out, err := cfg.OutputConfig()
	if err != nil {
		t.Fatalf("OutputConfig failed: %v", err)
	}
	file, ok := out.(EncoderFileConfig)
	if !ok {
		t.Fatalf("default output is %T", out)
	}
	if file.Path != nil {
		t.Errorf("default output path should be stdout, got %q", *file.Path)
	}
	if file.VideoTemplate != DefaultFileVideoTemplate {
		t.Errorf("video template = %q", file.VideoTemplate)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeConfig(t, "render.yaml", `
width: 640
height: 360
fps: 30000/1001
frames: 90
audio:
  path: music/track.flac
  begin_time: 1.5
  end_time: 4
output:
  kind: file
  path: out/render.mp4
  args: -metadata title=demo
  video_template: -c:v libx265
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
log_level: debug
verify: true
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Width != 640 || cfg.Height != 360 || cfg.FPS != NewRational(30000, 1001) || cfg.Frames != 90 {
		t.Errorf("render settings not loaded: %+v", cfg.Render())
	}
	if !cfg.Verify || cfg.LogLevel != "debug" {
		t.Errorf("diagnostics not loaded: verify=%v level=%q", cfg.Verify, cfg.LogLevel)
	}
	// Unset keys keep their defaults.
	if cfg.Pattern.Label != "framepipe" {
		t.Errorf("pattern default lost: %+v", cfg.Pattern)
	}

	audio := cfg.AudioConfig()
	if audio == nil || audio.Path != "music/track.flac" || audio.BeginTime != 1500*time.Millisecond {
		t.Fatalf("audio = %+v", audio)
	}
	if d, ok := audio.Duration(); !ok || d != 2500*time.Millisecond {
		t.Errorf("audio duration = %s, %v", d, ok)
	}

	out, err := cfg.OutputConfig()
	if err != nil {
		t.Fatalf("OutputConfig failed: %v", err)
	}
	file := out.(EncoderFileConfig)
	if file.Path == nil || *file.Path != "out/render.mp4" {
		t.Errorf("path = %v", file.Path)
	}
	if file.Args != "-metadata title=demo" || file.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("file config = %+v", file)
	}
	if file.VideoTemplate != "-c:v libx265" || file.AudioTemplate != DefaultFileAudioTemplate {
		t.Errorf("templates = %q / %q", file.VideoTemplate, file.AudioTemplate)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := writeConfig(t, "render.toml", `
width = 320
height = 240
fps = "25"
frames = 10
ffplay_path = "/usr/local/bin/ffplay"

[output]
kind = "preview"

[pattern]
label = "preview"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.FPS != NewRational(25, 1) || cfg.Width != 320 {
		t.Errorf("render = %+v", cfg.Render())
	}
	if cfg.AudioConfig() != nil {
		t.Error("no audio was configured")
	}

	out, err := cfg.OutputConfig()
	if err != nil {
		t.Fatalf("OutputConfig failed: %v", err)
	}
	preview, ok := out.(PreviewPlayerConfig)
	if !ok {
		t.Fatalf("output is %T, want PreviewPlayerConfig", out)
	}
	if preview.FFplayPath != "/usr/local/bin/ffplay" || preview.VideoTemplate != DefaultPreviewVideoTemplate {
		t.Errorf("preview = %+v", preview)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(writeConfig(t, "render.json", "{}")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := LoadFromFile(writeConfig(t, "bad.yaml", "fps: fast\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for a bad fps, got %v", err)
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Defaults()
	cfg.Output.Kind = "stream"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown output kind: %v", err)
	}

	cfg = Defaults()
	cfg.Frames = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative frames: %v", err)
	}

	cfg = Defaults()
	end := 1.0
	cfg.Audio = &AudioFileConfig{Path: "a.wav", BeginTime: 2, EndTime: &end}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("audio end before begin: %v", err)
	}

	cfg = Defaults()
	cfg.Output.Kind = OutputNull
	out, err := cfg.OutputConfig()
	if err != nil {
		t.Fatalf("OutputConfig failed: %v", err)
	}
	if _, ok := out.(NullConfig); !ok {
		t.Errorf("null output is %T", out)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{"FF8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{"#f80", color.RGBA{R: 255, G: 136, B: 0, A: 255}},
		{"", color.Black},
		{"#12345", color.Black},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
