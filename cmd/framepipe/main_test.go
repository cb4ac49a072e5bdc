package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/framepipe/pkg/command"
	"github.com/user/framepipe/pkg/config"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"framepipe"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestArgs_FileOutput(t *testing.T) {
	t.Setenv(command.FFmpegEnv, "")
	out := filepath.Join(t.TempDir(), "out.mp4")

	stdout, _, err := run(t, "args", "-o", out, "--width", "320", "--height", "240", "--fps", "25")
	if err != nil {
		t.Fatalf("args failed: %v", err)
	}

	want := "ffmpeg -y -f rawvideo -pixel_format rgb24 -video_size 320x240 -framerate 25 -i - " +
		"-c:v libx264 -crf 18 -preset superfast -movflags faststart " + command.Quote(out) + "\n"
	if stdout != want {
		t.Errorf("unexpected command\n got: %q\nwant: %q", stdout, want)
	}
}

func TestArgs_StdoutWithExtraArgs(t *testing.T) {
	t.Setenv(command.FFmpegEnv, "")

	stdout, _, err := run(t, "args", "-o", "-", "--args", "-f matroska", "--ffmpeg", "/opt/ffmpeg/bin/ffmpeg")
	if err != nil {
		t.Fatalf("args failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "/opt/ffmpeg/bin/ffmpeg -y ") {
		t.Errorf("expected overridden binary, got %q", stdout)
	}
	if !strings.HasSuffix(stdout, " -f matroska -\n") {
		t.Errorf("expected extra args before stdout destination, got %q", stdout)
	}
}

func TestArgs_Preview(t *testing.T) {
	t.Setenv(command.FFmpegEnv, "")
	t.Setenv(command.FFplayEnv, "")

	stdout, _, err := run(t, "args", "--preview", "--fps", "30000/1001")
	if err != nil {
		t.Fatalf("args failed: %v", err)
	}
	if !strings.Contains(stdout, "-framerate 30000/1001") {
		t.Errorf("expected rational frame rate, got %q", stdout)
	}
	if !strings.HasSuffix(stdout, "-f nut - | ffplay -autoexit -\n") {
		t.Errorf("expected encoder piped into player, got %q", stdout)
	}
}

func TestArgs_AudioFlags(t *testing.T) {
	t.Setenv(command.FFmpegEnv, "")
	audio := filepath.Join(t.TempDir(), "tone.wav")

	stdout, _, err := run(t, "args", "-o", "-", "--audio", audio, "--audio-begin", "1.5", "--audio-end", "4")
	if err != nil {
		t.Fatalf("args failed: %v", err)
	}
	want := "-ss 1.5 -i " + command.Quote(audio) + " -to 2.5"
	if !strings.Contains(stdout, want) {
		t.Errorf("expected %q in %q", want, stdout)
	}
}

func TestArgs_NullOutput(t *testing.T) {
	_, _, err := run(t, "args", "--null")

	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("expected an exit error, got %v", err)
	}
	if coder.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", coder.ExitCode())
	}
}

func TestArgs_ConflictingOutputs(t *testing.T) {
	_, _, err := run(t, "args", "-o", "out.mp4", "--null")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestArgs_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad fps", []string{"--fps", "fast"}},
		{"zero width", []string{"--width", "0"}},
		{"bad log level", []string{"--log-level", "verbose"}},
		{"audio end before begin", []string{"--audio", "a.wav", "--audio-begin", "5", "--audio-end", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"args", "-o", "-"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestArgs_ConfigFileWithFlagOverrides(t *testing.T) {
	t.Setenv(command.FFmpegEnv, "")
	t.Setenv(command.FFplayEnv, "")

	path := filepath.Join(t.TempDir(), "framepipe.yaml")
	yaml := `
width: 640
height: 360
fps: "24"
output:
  kind: preview
  video_template: "-c:v mpeg4"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := run(t, "args", "-c", path, "--width", "320")
	if err != nil {
		t.Fatalf("args failed: %v", err)
	}
	for _, want := range []string{"-video_size 320x360", "-framerate 24", "-c:v mpeg4", "| ffplay"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
}

func TestRender_NullOutput(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "reports", "render.md")
	metricsFile := filepath.Join(dir, "framepipe.prom")

	_, _, err := run(t, "render", "--null", "-q",
		"--width", "64", "--height", "48", "--frames", "5",
		"--summary", summary, "--metrics-file", metricsFile)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	report, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.Contains(string(report), "5 / 5") {
		t.Errorf("summary missing frame count:\n%s", report)
	}
	if !strings.Contains(string(report), "64x48") {
		t.Errorf("summary missing frame size:\n%s", report)
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(prom), "framepipe_frames_written_total 5") {
		t.Errorf("metrics missing frame counter:\n%s", prom)
	}
}

func TestRender_JSONSummary(t *testing.T) {
	summary := filepath.Join(t.TempDir(), "render.json")

	_, _, err := run(t, "render", "--null", "-q", "--width", "32", "--height", "16", "--frames", "4",
		"--summary", summary)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	var report struct {
		Settings struct {
			Output string `json:"output"`
		} `json:"settings"`
		Result struct {
			FramesWritten int   `json:"frames_written"`
			ExitCodes     []int `json:"exit_codes"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, data)
	}
	if report.Settings.Output != config.OutputNull {
		t.Errorf("output = %q, want %q", report.Settings.Output, config.OutputNull)
	}
	if report.Result.FramesWritten != 4 {
		t.Errorf("frames_written = %d, want 4", report.Result.FramesWritten)
	}
	if len(report.Result.ExitCodes) != 1 || report.Result.ExitCodes[0] != 0 {
		t.Errorf("exit_codes = %v, want [0]", report.Result.ExitCodes)
	}
}

func TestRender_LogsToErrWriter(t *testing.T) {
	stdout, stderr, err := run(t, "render", "--null", "--width", "16", "--height", "16", "--frames", "2")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout should stay empty, got %q", stdout)
	}
	if stderr == "" {
		t.Error("expected log output on the error writer")
	}
}

func TestInspect_NeedsOneFile(t *testing.T) {
	_, _, err := run(t, "inspect")

	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("expected an exit error, got %v", err)
	}
	if coder.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", coder.ExitCode())
	}
}

func TestInspect_MissingFile(t *testing.T) {
	_, _, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(stdout, "framepipe version dev") {
		t.Errorf("unexpected version output: %q", stdout)
	}
}
