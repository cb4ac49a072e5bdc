package command

import (
	"fmt"
	"os"

	"github.com/user/framepipe/pkg/config"
)

// Binary names and the environment variables that override them.
const (
	FFmpeg    = "ffmpeg"
	FFplay    = "ffplay"
	FFmpegEnv = "FFMPEG_PATH"
	FFplayEnv = "FFPLAY_PATH"
)

// Global flags for the two encoder roles.
const (
	FlagOverwrite = "-y"
	FlagNoStats   = "-nostats"
)

// Stdio is the ffmpeg name for standard input or output.
const Stdio = "-"

// PreviewFormat is the container the preview encoder streams to the player.
const PreviewFormat = "nut"

// ResolveBinary returns the program to launch for name.
// Priority: override, then the environment variable env, then name itself,
// which is looked up on PATH at spawn time.
func ResolveBinary(name, override, env string) string {
	if override != "" {
		return override
	}
	if env != "" {
		if p := os.Getenv(env); p != "" {
			return p
		}
	}
	return name
}

// Encoder returns the leading part of every encoder command: the program and
// global flag, the raw video read from stdin, and the master audio input.
//
// The audio seek is placed before the audio input so ffmpeg seeks the input
// rather than discarding decoded output. The audio path is quoted here and is
// expected to be absolute already.
func Encoder(program, globalFlag string, render config.RenderConfig, audio *config.AudioConfig) Template {
	t := New(program).Append(globalFlag)
	t = t.Append(RawVideoInput(render)...)
	if audio != nil {
		t = t.Append(AudioInput(audio)...)
	}
	return t
}

// RawVideoInput describes rgb24 frames of the given size arriving on stdin.
func RawVideoInput(render config.RenderConfig) []string {
	return []string{
		fmt.Sprintf("-f rawvideo -pixel_format %s -video_size %dx%d", config.PixelFormat, render.Width, render.Height),
		fmt.Sprintf("-framerate %s", render.FPS),
		"-i " + Stdio,
	}
}

// AudioInput seeks to BeginTime, opens the audio file and trims it to
// EndTime - BeginTime when an end time is set.
func AudioInput(audio *config.AudioConfig) []string {
	groups := []string{
		"-ss " + config.Seconds(audio.BeginTime),
		"-i " + Quote(audio.Path),
	}
	if dur, ok := audio.Duration(); ok {
		groups = append(groups, "-to "+config.Seconds(dur))
	}
	return groups
}

// Encoding appends the video template and, only when audio is present, the
// audio template.
func Encoding(t Template, video, audio string, hasAudio bool) Template {
	t = t.Append(video)
	if hasAudio {
		t = t.Append(audio)
	}
	return t
}

// FileEncoder builds the ffmpeg command for the file sink. dest is an
// absolute output path, or empty to write to stdout.
func FileEncoder(render config.RenderConfig, audio *config.AudioConfig, cfg config.EncoderFileConfig, dest string) Template {
	program := ResolveBinary(FFmpeg, cfg.FFmpegPath, FFmpegEnv)
	t := Encoder(program, FlagOverwrite, render, audio)
	t = Encoding(t, cfg.VideoTemplate, cfg.AudioTemplate, audio != nil)
	t = t.Append(cfg.Args)

	if dest == "" {
		return t.Append(Stdio)
	}
	return t.Append(Quote(dest))
}

// PreviewEncoder builds the ffmpeg command for the preview sink. It streams
// PreviewFormat to stdout for the player to read.
func PreviewEncoder(render config.RenderConfig, audio *config.AudioConfig, cfg config.PreviewPlayerConfig) Template {
	program := ResolveBinary(FFmpeg, cfg.FFmpegPath, FFmpegEnv)
	t := Encoder(program, FlagNoStats, render, audio)
	t = Encoding(t, cfg.VideoTemplate, cfg.AudioTemplate, audio != nil)
	return t.Append("-f "+PreviewFormat, Stdio)
}

// Player builds the ffplay command that reads the preview stream from stdin
// and exits when the stream ends.
func Player(cfg config.PreviewPlayerConfig) Template {
	program := ResolveBinary(FFplay, cfg.FFplayPath, FFplayEnv)
	return New(program).Append("-autoexit", Stdio)
}
