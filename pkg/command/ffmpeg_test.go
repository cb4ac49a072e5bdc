package command

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/user/framepipe/pkg/config"
)

func testRender() config.RenderConfig {
	return config.RenderConfig{Width: 640, Height: 480, FPS: config.NewRational(30, 1)}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func TestFileEncoder_NoAudioToStdout(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	cfg := config.NewEncoderFileConfig("")
	args, err := FileEncoder(testRender(), nil, cfg, "").Args()
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	want := []string{
		"ffmpeg", "-y",
		"-f", "rawvideo", "-pixel_format", "rgb24", "-video_size", "640x480",
		"-framerate", "30",
		"-i", "-",
		"-c:v", "libx264", "-crf", "18", "-preset", "superfast", "-movflags", "faststart",
		"-",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args mismatch\n got: %q\nwant: %q", args, want)
	}
}

func TestFileEncoder_GroupOrder(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	tests := []struct {
		name       string
		audio      *config.AudioConfig
		wantGroups []string
	}{
		{
			name:  "no audio",
			audio: nil,
			wantGroups: []string{
				"ffmpeg", "-y",
				"-f rawvideo -pixel_format rgb24 -video_size 640x480", "-framerate 30", "-i -",
				"VIDEO", "EXTRA", "/out/video.mp4",
			},
		},
		{
			name:  "audio without end time",
			audio: &config.AudioConfig{Path: "/music/a.flac", BeginTime: 1500 * time.Millisecond},
			wantGroups: []string{
				"ffmpeg", "-y",
				"-f rawvideo -pixel_format rgb24 -video_size 640x480", "-framerate 30", "-i -",
				"-ss 1.5", "-i /music/a.flac",
				"VIDEO", "AUDIO", "EXTRA", "/out/video.mp4",
			},
		},
		{
			name: "audio with end time",
			audio: &config.AudioConfig{
				Path:      "/music/a.flac",
				BeginTime: 2 * time.Second,
				EndTime:   durationPtr(12500 * time.Millisecond),
			},
			wantGroups: []string{
				"ffmpeg", "-y",
				"-f rawvideo -pixel_format rgb24 -video_size 640x480", "-framerate 30", "-i -",
				"-ss 2", "-i /music/a.flac", "-to 10.5",
				"VIDEO", "AUDIO", "EXTRA", "/out/video.mp4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.EncoderFileConfig{
				VideoTemplate: "VIDEO",
				AudioTemplate: "AUDIO",
				Args:          "EXTRA",
			}
			got := FileEncoder(testRender(), tt.audio, cfg, "/out/video.mp4").Groups()
			if !reflect.DeepEqual(got, tt.wantGroups) {
				t.Errorf("groups mismatch\n got: %q\nwant: %q", got, tt.wantGroups)
			}
		})
	}
}

func TestFileEncoder_QuotesPaths(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	audio := &config.AudioConfig{Path: "/music/my song's.flac"}
	cfg := config.NewEncoderFileConfig("/out/my video.mp4")
	args, err := FileEncoder(testRender(), audio, cfg, "/out/my video.mp4").Args()
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	if args[len(args)-1] != "/out/my video.mp4" {
		t.Errorf("destination = %q, want %q", args[len(args)-1], "/out/my video.mp4")
	}

	found := false
	for i, a := range args {
		if a == "-i" && i+1 < len(args) && args[i+1] == "/music/my song's.flac" {
			found = true
		}
	}
	if !found {
		t.Errorf("audio path not preserved as one token: %q", args)
	}
}

func TestFileEncoder_SeekPrecedesAudioInput(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	audio := &config.AudioConfig{Path: "/a.wav", BeginTime: time.Second, EndTime: durationPtr(3 * time.Second)}
	args, err := FileEncoder(testRender(), audio, config.NewEncoderFileConfig(""), "").Args()
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	ss, audioInput, to := -1, -1, -1
	for i, a := range args {
		switch {
		case a == "-ss":
			ss = i
		case a == "-i" && args[i+1] == "/a.wav":
			audioInput = i
		case a == "-to":
			to = i
		}
	}
	if !(ss >= 0 && ss < audioInput && audioInput < to) {
		t.Errorf("expected -ss < -i audio < -to, got positions %d %d %d in %q", ss, audioInput, to, args)
	}
	if args[to+1] != "2" {
		t.Errorf("trim duration = %q, want 2", args[to+1])
	}
}

func TestPreviewEncoder(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	cfg := config.NewPreviewPlayerConfig()
	render := config.RenderConfig{Width: 320, Height: 240, FPS: config.NewRational(30000, 1001)}
	args, err := PreviewEncoder(render, nil, cfg).Args()
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	want := []string{
		"ffmpeg", "-nostats",
		"-f", "rawvideo", "-pixel_format", "rgb24", "-video_size", "320x240",
		"-framerate", "30000/1001",
		"-i", "-",
		"-c:v", "copy",
		"-f", "nut", "-",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args mismatch\n got: %q\nwant: %q", args, want)
	}
}

func TestPreviewEncoder_AudioTemplateOnlyWithAudio(t *testing.T) {
	t.Setenv(FFmpegEnv, "")

	cfg := config.NewPreviewPlayerConfig()
	without := PreviewEncoder(testRender(), nil, cfg).String()
	if strings.Contains(without, "-c:a") {
		t.Errorf("audio template present without audio: %s", without)
	}

	with := PreviewEncoder(testRender(), &config.AudioConfig{Path: "/a.wav"}, cfg).String()
	if !strings.Contains(with, "-c:a copy") {
		t.Errorf("audio template missing with audio: %s", with)
	}
}

func TestPlayer(t *testing.T) {
	t.Setenv(FFplayEnv, "")

	args, err := Player(config.NewPreviewPlayerConfig()).Args()
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}
	want := []string{"ffplay", "-autoexit", "-"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %q, want %q", args, want)
	}
}

func TestResolveBinary(t *testing.T) {
	t.Setenv(FFmpegEnv, "/env/ffmpeg")

	if got := ResolveBinary(FFmpeg, "/custom/ffmpeg", FFmpegEnv); got != "/custom/ffmpeg" {
		t.Errorf("override: got %q", got)
	}
	if got := ResolveBinary(FFmpeg, "", FFmpegEnv); got != "/env/ffmpeg" {
		t.Errorf("env: got %q", got)
	}

	t.Setenv(FFmpegEnv, "")
	if got := ResolveBinary(FFmpeg, "", FFmpegEnv); got != FFmpeg {
		t.Errorf("default: got %q", got)
	}
}

func TestTemplate_AppendDoesNotAlias(t *testing.T) {
	base := New("ffmpeg").Append("-y")
	a := base.Append("a.mp4")
	b := base.Append("b.mp4")

	if got := a.Groups(); !reflect.DeepEqual(got, []string{"ffmpeg", "-y", "a.mp4"}) {
		t.Errorf("a = %q", got)
	}
	if got := b.Groups(); !reflect.DeepEqual(got, []string{"ffmpeg", "-y", "b.mp4"}) {
		t.Errorf("b = %q", got)
	}
	if got := base.Groups(); len(got) != 2 {
		t.Errorf("base modified: %q", got)
	}
}

func TestTemplate_BadQuote(t *testing.T) {
	_, err := New("ffmpeg").Append("-vf 'unterminated").Args()
	if !errors.Is(err, ErrBadTemplate) {
		t.Fatalf("expected ErrBadTemplate, got %v", err)
	}
}

func TestTemplate_StringSkipsEmptyGroups(t *testing.T) {
	tpl := New("ffmpeg").Append("-y", "", "  ", "-")
	if got := tpl.String(); got != "ffmpeg -y -" {
		t.Errorf("String() = %q, want %q", got, "ffmpeg -y -")
	}
}
