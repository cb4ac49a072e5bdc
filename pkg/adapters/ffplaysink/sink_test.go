package ffplaysink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/mocks"
	"github.com/user/framepipe/pkg/pipeline"
	"github.com/user/framepipe/pkg/ports"
)

func testRender() config.RenderConfig {
	return config.RenderConfig{Width: 4, Height: 4, FPS: config.NewRational(30000, 1001)}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func fakeConfig(t *testing.T, encoderBody, playerBody string) config.PreviewPlayerConfig {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are shell scripts")
	}
	dir := t.TempDir()
	cfg := config.NewPreviewPlayerConfig()
	cfg.FFmpegPath = writeScript(t, dir, "ffmpeg", encoderBody)
	cfg.FFplayPath = writeScript(t, dir, "ffplay", playerBody)
	return cfg
}

func TestSink_StreamsThroughPlayer(t *testing.T) {
	// The fake encoder passes frames through; the fake player prints them.
	cfg := fakeConfig(t, "cat", "cat")

	var out bytes.Buffer
	sink, err := New(testRender(), nil, cfg, Options{Stdout: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	frame := bytes.Repeat([]byte{7}, testRender().FrameBytes())
	for i := 0; i < 3; i++ {
		if res, err := sink.WriteFrame(frame); err != nil || res != ports.Continue {
			t.Fatalf("WriteFrame %d = %v, %v", i, res, err)
		}
	}

	status, err := sink.Close(true)
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(status.Codes) != 2 || status.Code() != 0 {
		t.Errorf("status = %+v, want two zero codes", status)
	}
	if out.Len() != 3*testRender().FrameBytes() {
		t.Errorf("player received %d bytes", out.Len())
	}
}

func TestSink_PlayerClosedStopsProducer(t *testing.T) {
	// The player exits at once, like a user closing the window.
	cfg := fakeConfig(t, "cat", "exit 0")

	sink, err := New(testRender(), nil, cfg, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	frame := make([]byte, testRender().FrameBytes())
	deadline := time.Now().Add(10 * time.Second)
	stopped := false
	for time.Now().Before(deadline) {
		res, err := sink.WriteFrame(frame)
		if err != nil {
			t.Fatalf("WriteFrame returned error: %v", err)
		}
		if res == ports.Stop {
			stopped = true
			break
		}
	}
	if !stopped {
		t.Fatal("producer was never told to stop")
	}

	status, err := sink.Close(true)
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// cat dies of SIGPIPE writing to the closed player; the player exited 0.
	if len(status.Codes) != 2 || status.Codes[1] != 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestNew_MissingPlayerTearsDownEncoder(t *testing.T) {
	cfg := fakeConfig(t, "cat", "exit 0")
	cfg.FFplayPath = "/nonexistent/bin/ffplay"

	start := time.Now()
	_, err := New(testRender(), nil, cfg, Options{})
	if !errors.Is(err, pipeline.ErrBinaryNotFound) {
		t.Fatalf("expected ErrBinaryNotFound, got %v", err)
	}
	var lerr *pipeline.LaunchError
	if !errors.As(err, &lerr) || lerr.Index != 1 {
		t.Errorf("expected the player to be the failing process, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("teardown of the encoder was slow")
	}
}

func TestCommands(t *testing.T) {
	t.Setenv("FFMPEG_PATH", "")
	t.Setenv("FFPLAY_PATH", "")

	fs := mocks.NewFileSystem()
	fs.Cwd = "/home/user"

	cfg := config.NewPreviewPlayerConfig()
	audio := &config.AudioConfig{Path: "song.ogg", BeginTime: 1500 * time.Millisecond}

	encoder, player, err := Commands(testRender(), audio, cfg, fs)
	if err != nil {
		t.Fatalf("Commands failed: %v", err)
	}

	encArgs, err := encoder.Args()
	if err != nil {
		t.Fatalf("encoder Args failed: %v", err)
	}
	want := []string{
		"ffmpeg", "-nostats",
		"-f", "rawvideo", "-pixel_format", "rgb24", "-video_size", "4x4",
		"-framerate", "30000/1001",
		"-i", "-",
		"-ss", "1.5", "-i", "/home/user/song.ogg",
		"-c:v", "copy", "-c:a", "copy",
		"-f", "nut", "-",
	}
	if strings.Join(encArgs, "|") != strings.Join(want, "|") {
		t.Errorf("encoder argv\n got: %q\nwant: %q", encArgs, want)
	}

	playArgs, _ := player.Args()
	if strings.Join(playArgs, " ") != "ffplay -autoexit -" {
		t.Errorf("player argv = %q", playArgs)
	}
}
