// Package main provides the CLI entry point for framepipe.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framepipe/pkg/adapters/ffmpegsink"
	"github.com/user/framepipe/pkg/adapters/ffplaysink"
	"github.com/user/framepipe/pkg/adapters/ggrenderer"
	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/adapters/mp4probe"
	"github.com/user/framepipe/pkg/adapters/osfilesystem"
	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/orchestrator"
	"github.com/user/framepipe/pkg/output"
	"github.com/user/framepipe/pkg/ports"
	"github.com/user/framepipe/pkg/summarizer"
)

var version = "dev"

// exitInterrupted is the conventional status for a run ended by SIGINT.
const exitInterrupted = 130

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "framepipe",
		Usage:     l10n.T("Stream rendered frames into ffmpeg and ffplay"),
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		// main reports errors and picks the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  l10n.T("Render the test pattern into a video file, a preview window or nowhere"),
				Flags:  renderFlags(),
				Action: runRender,
			},
			{
				Name:   "args",
				Usage:  l10n.T("Print the commands that render would run"),
				Flags:  renderFlags(),
				Action: runArgs,
			},
			{
				Name:      "inspect",
				Usage:     l10n.T("Show codec, size and duration of an MP4 file"),
				ArgsUsage: "<file.mp4>",
				Action:    runInspect,
			},
		},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("Config file (.yaml, .yml or .toml)")},

		// Output
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Category: l10n.T("Output"), Usage: l10n.T("Output file path (- for stdout)")},
		&cli.BoolFlag{Name: "preview", Category: l10n.T("Output"), Usage: l10n.T("Play the stream in ffplay instead of writing a file")},
		&cli.BoolFlag{Name: "null", Category: l10n.T("Output"), Usage: l10n.T("Discard frames without starting any process")},

		// Render
		&cli.UintFlag{Name: "width", Aliases: []string{"W"}, Category: l10n.T("Render"), Usage: l10n.T("Frame width in pixels (default: 1280)")},
		&cli.UintFlag{Name: "height", Aliases: []string{"H"}, Category: l10n.T("Render"), Usage: l10n.T("Frame height in pixels (default: 720)")},
		&cli.StringFlag{Name: "fps", Aliases: []string{"r"}, Category: l10n.T("Render"), Usage: l10n.T("Frame rate: 30, 29.97 or 30000/1001 (default: 60)")},
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Category: l10n.T("Render"), Usage: l10n.T("Number of frames to render (default: 300)")},
		&cli.StringFlag{Name: "label", Category: l10n.T("Render"), Usage: l10n.T("Caption drawn on every frame")},

		// Audio
		&cli.StringFlag{Name: "audio", Aliases: []string{"a"}, Category: l10n.T("Audio"), Usage: l10n.T("Audio file muxed into the output")},
		&cli.Float64Flag{Name: "audio-begin", Category: l10n.T("Audio"), Usage: l10n.T("Audio start offset in seconds")},
		&cli.Float64Flag{Name: "audio-end", Category: l10n.T("Audio"), Usage: l10n.T("Audio end time in seconds")},

		// Encoding
		&cli.StringFlag{Name: "video-template", Category: l10n.T("Encoding"), Usage: l10n.T("ffmpeg video encoding arguments")},
		&cli.StringFlag{Name: "audio-template", Category: l10n.T("Encoding"), Usage: l10n.T("ffmpeg audio encoding arguments")},
		&cli.StringFlag{Name: "args", Category: l10n.T("Encoding"), Usage: l10n.T("Extra ffmpeg arguments placed before the output")},
		&cli.StringFlag{Name: "ffmpeg", Category: l10n.T("Encoding"), Usage: l10n.T("Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)")},
		&cli.StringFlag{Name: "ffplay", Category: l10n.T("Encoding"), Usage: l10n.T("Path to ffplay (falls back to FFPLAY_PATH env, then PATH)")},

		// Diagnostics
		&cli.BoolFlag{Name: "verify", Category: l10n.T("Diagnostics"), Usage: l10n.T("Probe the written MP4 file after rendering")},
		&cli.StringFlag{Name: "summary", Category: l10n.T("Diagnostics"), Usage: l10n.T("Write a render summary to this file (Markdown, or JSON for .json)")},
		&cli.StringFlag{Name: "metrics-file", Category: l10n.T("Diagnostics"), Usage: l10n.T("Write Prometheus metrics in textfile format")},

		// Logging
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Category: l10n.T("Logging"), Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Category: l10n.T("Logging"), Usage: l10n.T("Suppress all log output")},
	}
}

// buildConfig layers defaults, the config file and explicitly set flags.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("width") {
		cfg.Width = c.Uint("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Uint("height")
	}
	if c.IsSet("fps") {
		fps, err := config.ParseRational(c.String("fps"))
		if err != nil {
			return cfg, err
		}
		cfg.FPS = fps
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("label") {
		cfg.Pattern.Label = c.String("label")
	}

	if c.IsSet("audio") || c.IsSet("audio-begin") || c.IsSet("audio-end") {
		if cfg.Audio == nil {
			cfg.Audio = &config.AudioFileConfig{}
		}
		if c.IsSet("audio") {
			cfg.Audio.Path = c.String("audio")
		}
		if c.IsSet("audio-begin") {
			cfg.Audio.BeginTime = c.Float64("audio-begin")
		}
		if c.IsSet("audio-end") {
			end := c.Float64("audio-end")
			cfg.Audio.EndTime = &end
		}
	}

	kinds := 0
	for _, name := range []string{"output", "preview", "null"} {
		if c.IsSet(name) {
			kinds++
		}
	}
	if kinds > 1 {
		return cfg, fmt.Errorf("%w: --output, --preview and --null are mutually exclusive", config.ErrInvalidConfig)
	}
	switch {
	case c.IsSet("output"):
		cfg.Output.Kind = config.OutputFile
		cfg.Output.Path = c.String("output")
		if cfg.Output.Path == "-" {
			cfg.Output.Path = ""
		}
	case c.Bool("preview"):
		cfg.Output.Kind = config.OutputPreview
	case c.Bool("null"):
		cfg.Output.Kind = config.OutputNull
	}

	if c.IsSet("video-template") {
		cfg.Output.VideoTemplate = c.String("video-template")
	}
	if c.IsSet("audio-template") {
		cfg.Output.AudioTemplate = c.String("audio-template")
	}
	if c.IsSet("args") {
		cfg.Output.Args = c.String("args")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("ffplay") {
		cfg.FFplayPath = c.String("ffplay")
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("verify") {
		cfg.Verify = c.Bool("verify")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if _, err := ports.LookupLogLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger creates the console logger. Logs always go to the error writer
// so that stdout can carry the encoded stream.
func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	level := ports.ParseLogLevel(cfg.LogLevel)
	if c.App.ErrWriter == nil || c.App.ErrWriter == os.Stderr {
		return logger.NewConsole(level)
	}
	return logger.NewConsoleWriter(level, c.App.ErrWriter)
}

// commandLines returns the shell-quoted process commands for cfg, in chain
// order. A null output runs no process.
func commandLines(cfg config.Config, fs ports.FileSystem) ([]string, error) {
	out, err := cfg.OutputConfig()
	if err != nil {
		return nil, err
	}
	render, audio := cfg.Render(), cfg.AudioConfig()

	switch o := out.(type) {
	case config.EncoderFileConfig:
		cmd, _, err := ffmpegsink.Command(render, audio, o, fs)
		if err != nil {
			return nil, err
		}
		return []string{cmd.String()}, nil
	case config.PreviewPlayerConfig:
		encoder, player, err := ffplaysink.Commands(render, audio, o, fs)
		if err != nil {
			return nil, err
		}
		return []string{encoder.String(), player.String()}, nil
	default:
		return nil, nil
	}
}

func runArgs(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	lines, err := commandLines(cfg, osfilesystem.New())
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return cli.Exit(l10n.T("The null output runs no processes"), 1)
	}
	fmt.Fprintln(c.App.Writer, strings.Join(lines, " | "))
	return nil
}

func runRender(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)
	if path := c.String("config"); path != "" {
		log.Debug("Loaded config from %s", path)
	}

	out, err := cfg.OutputConfig()
	if err != nil {
		return err
	}
	render, audio := cfg.Render(), cfg.AudioConfig()
	fs := osfilesystem.New()
	recorder := metrics.NewRecorder()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	commands, err := commandLines(cfg, fs)
	if err != nil {
		return err
	}

	sink, err := output.Open(render, audio, out, output.Options{
		Logger:   log,
		FS:       fs,
		Recorder: recorder,
		Stdout:   c.App.Writer,
		Stderr:   c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	renderer := ggrenderer.New(render, cfg.Frames, cfg.Pattern)
	result, runErr := orchestrator.New(renderer, log).Run(ctx, sink)

	var video *summarizer.VideoInfo
	var verifyErr error
	if runErr == nil && result.Status.Success() && cfg.Verify {
		video, verifyErr = verify(fs, out, render, log)
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Failed to write metrics: %v", err)
		} else {
			log.Debug("Metrics written to %s", cfg.MetricsFile)
		}
	}

	if path := c.String("summary"); path != "" {
		summary := buildSummary(cfg, out, commands, result, runErr, video)
		w := summarizer.NewWriter(summarizer.FormatterFor(path,
			summarizer.WithTranslator(func(key string) string { return l10n.T(key) }),
			summarizer.WithVersion(version),
		), fs)
		if err := w.Write(path, summary); err != nil {
			log.Error("Failed to write summary: %v", err)
		} else {
			log.Info("Summary written to %s", path)
		}
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		return cli.Exit(l10n.T("Interrupted"), exitInterrupted)
	case runErr != nil:
		return runErr
	case verifyErr != nil:
		return verifyErr
	}
	if code := result.Status.Code(); code != 0 {
		return cli.Exit(l10n.F("Processes exited with code %d", code), 1)
	}
	return nil
}

// verify probes the written file. Outputs other than a file on disk are
// skipped.
func verify(fs ports.FileSystem, out config.OutputConfig, render config.RenderConfig, log ports.Logger) (*summarizer.VideoInfo, error) {
	file, ok := out.(config.EncoderFileConfig)
	if !ok || file.Path == nil {
		return nil, nil
	}
	path, err := fs.Abs(*file.Path)
	if err != nil {
		return nil, err
	}

	info, err := mp4probe.New(fs).Probe(path)
	if err != nil {
		log.Error("Verification failed: %v", err)
		return nil, err
	}
	if info.Width != int(render.Width) || info.Height != int(render.Height) {
		err := fmt.Errorf("verify %s: video is %dx%d, rendered %dx%d", path, info.Width, info.Height, render.Width, render.Height)
		log.Error("Verification failed: %v", err)
		return nil, err
	}
	log.Info("Verified %s: %s %dx%d, %d samples, %s", path, info.Codec, info.Width, info.Height, info.Samples, info.Duration)

	video := &summarizer.VideoInfo{
		Codec:      string(info.Codec),
		Width:      info.Width,
		Height:     info.Height,
		Samples:    info.Samples,
		DurationMs: int(info.Duration / time.Millisecond),
		Fragmented: info.Fragmented,
		HasAudio:   info.HasAudio,
	}
	if st, err := os.Stat(path); err == nil {
		video.FileSize = st.Size()
	}
	return video, nil
}

func buildSummary(cfg config.Config, out config.OutputConfig, commands []string, result orchestrator.Result, runErr error, video *summarizer.VideoInfo) *summarizer.Summary {
	settings := summarizer.Settings{
		Width:  int(cfg.Width),
		Height: int(cfg.Height),
		FPS:    cfg.FPS.String(),
		Frames: cfg.Frames,
		Output: cfg.Output.Kind,
	}
	if settings.Output == "" {
		settings.Output = config.OutputFile
	}
	if audio := cfg.AudioConfig(); audio != nil {
		settings.Audio = audio.Path
	}
	if file, ok := out.(config.EncoderFileConfig); ok {
		settings.Destination = "-"
		if file.Path != nil {
			settings.Destination = *file.Path
		}
	}

	b := summarizer.NewBuilder().
		WithSettings(settings).
		WithCommands(commands...).
		WithResult(summarizer.ResultInfo{
			FramesWritten: result.FramesWritten,
			Stopped:       result.Stopped,
			Interrupted:   errors.Is(runErr, context.Canceled),
			ExitCodes:     result.Status.Codes,
			Elapsed:       result.Elapsed,
		})
	if !errors.Is(runErr, context.Canceled) {
		b.WithError(runErr)
	}
	if video != nil {
		b.WithVideo(*video)
	}
	return b.Build()
}

func runInspect(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("inspect needs exactly one MP4 file"), 2)
	}
	info, err := mp4probe.New(osfilesystem.New()).Probe(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "codec:      %s\n", info.Codec)
	fmt.Fprintf(w, "size:       %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(w, "samples:    %d\n", info.Samples)
	fmt.Fprintf(w, "duration:   %s\n", info.Duration)
	fmt.Fprintf(w, "fragmented: %t\n", info.Fragmented)
	fmt.Fprintf(w, "audio:      %t\n", info.HasAudio)
	return nil
}
