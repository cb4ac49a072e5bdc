// Package ffmpegsink provides a frame sink that encodes raw frames to a file,
// or to stdout, with a single ffmpeg process.
package ffmpegsink

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/adapters/osfilesystem"
	"github.com/user/framepipe/pkg/command"
	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/pipeline"
	"github.com/user/framepipe/pkg/ports"
)

// Options holds the collaborators of a Sink. Every field is optional.
type Options struct {
	Logger   ports.Logger
	FS       ports.FileSystem
	Recorder *metrics.Recorder

	// Stdout receives the encoded stream when the config has no path.
	// Nil inherits os.Stdout.
	Stdout io.Writer
	// Stderr receives ffmpeg's diagnostics. Nil inherits os.Stderr.
	Stderr io.Writer
}

// Sink streams rgb24 frames into ffmpeg, which encodes them to the
// configured destination.
type Sink struct {
	render config.RenderConfig
	cmd    command.Template
	args   []string
	dest   string
	p      *pipeline.Pipeline
}

// Command builds the encoder command without starting anything. Relative
// output and audio paths are made absolute through fs.
func Command(render config.RenderConfig, audio *config.AudioConfig, cfg config.EncoderFileConfig, fs ports.FileSystem) (command.Template, string, error) {
	if err := render.Validate(); err != nil {
		return command.Template{}, "", err
	}
	if err := audio.Validate(); err != nil {
		return command.Template{}, "", err
	}
	if fs == nil {
		fs = osfilesystem.New()
	}

	if audio != nil {
		abs, err := fs.Abs(audio.Path)
		if err != nil {
			return command.Template{}, "", fmt.Errorf("ffmpegsink: resolve audio path: %w", err)
		}
		resolved := *audio
		resolved.Path = abs
		audio = &resolved
	}

	var dest string
	if cfg.Path != nil {
		abs, err := fs.Abs(*cfg.Path)
		if err != nil {
			return command.Template{}, "", fmt.Errorf("ffmpegsink: resolve output path: %w", err)
		}
		dest = abs
	}

	return command.FileEncoder(render, audio, cfg, dest), dest, nil
}

// New starts ffmpeg for the given render and output settings. The parent
// directory of the output file is created first.
func New(render config.RenderConfig, audio *config.AudioConfig, cfg config.EncoderFileConfig, opts Options) (*Sink, error) {
	fs := opts.FS
	if fs == nil {
		fs = osfilesystem.New()
	}
	log := logger.OrNoop(opts.Logger)

	cmd, dest, err := Command(render, audio, cfg, fs)
	if err != nil {
		return nil, err
	}
	args, err := cmd.Args()
	if err != nil {
		return nil, err
	}

	if dest != "" {
		if err := fs.MkdirAll(filepath.Dir(dest)); err != nil {
			return nil, fmt.Errorf("ffmpegsink: create output directory: %w", err)
		}
		log.Info("Encoding %dx%d at %s fps to %s", render.Width, render.Height, render.FPS, dest)
	} else {
		log.Info("Encoding %dx%d at %s fps to stdout", render.Width, render.Height, render.FPS)
	}

	p, err := pipeline.New([]pipeline.Spec{{
		Args:   args,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}}, pipeline.Options{
		BufferSize: render.BufferBytes(),
		Logger:     log.WithComponent("pipeline"),
		Recorder:   opts.Recorder,
	})
	if err != nil {
		return nil, err
	}

	return &Sink{
		render: render,
		cmd:    cmd,
		args:   args,
		dest:   dest,
		p:      p,
	}, nil
}

// WriteFrame sends one frame to ffmpeg. Frames of the wrong size are
// rejected with config.ErrFrameSize.
func (s *Sink) WriteFrame(frame []byte) (ports.WriteResult, error) {
	if err := s.render.CheckFrame(frame); err != nil {
		return ports.Stop, err
	}
	return s.p.WriteFrame(frame)
}

// Close ends the stream; with wait it returns ffmpeg's exit status.
func (s *Sink) Close(wait bool) (ports.ExitStatus, error) {
	return s.p.Close(wait)
}

// Terminate stops ffmpeg without waiting for it to finish the file.
func (s *Sink) Terminate() error {
	return s.p.Terminate()
}

// Args returns the argv ffmpeg was started with.
func (s *Sink) Args() []string {
	return append([]string(nil), s.args...)
}

// Command returns the argument groups ffmpeg was started with.
func (s *Sink) Command() command.Template {
	return s.cmd
}

// Destination returns the absolute output path, or "" for stdout.
func (s *Sink) Destination() string {
	return s.dest
}

// State returns the lifecycle state of the process.
func (s *Sink) State() pipeline.State {
	return s.p.State()
}

var _ ports.FrameSink = (*Sink)(nil)
