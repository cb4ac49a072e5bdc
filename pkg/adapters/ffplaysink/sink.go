// Package ffplaysink provides a frame sink that previews raw frames live:
// ffmpeg muxes them into a nut stream that ffplay reads from a pipe.
package ffplaysink

import (
	"fmt"
	"io"

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

	// Stdout receives whatever the player prints. Nil inherits os.Stdout.
	Stdout io.Writer
	// Stderr receives the diagnostics of both processes. Nil inherits os.Stderr.
	Stderr io.Writer
}

// Sink streams frames through ffmpeg into ffplay.
type Sink struct {
	render  config.RenderConfig
	encoder command.Template
	player  command.Template
	p       *pipeline.Pipeline
}

// Commands builds the encoder and player commands without starting
// anything. A relative audio path is made absolute through fs.
func Commands(render config.RenderConfig, audio *config.AudioConfig, cfg config.PreviewPlayerConfig, fs ports.FileSystem) (encoder, player command.Template, err error) {
	if err := render.Validate(); err != nil {
		return command.Template{}, command.Template{}, err
	}
	if err := audio.Validate(); err != nil {
		return command.Template{}, command.Template{}, err
	}
	if fs == nil {
		fs = osfilesystem.New()
	}

	if audio != nil {
		abs, err := fs.Abs(audio.Path)
		if err != nil {
			return command.Template{}, command.Template{}, fmt.Errorf("ffplaysink: resolve audio path: %w", err)
		}
		resolved := *audio
		resolved.Path = abs
		audio = &resolved
	}

	return command.PreviewEncoder(render, audio, cfg), command.Player(cfg), nil
}

// New starts the encoder and the player. If the player cannot be started
// the encoder is torn down before the error is returned.
func New(render config.RenderConfig, audio *config.AudioConfig, cfg config.PreviewPlayerConfig, opts Options) (*Sink, error) {
	log := logger.OrNoop(opts.Logger)

	encoder, player, err := Commands(render, audio, cfg, opts.FS)
	if err != nil {
		return nil, err
	}
	encoderArgs, err := encoder.Args()
	if err != nil {
		return nil, err
	}
	playerArgs, err := player.Args()
	if err != nil {
		return nil, err
	}

	log.Info("Previewing %dx%d at %s fps", render.Width, render.Height, render.FPS)

	p, err := pipeline.New([]pipeline.Spec{
		{Args: encoderArgs, Stderr: opts.Stderr},
		{Args: playerArgs, Stdout: opts.Stdout, Stderr: opts.Stderr},
	}, pipeline.Options{
		BufferSize: render.BufferBytes(),
		Logger:     log.WithComponent("pipeline"),
		Recorder:   opts.Recorder,
	})
	if err != nil {
		return nil, err
	}

	return &Sink{
		render:  render,
		encoder: encoder,
		player:  player,
		p:       p,
	}, nil
}

// WriteFrame sends one frame to the encoder. Closing the player window ends
// the chain, which shows up here as Stop.
func (s *Sink) WriteFrame(frame []byte) (ports.WriteResult, error) {
	if err := s.render.CheckFrame(frame); err != nil {
		return ports.Stop, err
	}
	return s.p.WriteFrame(frame)
}

// Close ends the stream; with wait it returns the exit status of both
// processes.
func (s *Sink) Close(wait bool) (ports.ExitStatus, error) {
	return s.p.Close(wait)
}

// Terminate stops both processes.
func (s *Sink) Terminate() error {
	return s.p.Terminate()
}

// Commands returns the encoder and player commands.
func (s *Sink) Commands() (encoder, player command.Template) {
	return s.encoder, s.player
}

// State returns the lifecycle state of the chain.
func (s *Sink) State() pipeline.State {
	return s.p.State()
}

var _ ports.FrameSink = (*Sink)(nil)
