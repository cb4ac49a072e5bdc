// Package output opens the frame sink selected by an OutputConfig and runs
// producers against it with guaranteed shutdown.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/framepipe/pkg/adapters/ffmpegsink"
	"github.com/user/framepipe/pkg/adapters/ffplaysink"
	"github.com/user/framepipe/pkg/adapters/nullsink"
	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/ports"
)

// Options holds the collaborators passed on to the sink. Every field is
// optional.
type Options struct {
	Logger   ports.Logger
	FS       ports.FileSystem
	Recorder *metrics.Recorder

	Stdout io.Writer
	Stderr io.Writer
}

// Open starts the sink described by cfg. The processes behind it are
// running when Open returns.
func Open(render config.RenderConfig, audio *config.AudioConfig, cfg config.OutputConfig, opts Options) (ports.FrameSink, error) {
	switch c := cfg.(type) {
	case config.EncoderFileConfig:
		sink, err := ffmpegsink.New(render, audio, c, ffmpegsink.Options{
			Logger:   opts.Logger,
			FS:       opts.FS,
			Recorder: opts.Recorder,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil

	case config.PreviewPlayerConfig:
		sink, err := ffplaysink.New(render, audio, c, ffplaysink.Options{
			Logger:   opts.Logger,
			FS:       opts.FS,
			Recorder: opts.Recorder,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil

	case config.NullConfig:
		sink, err := nullsink.New(render, opts.Recorder)
		if err != nil {
			return nil, err
		}
		return sink, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownOutput, cfg)
	}
}

// Use runs fn with sink and then shuts the sink down exactly once.
//
// If fn returns nil, the sink is closed and waited for, and the exit status
// is returned. If fn returns an error or panics, the sink is terminated; the
// error (joined with any termination error) is returned, or the panic
// continues after termination.
func Use(sink ports.FrameSink, fn func(ports.FrameSink) error) (ports.ExitStatus, error) {
	return UseContext(context.Background(), sink, func(_ context.Context, s ports.FrameSink) error {
		return fn(s)
	})
}

// UseContext is Use with cancellation: if ctx is done when fn returns, the
// run counts as interrupted and the sink is terminated even if fn returned
// nil.
func UseContext(ctx context.Context, sink ports.FrameSink, fn func(context.Context, ports.FrameSink) error) (ports.ExitStatus, error) {
	finished := false
	defer func() {
		if !finished {
			sink.Terminate()
		}
	}()

	err := fn(ctx, sink)
	if err == nil {
		err = ctx.Err()
	}
	finished = true

	if err != nil {
		if terr := sink.Terminate(); terr != nil {
			return ports.StatusUnknown, errors.Join(err, terr)
		}
		return ports.StatusUnknown, err
	}
	return sink.Close(true)
}
