// Package orchestrator drives a frame renderer into a frame sink.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/output"
	"github.com/user/framepipe/pkg/ports"
)

// DefaultProgressInterval is how many frames pass between progress messages.
const DefaultProgressInterval = 60

// Orchestrator renders frames in order and writes each one to a sink.
type Orchestrator struct {
	renderer ports.FrameRenderer
	logger   ports.Logger

	// ProgressInterval is how many frames pass between debug progress
	// messages. Zero disables them.
	ProgressInterval int
}

// New creates a new Orchestrator.
func New(renderer ports.FrameRenderer, log ports.Logger) *Orchestrator {
	return &Orchestrator{
		renderer:         renderer,
		logger:           logger.OrNoop(log),
		ProgressInterval: DefaultProgressInterval,
	}
}

// Result describes a finished run.
type Result struct {
	// FramesWritten counts the frames the sink accepted.
	FramesWritten int
	// Stopped is true when the consumer went away before the last frame.
	Stopped bool
	// Status is the exit status of the sink's processes. It is unknown
	// when the run ended abnormally.
	Status ports.ExitStatus
	// Elapsed is the wall time from the first frame to shutdown.
	Elapsed time.Duration
}

// Run renders every frame into sink and shuts the sink down. A render or
// write error, a panic, or cancellation of ctx terminates the sink; otherwise
// it is closed and its exit status is reported in the result.
//
// Run owns sink from the moment it is called.
func (o *Orchestrator) Run(ctx context.Context, sink ports.FrameSink) (Result, error) {
	var result Result
	total := o.renderer.FrameCount()
	start := time.Now()

	o.logger.Info("Rendering %d frames", total)

	status, err := output.UseContext(ctx, sink, func(ctx context.Context, s ports.FrameSink) error {
		for i := 0; i < total; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			frame, err := o.renderer.RenderFrame(ctx, i)
			if err != nil {
				return fmt.Errorf("render frame %d: %w", i, err)
			}

			res, err := s.WriteFrame(frame)
			if err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
			if res == ports.Stop {
				result.Stopped = true
				o.logger.Warn("Consumer stopped after %d frames", result.FramesWritten)
				return nil
			}
			result.FramesWritten++

			if o.ProgressInterval > 0 && result.FramesWritten%o.ProgressInterval == 0 {
				o.logger.Debug("Rendered frame %d/%d", result.FramesWritten, total)
			}
		}
		return nil
	})

	result.Status = status
	result.Elapsed = time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.logger.Warn("Interrupted after %d frames", result.FramesWritten)
		} else {
			o.logger.Error("Render failed: %v", err)
		}
		return result, err
	}

	if code := status.Code(); code != 0 {
		o.logger.Warn("Processes exited with code %d", code)
	}
	o.logger.Info("Finished %d frames in %s", result.FramesWritten, result.Elapsed.Round(time.Millisecond))
	return result, nil
}
