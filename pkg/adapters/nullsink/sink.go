// Package nullsink provides a frame sink that discards everything it is given.
// It is used for dry runs and for measuring renderer throughput without
// spawning any process.
package nullsink

import (
	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/pipeline"
	"github.com/user/framepipe/pkg/ports"
)

// Sink is a ports.FrameSink that counts and discards frames.
type Sink struct {
	render   config.RenderConfig
	recorder *metrics.Recorder

	state  pipeline.State
	frames int
	bytes  int64
}

// New creates a Sink that checks frames against render.
func New(render config.RenderConfig, recorder *metrics.Recorder) (*Sink, error) {
	if err := render.Validate(); err != nil {
		return nil, err
	}
	return &Sink{render: render, recorder: recorder, state: pipeline.StateRunning}, nil
}

// WriteFrame discards frame after checking its size.
func (s *Sink) WriteFrame(frame []byte) (ports.WriteResult, error) {
	if s.state != pipeline.StateRunning {
		return ports.Stop, pipeline.ErrClosed
	}
	if err := s.render.CheckFrame(frame); err != nil {
		return ports.Stop, err
	}
	s.frames++
	s.bytes += int64(len(frame))
	s.recorder.FrameWritten(len(frame))
	return ports.Continue, nil
}

// Close ends the sink. There is no process behind it, so a waited close
// always reports a single successful exit.
func (s *Sink) Close(wait bool) (ports.ExitStatus, error) {
	switch s.state {
	case pipeline.StateClosed:
		return ports.ExitStatus{Codes: []int{0}}, nil
	case pipeline.StateTerminated:
		return ports.StatusUnknown, nil
	}
	if !wait {
		s.state = pipeline.StateClosing
		return ports.StatusUnknown, nil
	}
	s.state = pipeline.StateClosed
	return ports.ExitStatus{Codes: []int{0}}, nil
}

// Terminate ends the sink without a status.
func (s *Sink) Terminate() error {
	if s.state == pipeline.StateClosed {
		return nil
	}
	s.state = pipeline.StateTerminated
	return nil
}

// Frames returns the number of frames discarded so far.
func (s *Sink) Frames() int {
	return s.frames
}

// Bytes returns the number of bytes discarded so far.
func (s *Sink) Bytes() int64 {
	return s.bytes
}

// State returns the current lifecycle state.
func (s *Sink) State() pipeline.State {
	return s.state
}

var _ ports.FrameSink = (*Sink)(nil)
