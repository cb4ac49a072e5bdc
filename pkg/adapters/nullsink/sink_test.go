package nullsink

import (
	"errors"
	"testing"

	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/pipeline"
	"github.com/user/framepipe/pkg/ports"
)

func testRender() config.RenderConfig {
	return config.RenderConfig{Width: 4, Height: 2, FPS: config.NewRational(30, 1)}
}

func TestSink_DiscardsFrames(t *testing.T) {
	recorder := metrics.NewRecorder()
	s, err := New(testRender(), recorder)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	frame := make([]byte, 4*2*3)
	for i := 0; i < 5; i++ {
		res, err := s.WriteFrame(frame)
		if err != nil || res != ports.Continue {
			t.Fatalf("WriteFrame %d = %v, %v", i, res, err)
		}
	}

	if s.Frames() != 5 || s.Bytes() != 5*24 {
		t.Errorf("counted %d frames / %d bytes", s.Frames(), s.Bytes())
	}

	status, err := s.Close(true)
	if err != nil || !status.Success() {
		t.Errorf("Close = %+v, %v", status, err)
	}
	if s.State() != pipeline.StateClosed {
		t.Errorf("state = %s", s.State())
	}
	if err := s.Terminate(); err != nil {
		t.Errorf("Terminate after Close = %v", err)
	}
}

func TestSink_RejectsWrongFrameSize(t *testing.T) {
	s, err := New(testRender(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.WriteFrame(make([]byte, 10)); !errors.Is(err, config.ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
}

func TestSink_WriteAfterShutdown(t *testing.T) {
	s, _ := New(testRender(), nil)

	status, err := s.Close(false)
	if err != nil || status.Known() {
		t.Errorf("Close(false) = %+v, %v", status, err)
	}
	if _, err := s.WriteFrame(make([]byte, 24)); !errors.Is(err, pipeline.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	if err := s.Terminate(); err != nil {
		t.Errorf("Terminate = %v", err)
	}
	if s.State() != pipeline.StateTerminated {
		t.Errorf("state = %s, want terminated", s.State())
	}
	if status, _ := s.Close(true); status.Known() {
		t.Errorf("Close after Terminate returned %+v", status)
	}
}

func TestNew_InvalidRender(t *testing.T) {
	if _, err := New(config.RenderConfig{}, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
