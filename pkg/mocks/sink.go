package mocks

import (
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink.
// Frames are copied and recorded; the Func fields override behaviour.
type FrameSink struct {
	mu sync.Mutex

	WriteFrameFunc func(index int, frame []byte) (ports.WriteResult, error)
	CloseFunc      func(wait bool) (ports.ExitStatus, error)
	TerminateFunc  func() error

	// StopAfter makes WriteFrame return Stop once this many frames were
	// accepted. Zero means never.
	StopAfter int

	Frames         [][]byte
	CloseCalls     []bool
	TerminateCalls int
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink() *FrameSink {
	return &FrameSink{}
}

func (m *FrameSink) WriteFrame(frame []byte) (ports.WriteResult, error) {
	m.mu.Lock()
	index := len(m.Frames)
	m.mu.Unlock()

	if m.WriteFrameFunc != nil {
		res, err := m.WriteFrameFunc(index, frame)
		if err == nil && res == ports.Continue {
			m.record(frame)
		}
		return res, err
	}
	if m.StopAfter > 0 && index >= m.StopAfter {
		return ports.Stop, nil
	}
	m.record(frame)
	return ports.Continue, nil
}

func (m *FrameSink) record(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, append([]byte(nil), frame...))
}

func (m *FrameSink) Close(wait bool) (ports.ExitStatus, error) {
	m.mu.Lock()
	m.CloseCalls = append(m.CloseCalls, wait)
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc(wait)
	}
	if !wait {
		return ports.StatusUnknown, nil
	}
	return ports.ExitStatus{Codes: []int{0}}, nil
}

func (m *FrameSink) Terminate() error {
	m.mu.Lock()
	m.TerminateCalls++
	m.mu.Unlock()
	if m.TerminateFunc != nil {
		return m.TerminateFunc()
	}
	return nil
}

// FrameCount returns the number of accepted frames (for test verification).
func (m *FrameSink) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

var _ ports.FrameSink = (*FrameSink)(nil)
