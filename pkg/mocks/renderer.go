package mocks

import (
	"context"

	"github.com/user/framepipe/pkg/ports"
)

// FrameRenderer is a mock implementation of ports.FrameRenderer.
// By default frame i is FrameSize bytes all set to byte(i).
type FrameRenderer struct {
	Count     int
	FrameSize int

	RenderFrameFunc func(ctx context.Context, index int) ([]byte, error)

	Rendered []int
}

func (m *FrameRenderer) FrameCount() int {
	return m.Count
}

func (m *FrameRenderer) RenderFrame(ctx context.Context, index int) ([]byte, error) {
	m.Rendered = append(m.Rendered, index)
	if m.RenderFrameFunc != nil {
		return m.RenderFrameFunc(ctx, index)
	}
	frame := make([]byte, m.FrameSize)
	for i := range frame {
		frame[i] = byte(index)
	}
	return frame, nil
}

var _ ports.FrameRenderer = (*FrameRenderer)(nil)
