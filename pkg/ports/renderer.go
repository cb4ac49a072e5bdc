package ports

import "context"

// FrameRenderer produces raw frames for a sink.
type FrameRenderer interface {
	// FrameCount returns the number of frames the renderer will produce.
	FrameCount() int

	// RenderFrame returns frame index as a width*height*3 rgb24 buffer.
	// The returned slice must not be modified by the caller.
	RenderFrame(ctx context.Context, index int) ([]byte, error)
}
