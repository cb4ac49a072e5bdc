// Package summarizer provides summary generation for render results.
package summarizer

import "time"

// Summary contains all data collected during a render.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`

	// Render settings
	Settings Settings `json:"settings"`

	// Resolved process command lines, in chain order
	Commands []string `json:"commands,omitempty"`

	// Outcome of the run
	Result ResultInfo `json:"result"`

	// Probed output file, if any
	Video *VideoInfo `json:"video,omitempty"`
}

// Settings contains the render configuration.
type Settings struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	FPS    string `json:"fps"`
	Frames int    `json:"frames"`

	// Audio is the source file muxed into the output ("" for none).
	Audio string `json:"audio,omitempty"`

	// Output kind (file, preview, null) and destination ("-" for stdout).
	Output      string `json:"output"`
	Destination string `json:"destination,omitempty"`
}

// ResultInfo describes how the run ended.
type ResultInfo struct {
	FramesWritten int    `json:"frames_written"`
	Stopped       bool   `json:"stopped"`
	Interrupted   bool   `json:"interrupted"`
	Error         string `json:"error,omitempty"`

	// ExitCodes holds one code per process; nil when not collected.
	ExitCodes []int         `json:"exit_codes"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Codec      string `json:"codec"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Samples    int    `json:"samples"`
	DurationMs int    `json:"duration_ms"`
	FileSize   int64  `json:"file_size"`
	Fragmented bool   `json:"fragmented"`
	HasAudio   bool   `json:"has_audio"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets render settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithCommands sets the process command lines.
func (b *Builder) WithCommands(commands ...string) *Builder {
	b.summary.Commands = append(b.summary.Commands, commands...)
	return b
}

// WithResult sets the outcome of the run.
func (b *Builder) WithResult(result ResultInfo) *Builder {
	b.summary.Result = result
	return b
}

// WithError records the error that ended the run.
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.summary.Result.Error = err.Error()
	}
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = &video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
