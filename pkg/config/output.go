package config

// Default encoding templates.
const (
	DefaultFileVideoTemplate    = "-c:v libx264 -crf 18 -preset superfast -movflags faststart"
	DefaultFileAudioTemplate    = "-c:a aac -b:a 384k"
	DefaultPreviewVideoTemplate = "-c:v copy"
	DefaultPreviewAudioTemplate = "-c:a copy"
)

// OutputConfig selects a sink. The set of variants is closed:
// EncoderFileConfig, PreviewPlayerConfig and NullConfig.
type OutputConfig interface {
	outputConfig()
}

// EncoderFileConfig configures the ffmpeg file sink.
type EncoderFileConfig struct {
	// Path is the output file. Nil writes the encoded stream to stdout.
	Path *string
	// Args are extra raw ffmpeg arguments appended after the templates.
	Args string

	VideoTemplate string
	AudioTemplate string

	// FFmpegPath overrides the ffmpeg binary.
	FFmpegPath string
}

// PreviewPlayerConfig configures the ffmpeg | ffplay preview sink.
type PreviewPlayerConfig struct {
	VideoTemplate string
	AudioTemplate string

	FFmpegPath string
	FFplayPath string
}

// NullConfig configures a sink that discards frames.
type NullConfig struct{}

func (EncoderFileConfig) outputConfig()   {}
func (PreviewPlayerConfig) outputConfig() {}
func (NullConfig) outputConfig()          {}

// NewEncoderFileConfig returns a file sink config with default templates.
// An empty path writes to stdout.
func NewEncoderFileConfig(path string) EncoderFileConfig {
	cfg := EncoderFileConfig{
		VideoTemplate: DefaultFileVideoTemplate,
		AudioTemplate: DefaultFileAudioTemplate,
	}
	if path != "" {
		cfg.Path = &path
	}
	return cfg
}

// NewPreviewPlayerConfig returns a preview config with default templates.
func NewPreviewPlayerConfig() PreviewPlayerConfig {
	return PreviewPlayerConfig{
		VideoTemplate: DefaultPreviewVideoTemplate,
		AudioTemplate: DefaultPreviewAudioTemplate,
	}
}
