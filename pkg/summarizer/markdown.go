package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// Translator maps an English label to a localized one.
type Translator func(key string) string

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate Translator
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the label translator.
func WithTranslator(t Translator) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion sets the version shown in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(key string) string { return key },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	row(&b, t("Output"), s.Settings.Output)
	if s.Settings.Destination != "" {
		row(&b, t("Destination"), s.Settings.Destination)
	}
	row(&b, t("Frame Size"), fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height))
	row(&b, t("Frame Rate"), s.Settings.FPS+" fps")
	row(&b, t("Frames"), fmt.Sprintf("%d", s.Settings.Frames))
	audio := s.Settings.Audio
	if audio == "" {
		audio = t("None")
	}
	row(&b, t("Audio"), audio)
	b.WriteString("\n")

	if len(s.Commands) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Commands"))
		b.WriteString("```sh\n")
		for _, c := range s.Commands {
			b.WriteString(c)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Result"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	row(&b, t("Frames Written"), fmt.Sprintf("%d / %d", s.Result.FramesWritten, s.Settings.Frames))
	row(&b, t("Elapsed"), s.Result.Elapsed.Round(time.Millisecond).String())
	row(&b, t("Exit Codes"), f.exitCodes(s.Result.ExitCodes))
	switch {
	case s.Result.Error != "":
		row(&b, t("Status"), t("Failed")+": "+s.Result.Error)
	case s.Result.Interrupted:
		row(&b, t("Status"), t("Interrupted"))
	case s.Result.Stopped:
		row(&b, t("Status"), t("Stopped by consumer"))
	default:
		row(&b, t("Status"), t("Completed"))
	}
	b.WriteString("\n")

	if v := s.Video; v != nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Video"))
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
		row(&b, t("Codec"), v.Codec)
		row(&b, t("Video Size"), fmt.Sprintf("%dx%d", v.Width, v.Height))
		row(&b, t("Samples"), fmt.Sprintf("%d", v.Samples))
		row(&b, t("Duration"), fmt.Sprintf("%d ms", v.DurationMs))
		row(&b, t("File Size"), formatBytes(v.FileSize))
		row(&b, t("Fragmented"), f.yesNo(v.Fragmented))
		row(&b, t("Audio Track"), f.yesNo(v.HasAudio))
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (framepipe %s)", f.version)
	}
	b.WriteString(footer)
	b.WriteString("\n")

	return b.String()
}

func (f *MarkdownFormatter) exitCodes(codes []int) string {
	if codes == nil {
		return f.translate("Unknown")
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ", ")
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", key, value)
}

// formatBytes formats a byte count using binary units.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
