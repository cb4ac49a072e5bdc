// Package summarizer provides summary generation for render results.
package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Formatter renders a Summary into report text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a plain function to Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders a Summary as indented JSON for scripts and CI.
type JSONFormatter struct{}

func (JSONFormatter) Format(summary *Summary) string {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		// Summary holds only plain values; this cannot fail.
		panic(err)
	}
	return string(data) + "\n"
}

// FormatterFor picks the formatter by the extension of path: .json gets
// JSON, anything else Markdown configured with opts.
func FormatterFor(path string, opts ...MarkdownOption) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter{}
	}
	return NewMarkdownFormatter(opts...)
}
