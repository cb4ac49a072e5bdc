// Package command builds the argument lists for the external encoder and
// player processes.
//
// A Template is an ordered list of argument groups. Each group is a string
// in shell syntax and is split into tokens only when the final argv is
// produced, so a group such as "-c:v libx264 -crf 18" stays readable in
// configuration. Paths must be quoted with Quote before they are added.
package command

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Template is an immutable sequence of argument groups.
// Appending returns a new Template and never modifies the receiver.
type Template struct {
	groups []string
}

// New returns a Template whose first group is program.
func New(program string) Template {
	return Template{groups: []string{Quote(program)}}
}

// Append returns a copy of t with groups added at the end.
func (t Template) Append(groups ...string) Template {
	next := make([]string, 0, len(t.groups)+len(groups))
	next = append(next, t.groups...)
	next = append(next, groups...)
	return Template{groups: next}
}

// Groups returns a copy of the argument groups.
func (t Template) Groups() []string {
	return append([]string(nil), t.groups...)
}

// Args splits every group with shell word splitting and returns the flat argv.
func (t Template) Args() ([]string, error) {
	var args []string
	for _, group := range t.groups {
		words, err := shellquote.Split(group)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadTemplate, group, err)
		}
		args = append(args, words...)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrBadTemplate)
	}
	return args, nil
}

// String returns the non-empty groups joined by spaces, as a shell would
// read them.
func (t Template) String() string {
	parts := make([]string, 0, len(t.groups))
	for _, group := range t.groups {
		if strings.TrimSpace(group) != "" {
			parts = append(parts, group)
		}
	}
	return strings.Join(parts, " ")
}

// Quote quotes s so that it survives shell word splitting as one token.
func Quote(s string) string {
	return shellquote.Join(s)
}
