package command

import "errors"

// ErrBadTemplate is returned when an argument group cannot be split into words,
// for example because of an unterminated quote.
var ErrBadTemplate = errors.New("command: malformed argument template")
