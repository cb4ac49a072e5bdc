package output

import "errors"

// ErrUnknownOutput is returned by Open for an OutputConfig it has no sink for.
var ErrUnknownOutput = errors.New("output: unknown output config")
