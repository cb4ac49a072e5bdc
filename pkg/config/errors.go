package config

import "errors"

var (
	// ErrInvalidConfig is returned when a configuration value breaks an invariant.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrFrameSize is returned when a frame buffer has the wrong length.
	ErrFrameSize = errors.New("config: frame buffer has wrong size")

	// ErrUnknownFormat is returned for config files that are neither YAML nor TOML.
	ErrUnknownFormat = errors.New("config: unknown config file format")
)
