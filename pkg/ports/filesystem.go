package ports

// FileSystem is the disk access used by the sinks, the output probe and
// the report writers.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the file at path, creating parent directories.
	// Implementations should not expose a partially written file.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error

	// Exists reports whether path exists. A missing path is not an error.
	Exists(path string) (bool, error)

	// Abs resolves path against the working directory.
	Abs(path string) (string, error)
}
