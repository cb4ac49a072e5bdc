package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

var (
	// ErrBinaryNotFound is returned when an executable cannot be located.
	// The fix is to install the tool or point its *_PATH override at it.
	ErrBinaryNotFound = errors.New("pipeline: executable not found")

	// ErrLaunchFailed is returned when the executable exists but the OS
	// refused to start it.
	ErrLaunchFailed = errors.New("pipeline: failed to start process")

	// ErrTerminationTimeout is returned by Terminate when at least one process
	// ignored the terminate signal for the grace period and had to be killed.
	ErrTerminationTimeout = errors.New("pipeline: process did not exit after terminate signal")

	// ErrNoProcesses is returned when a pipeline is built from no specs.
	ErrNoProcesses = errors.New("pipeline: at least one process is required")

	// ErrClosed is returned when writing to a pipeline that was shut down.
	ErrClosed = errors.New("pipeline: pipeline is closed")
)

// LaunchReason classifies a launch failure.
type LaunchReason int

const (
	// BinaryNotFound means the executable could not be located.
	BinaryNotFound LaunchReason = iota
	// OSRejected means the OS refused to create the process.
	OSRejected
)

// String returns the string representation of the reason.
func (r LaunchReason) String() string {
	switch r {
	case BinaryNotFound:
		return "binary not found"
	case OSRejected:
		return "rejected by OS"
	default:
		return "unknown"
	}
}

// LaunchError reports a process in the chain that could not be started.
type LaunchError struct {
	Program string
	Index   int
	Reason  LaunchReason
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("pipeline: launch %s (process %d): %s: %v", e.Program, e.Index, e.Reason, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Is matches ErrBinaryNotFound or ErrLaunchFailed according to Reason.
func (e *LaunchError) Is(target error) bool {
	switch target {
	case ErrBinaryNotFound:
		return e.Reason == BinaryNotFound
	case ErrLaunchFailed:
		return e.Reason == OSRejected
	}
	return false
}

func newLaunchError(program string, index int, err error) *LaunchError {
	reason := OSRejected
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		reason = BinaryNotFound
	}
	return &LaunchError{Program: program, Index: index, Reason: reason, Err: err}
}

// TimeoutError lists the processes that had to be killed during Terminate.
type TimeoutError struct {
	Killed []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v: killed %s", ErrTerminationTimeout, strings.Join(e.Killed, ", "))
}

func (e *TimeoutError) Unwrap() error {
	return ErrTerminationTimeout
}
