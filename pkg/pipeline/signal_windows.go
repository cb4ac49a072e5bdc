//go:build windows

package pipeline

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// errNoData is ERROR_NO_DATA: "The pipe is being closed."
const errNoData = syscall.Errno(232)

// signalTerminate asks p to exit. Windows has no SIGTERM for console
// processes, so this is a kill.
func signalTerminate(p *os.Process) error {
	return p.Kill()
}

// isPeerGoneErrno reports whether err is the write error for a pipe whose
// reader has gone away.
func isPeerGoneErrno(err error) bool {
	return errors.Is(err, syscall.ERROR_BROKEN_PIPE) || errors.Is(err, errNoData) || errors.Is(err, syscall.EPIPE)
}

// signalOf always fails on Windows, where processes are not ended by signals.
func signalOf(exitErr *exec.ExitError) (int, bool) {
	return 0, false
}
