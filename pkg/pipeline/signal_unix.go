//go:build !windows

package pipeline

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// signalTerminate asks p to exit.
func signalTerminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// isPeerGoneErrno reports whether err is the write error for a pipe whose
// reader has gone away.
func isPeerGoneErrno(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

// signalOf returns the signal that killed the process, if any.
func signalOf(exitErr *exec.ExitError) (int, bool) {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return int(ws.Signal()), true
}
