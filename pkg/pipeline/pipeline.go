// Package pipeline runs a chain of external processes connected
// stdout -> stdin and streams raw frames into the first one.
//
// A Pipeline has two shutdown paths:
//
// Close ends the input stream and, when asked to, waits for every process
// and collects their exit codes. This is the normal path.
//
// Terminate is the abnormal path. It closes the input without waiting or
// flushing, then sends each process a terminate signal and kills any that
// has not exited within TerminateTimeout. Every process is handled before
// an ErrTerminationTimeout is returned.
//
// The first shutdown that completes wins; later calls return its result.
// A Pipeline is meant to be driven by a single goroutine.
//
// A Pipeline that becomes unreachable before any shutdown was started has
// its input closed and its processes terminated by the garbage collector.
package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/user/framepipe/pkg/metrics"
	"github.com/user/framepipe/pkg/ports"
)

// TerminateTimeout is how long Terminate waits for each process after the
// terminate signal before killing it.
const TerminateTimeout = time.Second

// Spec describes one process in the chain.
type Spec struct {
	// Args is the resolved argv; Args[0] is the program.
	Args []string

	// Stdout receives the output of the last process in the chain.
	// Nil inherits os.Stdout. Ignored for every other process, whose
	// stdout feeds the next process.
	Stdout io.Writer

	// Stderr receives the process's diagnostics. Nil inherits os.Stderr.
	Stderr io.Writer
}

// Options configures a Pipeline.
type Options struct {
	// BufferSize is the size of the write buffer in front of the first
	// process's stdin. Zero writes straight through.
	BufferSize int

	// Logger receives lifecycle messages. Nil discards them.
	Logger   ports.Logger
	Recorder *metrics.Recorder
}

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateRunning State = iota
	StateClosing
	StateClosed
	StateTerminating
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Pipeline owns a chain of running processes and the input of the first.
type Pipeline struct {
	procs []*child

	stdin io.WriteCloser
	w     *bufio.Writer

	log      ports.Logger
	recorder *metrics.Recorder

	// orphaned tears the chain down if the Pipeline is dropped unclosed.
	orphaned runtime.Cleanup

	state       State
	inputClosed bool
	inputErr    error
	status      ports.ExitStatus
	err         error
}

// child is a started process plus the reaper that waits on it.
type child struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
	err  error // result of cmd.Wait, valid after done is closed
}

func startReaper(name string, cmd *exec.Cmd) *child {
	c := &child{name: name, cmd: cmd, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		close(c.done)
	}()
	return c
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// New starts every process in specs, connecting the stdout of each to the
// stdin of the next. If any process fails to start, the ones already running
// are killed and reaped before a *LaunchError is returned.
func New(specs []Spec, opts Options) (*Pipeline, error) {
	if len(specs) == 0 {
		return nil, ErrNoProcesses
	}

	log := opts.Logger
	if log == nil {
		log = discard{}
	}

	p := &Pipeline{
		log:      log,
		recorder: opts.Recorder,
	}

	// nextStdin is the read end of the pipe written by the previous process.
	var nextStdin *os.File
	for i, spec := range specs {
		if len(spec.Args) == 0 {
			if nextStdin != nil {
				nextStdin.Close()
			}
			p.abort()
			return nil, fmt.Errorf("pipeline: process %d has an empty command", i)
		}

		cmd := exec.Command(spec.Args[0], spec.Args[1:]...)
		cmd.Stderr = orDefault(spec.Stderr, os.Stderr)
		// Bound the wait for stdio copying when a grandchild keeps a pipe open.
		cmd.WaitDelay = TerminateTimeout

		var stdin io.WriteCloser
		if i == 0 {
			var err error
			stdin, err = cmd.StdinPipe()
			if err != nil {
				return nil, newLaunchError(spec.Args[0], i, err)
			}
		} else {
			cmd.Stdin = nextStdin
		}

		var pipeR, pipeW *os.File
		if i < len(specs)-1 {
			var err error
			pipeR, pipeW, err = os.Pipe()
			if err != nil {
				if nextStdin != nil {
					nextStdin.Close()
				}
				p.abort()
				return nil, newLaunchError(spec.Args[0], i, err)
			}
			cmd.Stdout = pipeW
		} else {
			cmd.Stdout = orDefault(spec.Stdout, os.Stdout)
		}

		err := cmd.Start()

		// The child holds its own copies now. Dropping ours leaves the
		// writer as the only owner of the pipe, so the reader sees EOF when
		// the writer exits.
		if nextStdin != nil {
			nextStdin.Close()
			nextStdin = nil
		}
		if pipeW != nil {
			pipeW.Close()
		}

		if err != nil {
			if pipeR != nil {
				pipeR.Close()
			}
			if stdin != nil {
				stdin.Close()
			}
			lerr := newLaunchError(spec.Args[0], i, err)
			p.recorder.LaunchFailed(lerr.Reason.String())
			p.log.Error("Failed to start %s: %s", spec.Args[0], lerr.Reason)
			p.abort()
			return nil, lerr
		}

		p.log.Debug("Started %s (pid %d): %s", spec.Args[0], cmd.Process.Pid, strings.Join(spec.Args, " "))
		p.recorder.ProcessStarted()
		p.procs = append(p.procs, startReaper(spec.Args[0], cmd))

		if i == 0 {
			p.stdin = stdin
			if opts.BufferSize > 0 {
				p.w = bufio.NewWriterSize(stdin, opts.BufferSize)
			}
		}
		nextStdin = pipeR
	}

	p.state = StateRunning
	p.orphaned = runtime.AddCleanup(p, releaseOrphan, orphan{procs: p.procs, stdin: p.stdin})
	return p, nil
}

// orphan is what a dropped Pipeline leaves behind. It must not refer back
// to the Pipeline, or the Pipeline would never become unreachable.
type orphan struct {
	procs []*child
	stdin io.Closer
}

// releaseOrphan closes the input of a dropped chain and terminates every
// process still running, killing those that outlive TerminateTimeout.
func releaseOrphan(o orphan) {
	if o.stdin != nil {
		o.stdin.Close()
	}
	for _, c := range o.procs {
		if c.exited() {
			continue
		}
		signalTerminate(c.cmd.Process)
		go func(c *child) {
			timer := time.NewTimer(TerminateTimeout)
			defer timer.Stop()
			select {
			case <-c.done:
			case <-timer.C:
				c.cmd.Process.Kill()
			}
		}(c)
	}
}

// discard is the Logger used when Options.Logger is nil.
type discard struct{}

func (discard) Debug(string, ...interface{})        {}
func (discard) Info(string, ...interface{})         {}
func (discard) Warn(string, ...interface{})         {}
func (discard) Error(string, ...interface{})        {}
func (d discard) WithComponent(string) ports.Logger { return d }

func orDefault(w io.Writer, def *os.File) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// abort kills and reaps every process started so far. Used when the chain
// cannot be completed.
func (p *Pipeline) abort() {
	p.closeInput(false)
	for _, c := range p.procs {
		if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.log.Warn("Failed to kill %s: %v", c.name, err)
		}
		<-c.done
	}
	p.state = StateTerminated
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return p.state
}

// Len returns the number of processes in the chain.
func (p *Pipeline) Len() int {
	return len(p.procs)
}

// Pids returns the process ids in chain order.
func (p *Pipeline) Pids() []int {
	pids := make([]int, len(p.procs))
	for i, c := range p.procs {
		pids[i] = c.cmd.Process.Pid
	}
	return pids
}

// WriteFrame writes frame to the first process. It blocks while the OS pipe
// is full. If the process has closed its input or exited, it returns Stop
// and a nil error. Any other failure is returned as an error.
func (p *Pipeline) WriteFrame(frame []byte) (ports.WriteResult, error) {
	if p.state != StateRunning {
		return ports.Stop, ErrClosed
	}

	var err error
	if p.w != nil {
		_, err = p.w.Write(frame)
	} else {
		_, err = p.stdin.Write(frame)
	}

	if err == nil {
		p.recorder.FrameWritten(len(frame))
		return ports.Continue, nil
	}
	if isPeerGone(err) {
		p.log.Debug("Consumer closed its input: %v", err)
		p.recorder.PeerGone()
		return ports.Stop, nil
	}
	return ports.Stop, fmt.Errorf("pipeline: write frame: %w", err)
}

// isPeerGone reports whether err means the reading process has gone away:
// a broken pipe, or a write to a pipe that was already closed.
func isPeerGone(err error) bool {
	return isPeerGoneErrno(err) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// closeInput flushes (optionally) and closes the first process's stdin once.
// Failures caused by the consumer having gone away are ignored.
func (p *Pipeline) closeInput(flush bool) error {
	if p.inputClosed || p.stdin == nil {
		return p.inputErr
	}
	p.inputClosed = true

	if p.w != nil {
		if flush {
			if err := p.w.Flush(); err != nil && !isPeerGone(err) {
				p.inputErr = fmt.Errorf("pipeline: flush input: %w", err)
			}
		} else {
			p.w.Reset(io.Discard)
		}
	}
	if err := p.stdin.Close(); err != nil && !isPeerGone(err) && p.inputErr == nil {
		p.inputErr = fmt.Errorf("pipeline: close input: %w", err)
	}
	return p.inputErr
}

// Close ends the input stream. With wait, it blocks until every process has
// exited and returns their exit codes. Without wait, it returns
// ports.StatusUnknown immediately; a later Close(true) or Terminate still
// completes the shutdown.
func (p *Pipeline) Close(wait bool) (ports.ExitStatus, error) {
	switch p.state {
	case StateClosed, StateTerminated:
		return p.status, p.err
	}

	p.orphaned.Stop()
	inputErr := p.closeInput(true)
	if !wait {
		p.state = StateClosing
		return ports.StatusUnknown, inputErr
	}

	for _, c := range p.procs {
		<-c.done
	}
	p.status = p.collect()
	p.err = inputErr
	p.state = StateClosed
	p.recorder.Exited(p.status)
	p.log.Debug("Processes exited with codes %v", p.status.Codes)
	return p.status, p.err
}

// Terminate shuts the chain down after a failure. It closes the input
// without flushing, then for each process sends a terminate signal, waits up
// to TerminateTimeout, and kills it if it is still running. One hung process
// does not stop the others from being signalled. If any process had to be
// killed, a *TimeoutError wrapping ErrTerminationTimeout is returned after
// the whole chain was handled.
func (p *Pipeline) Terminate() error {
	switch p.state {
	case StateClosed:
		return nil
	case StateTerminated:
		return p.err
	}
	p.state = StateTerminating
	p.orphaned.Stop()

	p.closeInput(false)

	var killed []string
	for _, c := range p.procs {
		if c.exited() {
			continue
		}
		if err := signalTerminate(c.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.log.Warn("Failed to signal %s: %v", c.name, err)
		}

		timer := time.NewTimer(TerminateTimeout)
		select {
		case <-c.done:
			timer.Stop()
		case <-timer.C:
			p.log.Warn("%s did not exit within %s, killing", c.name, TerminateTimeout)
			if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.log.Error("Failed to kill %s: %v", c.name, err)
			}
			<-c.done
			killed = append(killed, fmt.Sprintf("%s (pid %d)", c.name, c.cmd.Process.Pid))
		}
	}

	p.status = p.collect()
	p.state = StateTerminated
	p.recorder.Terminated(len(killed))
	p.recorder.Exited(p.status)

	if len(killed) > 0 {
		p.err = &TimeoutError{Killed: killed}
	}
	return p.err
}

// collect returns the exit codes of every process. All must have exited.
func (p *Pipeline) collect() ports.ExitStatus {
	codes := make([]int, len(p.procs))
	for i, c := range p.procs {
		codes[i] = exitCode(c.err)
	}
	return ports.ExitStatus{Codes: codes}
}

// exitCode extracts the exit code from a Wait error. A process killed by a
// signal reports the negated signal number; errors unrelated to the exit
// status report 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		if sig, ok := signalOf(exitErr); ok {
			return -sig
		}
		return -1
	}
	return 1
}
