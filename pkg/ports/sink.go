package ports

// WriteResult tells the frame producer whether to keep going.
type WriteResult int

const (
	// Continue means the frame was accepted and the next one may follow.
	Continue WriteResult = iota
	// Stop means the consumer went away (closed its input or exited).
	// The producer must end its loop; this is not an error.
	Stop
)

// String returns the string representation of the write result.
func (r WriteResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// ExitStatus reports how the processes behind a sink exited.
type ExitStatus struct {
	// Codes holds one exit code per process in chain order.
	// It is nil when exit codes were not collected.
	Codes []int
}

// StatusUnknown is returned by a close that did not wait for its processes.
var StatusUnknown = ExitStatus{}

// Known reports whether exit codes were collected.
func (s ExitStatus) Known() bool {
	return s.Codes != nil
}

// Code returns the bitwise OR of every exit code.
// It is 0 only when every process exited 0, and 0 for an unknown status.
func (s ExitStatus) Code() int {
	code := 0
	for _, c := range s.Codes {
		code |= c
	}
	return code
}

// Success reports whether every process was observed to exit 0.
func (s ExitStatus) Success() bool {
	return s.Known() && s.Code() == 0
}

// FrameSink accepts raw rgb24 frames and forwards them to an external consumer.
type FrameSink interface {
	// WriteFrame writes one frame. It blocks until the consumer accepts the
	// bytes. A consumer that has gone away yields Stop with a nil error.
	WriteFrame(frame []byte) (WriteResult, error)

	// Close ends the input stream. With wait it blocks until every process
	// has exited and returns their exit codes; without wait it returns
	// StatusUnknown immediately.
	Close(wait bool) (ExitStatus, error)

	// Terminate is the abnormal shutdown path: close without waiting, then
	// signal and if necessary kill every process.
	Terminate() error
}
