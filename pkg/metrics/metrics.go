// Package metrics records frame sink activity as Prometheus metrics.
//
// A Recorder owns its own registry so that a run can be exported as a
// node_exporter textfile without pulling in the Go runtime collectors.
// All methods are safe to call on a nil *Recorder, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/framepipe/pkg/ports"
)

const namespace = "framepipe"

// Recorder collects sink and process metrics.
type Recorder struct {
	registry *prometheus.Registry

	frames       prometheus.Counter
	bytes        prometheus.Counter
	stops        prometheus.Counter
	spawned      prometheus.Counter
	launchErrors *prometheus.CounterVec
	terminations prometheus.Counter
	kills        prometheus.Counter
	exitCode     prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_written_total",
			Help:      "Frames accepted by the sink.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Raw frame bytes accepted by the sink.",
		}),
		stops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_stops_total",
			Help:      "Writes that ended because the consumer closed its input.",
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processes_started_total",
			Help:      "Child processes started.",
		}),
		launchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launch_errors_total",
			Help:      "Child processes that failed to start, by reason.",
		}, []string{"reason"}),
		terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Pipelines shut down through the terminate path.",
		}),
		kills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processes_killed_total",
			Help:      "Child processes killed after ignoring the terminate signal.",
		}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Combined exit code of the last closed pipeline.",
		}),
	}

	r.registry.MustRegister(
		r.frames,
		r.bytes,
		r.stops,
		r.spawned,
		r.launchErrors,
		r.terminations,
		r.kills,
		r.exitCode,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FrameWritten records one accepted frame of n bytes.
func (r *Recorder) FrameWritten(n int) {
	if r == nil {
		return
	}
	r.frames.Inc()
	r.bytes.Add(float64(n))
}

// PeerGone records a write that returned Stop.
func (r *Recorder) PeerGone() {
	if r == nil {
		return
	}
	r.stops.Inc()
}

// ProcessStarted records a spawned child.
func (r *Recorder) ProcessStarted() {
	if r == nil {
		return
	}
	r.spawned.Inc()
}

// LaunchFailed records a child that could not be started.
func (r *Recorder) LaunchFailed(reason string) {
	if r == nil {
		return
	}
	r.launchErrors.WithLabelValues(reason).Inc()
}

// Terminated records a terminate shutdown that had to kill killed processes.
func (r *Recorder) Terminated(killed int) {
	if r == nil {
		return
	}
	r.terminations.Inc()
	r.kills.Add(float64(killed))
}

// Exited records the exit status of a pipeline.
func (r *Recorder) Exited(status ports.ExitStatus) {
	if r == nil || !status.Known() {
		return
	}
	r.exitCode.Set(float64(status.Code()))
}

// WriteTextfile writes every metric in the Prometheus text format to path,
// atomically, for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
