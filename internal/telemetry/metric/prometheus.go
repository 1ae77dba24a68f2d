package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yndnr/genback/internal/infra/buildinfo"
)

const namespace = "genback"

// Registry holds all genback metrics on a private registry.
type Registry struct {
	reg *prometheus.Registry

	// Per interval
	Rotations        *prometheus.CounterVec
	RotationFailures *prometheus.CounterVec
	Snapshots        *prometheus.GaugeVec
	LastSuccess      *prometheus.GaugeVec
	RotationDuration *prometheus.GaugeVec
	IntervalsSkipped *prometheus.CounterVec

	// Per run
	RunDuration  prometheus.Gauge
	RunTimestamp prometheus.Gauge
	EpochsTotal  prometheus.Counter
	BuildInfo    *prometheus.GaugeVec
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	r := &Registry{
		reg: reg,

		Rotations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Snapshots published, by interval and allocation mode.",
		}, []string{"interval", "mode"}),

		RotationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_failures_total",
			Help:      "Failed rotations, by interval and error code.",
		}, []string{"interval", "code"}),

		Snapshots: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshots",
			Help:      "Real snapshots currently kept for the interval.",
		}, []string{"interval"}),

		LastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last published snapshot of the interval.",
		}, []string{"interval"}),

		RotationDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rotation_duration_seconds",
			Help:      "Duration of the last rotation of the interval.",
		}, []string{"interval"}),

		IntervalsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_skipped_total",
			Help:      "Intervals evaluated but not due.",
		}, []string{"interval"}),

		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),

		RunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),

		EpochsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epochs_created_total",
			Help:      "Full-backup epochs started.",
		}),

		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information, always 1.",
		}, []string{"version", "commit", "goversion"}),
	}

	bi := buildinfo.Get()
	r.BuildInfo.WithLabelValues(bi.Version, bi.Commit, bi.GoVersion).Set(1)
	return r
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RotationSucceeded records a published snapshot.
func (r *Registry) RotationSucceeded(interval, mode string, snapshots int, took time.Duration) {
	r.Rotations.WithLabelValues(interval, mode).Inc()
	r.Snapshots.WithLabelValues(interval).Set(float64(snapshots))
	r.LastSuccess.WithLabelValues(interval).SetToCurrentTime()
	r.RotationDuration.WithLabelValues(interval).Set(took.Seconds())
}

// RotationFailed records a failed rotation.
func (r *Registry) RotationFailed(interval, code string, took time.Duration) {
	if code == "" {
		code = "unknown"
	}
	r.RotationFailures.WithLabelValues(interval, code).Inc()
	r.RotationDuration.WithLabelValues(interval).Set(took.Seconds())
}

// RotationSkipped records an interval that was not due.
func (r *Registry) RotationSkipped(interval string, snapshots int) {
	r.IntervalsSkipped.WithLabelValues(interval).Inc()
	r.Snapshots.WithLabelValues(interval).Set(float64(snapshots))
}

// RunFinished records the end of a run.
func (r *Registry) RunFinished(took time.Duration) {
	r.RunDuration.Set(took.Seconds())
	r.RunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition
// format. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
