// Package metrics exports chart persistence and interchange telemetry.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for history and interchange operations.
type Observer interface {
	// RecordMirror tracks one snapshot write of size tasks.
	RecordMirror(duration time.Duration, tasks int, err error)
	// RecordEvictions counts history entries dropped by the retention window.
	RecordEvictions(n int)
	// RecordLoad notes which source a startup load was satisfied from.
	RecordLoad(source string)
	// RecordImport tracks an import decoded by tier.
	RecordImport(tier string, tasks int, err error)
	// RecordExport tracks one workbook export.
	RecordExport(duration time.Duration, err error)
}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nopObserver{} }

// PrometheusObserver exports metrics to Prometheus.
type PrometheusObserver struct {
	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	mirrored   prometheus.Gauge
	evictions  prometheus.Counter
	loads      *prometheus.CounterVec
	imports    *prometheus.CounterVec
	importSize prometheus.Histogram
}

// NewPrometheusObserver registers gantt metrics under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "gantt"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of snapshot writes and exports.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed mirror, import and export operations.",
		}, []string{"operation"}),
		mirrored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_tasks",
			Help:      "Number of tasks in the most recently mirrored snapshot.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_evictions_total",
			Help:      "History entries dropped by the retention window.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Startup loads by the source that satisfied them.",
		}, []string{"source"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Successful imports by decode tier.",
		}, []string{"tier"}),
		importSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_tasks",
			Help:      "Tasks recovered per successful import.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	collectors := []prometheus.Collector{o.duration, o.errors, o.mirrored, o.evictions, o.loads, o.imports, o.importSize}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register gantt metric: %w", err)
		}
	}
	return o, nil
}

func (o *PrometheusObserver) RecordMirror(duration time.Duration, tasks int, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("mirror").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("mirror").Inc()
		return
	}
	o.mirrored.Set(float64(tasks))
}

func (o *PrometheusObserver) RecordEvictions(n int) {
	if o == nil || n <= 0 {
		return
	}
	o.evictions.Add(float64(n))
}

func (o *PrometheusObserver) RecordLoad(source string) {
	if o == nil {
		return
	}
	o.loads.WithLabelValues(source).Inc()
}

func (o *PrometheusObserver) RecordImport(tier string, tasks int, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.errors.WithLabelValues("import").Inc()
		return
	}
	o.imports.WithLabelValues(tier).Inc()
	o.importSize.Observe(float64(tasks))
}

func (o *PrometheusObserver) RecordExport(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("export").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("export").Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordMirror(time.Duration, int, error) {}

func (nopObserver) RecordEvictions(int) {}

func (nopObserver) RecordLoad(string) {}

func (nopObserver) RecordImport(string, int, error) {}

func (nopObserver) RecordExport(time.Duration, error) {}
