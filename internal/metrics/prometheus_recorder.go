package metrics

import (
	"time"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "tensile"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	analysisDuration *prom.HistogramVec
	tests            *prom.CounterVec
	stageDuration    *prom.HistogramVec
	runDuration      prom.Histogram
	workers          prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them in reg, a new registry when nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		analysisDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of the analysis of one test, from reading the file to the properties",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		tests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Analysed tests by result",
		}, []string{"result"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Computation time of one element in a pipeline stage",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total duration of a batch run",
			Buckets:   prom.DefBuckets,
		}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of concurrent analyses of the last run",
		}),
	}
	reg.MustRegister(pr.analysisDuration, pr.tests, pr.stageDuration, pr.runDuration, pr.workers)

	return pr
}

func (p *PrometheusRecorder) ObserveAnalysis(d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.analysisDuration.WithLabelValues(string(result)).Observe(d.Seconds())
	p.tests.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}

// WriteTextfile writes the metrics gathered by g in the text format read by the node exporter.
func WriteTextfile(path string, g prom.Gatherer) error {
	err := prom.WriteToTextfile(path, g)
	if err != nil {
		return errors.Wrapf(err, "unable to write metrics to %s", path)
	}

	return nil
}
