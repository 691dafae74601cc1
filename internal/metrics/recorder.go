// Package metrics records the activity of the analyses.
//
// Components receive a Recorder and default to NoopRecorder when metrics are not configured.
// PrometheusRecorder collects them in a registry that can be written to a node exporter
// textfile at the end of a batch.
package metrics

import "time"

// ResultLabel is the outcome of the analysis of one test.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines the observability hooks of the analyses.
type Recorder interface {
	ObserveAnalysis(d time.Duration, result ResultLabel)
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveAnalysis(time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) SetWorkers(int)                             {}

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
