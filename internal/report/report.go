// Package report aggregates the properties of the tests of a run.
package report

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

// Entry is the outcome of one test.
type Entry struct {
	Name       string
	Path       string
	Properties *tensile.Properties
	Err        error
	Duration   time.Duration
}

// Failed reports whether the analysis of the test failed.
func (e Entry) Failed() bool {
	return e.Err != nil || e.Properties == nil
}

// Stat summarises one property over the successful tests. NaN values are skipped.
type Stat struct {
	Name   string
	Symbol string
	Unit   string
	Count  int
	Mean   float64
	// StdDev is the sample standard deviation, NaN with fewer than two values.
	StdDev float64
	Min    float64
	Max    float64
}

// Report collects the entries of a run. It is not safe for concurrent use.
type Report struct {
	RunID   string
	entries []Entry
}

// New creates an empty report.
func New(runID string) *Report {
	return &Report{RunID: runID}
}

// Add appends an entry.
func (r *Report) Add(e Entry) {
	r.entries = append(r.entries, e)
}

// Entries returns the entries sorted by name.
func (r *Report) Entries() []Entry {
	entries := append([]Entry(nil), r.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Succeeded returns the number of successful tests.
func (r *Report) Succeeded() int {
	n := 0
	for _, e := range r.entries {
		if !e.Failed() {
			n++
		}
	}

	return n
}

// Failed returns the entries whose analysis failed, sorted by name.
func (r *Report) Failed() []Entry {
	var failed []Entry
	for _, e := range r.Entries() {
		if e.Failed() {
			failed = append(failed, e)
		}
	}

	return failed
}

// Stats returns the statistics of every property, in the order of tensile.Properties.Rows.
func (r *Report) Stats() []Stat {
	template := (&tensile.Properties{}).Rows()
	values := make([][]float64, len(template))
	for _, e := range r.entries {
		if e.Failed() {
			continue
		}
		for i, row := range e.Properties.Rows() {
			if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
				continue
			}
			values[i] = append(values[i], row.Value)
		}
	}

	stats := make([]Stat, 0, len(template))
	for i, row := range template {
		s := Stat{
			Name:   row.Name,
			Symbol: row.Symbol,
			Unit:   row.Unit,
			Count:  len(values[i]),
			Mean:   math.NaN(),
			StdDev: math.NaN(),
			Min:    math.NaN(),
			Max:    math.NaN(),
		}
		if s.Count > 0 {
			s.Mean = stat.Mean(values[i], nil)
			s.Min = floats.Min(values[i])
			s.Max = floats.Max(values[i])
		}
		if s.Count > 1 {
			s.StdDev = stat.StdDev(values[i], nil)
		}
		stats = append(stats, s)
	}

	return stats
}
