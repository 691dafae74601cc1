package tensile

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Measurements are the raw series recorded by the testing machine.
type Measurements struct {
	Force        []float64
	Displacement []float64
	Time         []float64
}

// Len returns the number of samples.
func (m *Measurements) Len() int {
	return len(m.Force)
}

type readOptions struct {
	forceColumn        string
	displacementColumn string
	timeColumn         string
	forceScale         float64
	displacementScale  float64
	comma              rune
}

func defaultReadOptions() readOptions {
	return readOptions{
		forceColumn:        "force",
		displacementColumn: "displacement",
		timeColumn:         "time",
		forceScale:         1,
		displacementScale:  1,
		comma:              ',',
	}
}

// ReadOption configures ReadCSV.
type ReadOption func(o *readOptions)

// WithColumns sets the header names of the force, displacement and time columns.
// An empty time column means the file has no time column: samples are then numbered 0, 1, 2...
func WithColumns(force, displacement, time string) ReadOption {
	return func(o *readOptions) {
		o.forceColumn = force
		o.displacementColumn = displacement
		o.timeColumn = time
	}
}

// WithForceScale multiplies every force value, e.g. 1000 for a file in kN.
func WithForceScale(scale float64) ReadOption {
	return func(o *readOptions) {
		o.forceScale = scale
	}
}

// WithDisplacementScale multiplies every displacement value, e.g. 1e-3 for a file in mm.
func WithDisplacementScale(scale float64) ReadOption {
	return func(o *readOptions) {
		o.displacementScale = scale
	}
}

// WithComma sets the field delimiter.
func WithComma(comma rune) ReadOption {
	return func(o *readOptions) {
		o.comma = comma
	}
}

// ReadFile reads the measurements stored in a CSV file.
func ReadFile(path string, opts ...ReadOption) (*Measurements, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	m, err := ReadCSV(file, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	return m, nil
}

// ReadCSV reads measurements from CSV data with a header row. Columns are matched by name,
// ignoring case and surrounding spaces, and columns that are not needed are ignored.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Measurements, error) {
	o := defaultReadOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.forceColumn == "" || o.displacementColumn == "" {
		return nil, errors.Wrap(ErrInvalidOption, "force and displacement columns must be named")
	}
	if o.forceScale == 0 || o.displacementScale == 0 {
		return nil, errors.Wrap(ErrInvalidOption, "scales must not be zero")
	}

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrNotEnoughData, "empty file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}

	columns := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		idx, ok := columns[strings.ToLower(name)]
		if !ok {
			return 0, errors.Wrapf(ErrMissingColumn, "%q", name)
		}

		return idx, nil
	}

	forceIdx, err := lookup(o.forceColumn)
	if err != nil {
		return nil, err
	}
	displacementIdx, err := lookup(o.displacementColumn)
	if err != nil {
		return nil, err
	}
	timeIdx := -1
	if o.timeColumn != "" {
		timeIdx, err = lookup(o.timeColumn)
		if err != nil {
			return nil, err
		}
	}

	m := &Measurements{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "unable to read record")
		}

		force, err := parseField(reader, record, forceIdx)
		if err != nil {
			return nil, err
		}
		displacement, err := parseField(reader, record, displacementIdx)
		if err != nil {
			return nil, err
		}
		time := float64(m.Len())
		if timeIdx >= 0 {
			time, err = parseField(reader, record, timeIdx)
			if err != nil {
				return nil, err
			}
		}

		m.Force = append(m.Force, force*o.forceScale)
		m.Displacement = append(m.Displacement, displacement*o.displacementScale)
		m.Time = append(m.Time, time)
	}

	if m.Len() < 2 {
		return nil, errors.Wrapf(ErrNotEnoughData, "%d data rows", m.Len())
	}

	return m, nil
}

func parseField(reader *csv.Reader, record []string, idx int) (float64, error) {
	line, _ := reader.FieldPos(idx)
	value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Wrapf(ErrInvalidValue, "line %d: %q", line, record[idx])
	}

	return value, nil
}
