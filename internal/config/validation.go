package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	ReportCSV      = "csv"
	ReportMarkdown = "markdown"
	ReportHTML     = "html"
)

var plotFormats = map[string]bool{"png": true, "svg": true, "pdf": true, "jpg": true, "eps": true, "tif": true}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	_, err := c.Specimen.Build()
	if err != nil {
		return err
	}

	if c.Columns.Force == "" || c.Columns.Displacement == "" {
		return errors.Wrap(ErrInvalidConfig, "force and displacement columns must be set")
	}
	if utf8.RuneCountInString(c.Columns.Comma) > 1 {
		return errors.Wrapf(ErrInvalidConfig, "comma must be a single character, got %q", c.Columns.Comma)
	}
	if !(c.Columns.ForceScale > 0) || !(c.Columns.DisplacementScale > 0) {
		return errors.Wrap(ErrInvalidConfig, "column scales must be positive")
	}

	err = c.Analysis.Options().Validate()
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if c.Output.Directory == "" {
		return errors.Wrap(ErrInvalidConfig, "output directory must be set")
	}
	c.Output.PlotFormat = strings.TrimPrefix(strings.ToLower(c.Output.PlotFormat), ".")
	if !plotFormats[c.Output.PlotFormat] {
		return errors.Wrapf(ErrInvalidConfig, "unsupported plot format %q", c.Output.PlotFormat)
	}
	for i, report := range c.Output.Reports {
		report = strings.ToLower(report)
		switch report {
		case ReportCSV, ReportMarkdown, ReportHTML:
			c.Output.Reports[i] = report
		default:
			return errors.Wrapf(ErrInvalidConfig, "unknown report %q", report)
		}
	}

	if c.Batch.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "batch workers must be at least 1, got %d", c.Batch.Workers)
	}

	_, err = c.Watch.DebounceDuration()

	return err
}

// DebounceDuration parses the debounce period of the watch mode.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "invalid watch debounce %q", w.Debounce)
	}
	if d < 0 {
		return 0, errors.Wrapf(ErrInvalidConfig, "watch debounce must not be negative, got %s", d)
	}

	return d, nil
}
