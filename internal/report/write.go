package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

// WriteCSV writes one row per test: name, path, status, error, then every property.
func (r *Report) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"name", "path", "status", "error"}
	for _, row := range (&tensile.Properties{}).Rows() {
		header = append(header, row.Name)
	}
	err := writer.Write(header)
	if err != nil {
		return errors.Wrap(err, "unable to write header")
	}

	for _, e := range r.Entries() {
		record := []string{e.Name, e.Path, "ok", ""}
		if e.Failed() {
			record[2] = "failed"
			if e.Err != nil {
				record[3] = e.Err.Error()
			}
			for range header[4:] {
				record = append(record, "")
			}
		} else {
			for _, row := range e.Properties.Rows() {
				record = append(record, tensile.FormatValue(row.Value))
			}
		}
		err = writer.Write(record)
		if err != nil {
			return errors.Wrapf(err, "unable to write %s", e.Name)
		}
	}
	writer.Flush()

	return errors.Wrap(writer.Error(), "unable to flush report")
}

// mega formats Pa values in MPa and other values as they are.
func mega(v float64, unit string) (string, string) {
	if strings.HasPrefix(unit, "Pa") || unit == "J/m3" {
		return fmt.Sprintf("%.4g", v/1e6), "M" + unit
	}

	return fmt.Sprintf("%.4g", v), unit
}

// WriteMarkdown writes the statistics table, the table of every test and the failures.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Tensile tests\n\n")
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`: ", r.RunID)
	}
	fmt.Fprintf(&b, "%d tests, %d analysed, %d failed.\n\n", len(r.entries), r.Succeeded(), len(r.entries)-r.Succeeded())

	b.WriteString("## Statistics\n\n")
	b.WriteString("| property | symbol | unit | count | mean | std | min | max |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
	for _, s := range r.Stats() {
		mean, unit := mega(s.Mean, s.Unit)
		std, _ := mega(s.StdDev, s.Unit)
		lo, _ := mega(s.Min, s.Unit)
		hi, _ := mega(s.Max, s.Unit)
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %s |\n", s.Name, s.Symbol, unit, s.Count, mean, std, lo, hi)
	}

	b.WriteString("\n## Tests\n\n")
	b.WriteString("| test | E (MPa) | Sy (MPa) | Su (MPa) | A (-) | n (-) |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, e := range r.Entries() {
		if e.Failed() {
			continue
		}
		p := e.Properties
		fmt.Fprintf(&b, "| %s | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			e.Name, p.ElasticModulus/1e6, p.YieldStrength/1e6, p.UltimateStrength/1e6, p.ElongationAfterFracture, p.HardeningExponent)
	}

	failed := r.Failed()
	if len(failed) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, e := range failed {
			msg := "no properties"
			if e.Err != nil {
				msg = e.Err.Error()
			}
			fmt.Fprintf(&b, "- %s: %s\n", e.Name, msg)
		}
	}

	_, err := io.WriteString(w, b.String())

	return errors.Wrap(err, "unable to write markdown report")
}

// WriteHTML renders the markdown report as a standalone HTML page.
func (r *Report) WriteHTML(w io.Writer) error {
	var source bytes.Buffer
	err := r.WriteMarkdown(&source)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	err = md.Convert(source.Bytes(), &body)
	if err != nil {
		return errors.Wrap(err, "unable to render markdown report")
	}

	title := "Tensile tests"
	if r.RunID != "" {
		title += " " + r.RunID
	}
	_, err = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())

	return errors.Wrap(err, "unable to write html report")
}

// Save writes the report to path in format, one of csv, markdown or html.
func (r *Report) Save(path, format string) error {
	var write func(io.Writer) error
	switch format {
	case "csv":
		write = r.WriteCSV
	case "markdown", "md":
		write = r.WriteMarkdown
	case "html":
		write = r.WriteHTML
	default:
		return errors.Errorf("unknown report format %q", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	err = write(file)
	if err != nil {
		_ = file.Close()

		return err
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}

// FileName returns the name of the report file of format.
func FileName(format string) string {
	switch format {
	case "markdown", "md":
		return "report.md"
	default:
		return "report." + format
	}
}
