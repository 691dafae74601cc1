package batch_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/config"
	"github.com/askiada/mechanical-testing/internal/metrics"
)

// writeTestFile writes a recording of a steel specimen of the default configuration, linear
// elastic up to 400 MPa then hardening up to 560 MPa, scaled by factor.
func writeTestFile(t *testing.T, dir, name string, factor float64) string {
	t.Helper()

	cfg := config.Default()
	specimen, err := cfg.Specimen.Build()
	require.NoError(t, err)

	var b strings.Builder
	b.WriteString("time,displacement,force\n")
	for i := 0; i <= 300; i++ {
		var strain, stress float64
		if i <= 100 {
			strain = float64(i) * 2e-5
			stress = 200e9 * strain
		} else {
			strain = 0.002 + float64(i-100)*5e-4
			stress = 400e6 + 1.6e9*(strain-0.002)
		}
		fmt.Fprintf(&b, "%g,%g,%g\n", float64(i)*0.1, strain*specimen.GaugeLength(), factor*stress*specimen.Area())
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	return path
}

func writeBrokenFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("time,load\n0,1\n1,2\n"), 0o600))

	return path
}

func newAnalyzer(t *testing.T, outputDir string, recorder metrics.Recorder) *batch.Analyzer {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Directory = outputDir
	settings, err := batch.SettingsFromConfig(cfg)
	require.NoError(t, err)

	analyzer, err := batch.NewAnalyzer(settings, recorder)
	require.NoError(t, err)

	return analyzer
}
