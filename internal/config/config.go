// Package config loads the YAML configuration of the tensile command line.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrConfigExists  = errors.New("configuration file already exists")
)

// Config is the configuration of the analyses.
type Config struct {
	Specimen SpecimenConfig `yaml:"specimen"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	Batch    BatchConfig    `yaml:"batch"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OutputConfig selects the files written for every test and for the run.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Plots     bool   `yaml:"plots"`
	// PlotFormat is the extension of the figures: png, svg or pdf.
	PlotFormat string `yaml:"plot_format"`
	Summary    bool   `yaml:"summary"`
	// Reports lists the aggregate reports of a batch: csv, markdown, html.
	Reports []string `yaml:"reports"`
}

type BatchConfig struct {
	Workers  int  `yaml:"workers"`
	FailFast bool `yaml:"fail_fast"`
	// Graph is the path of a Graphviz DOT file describing the stages of the last run.
	Graph string `yaml:"graph,omitempty"`
}

type StoreConfig struct {
	// Path of the SQLite history, empty to disable it.
	Path string `yaml:"path,omitempty"`
}

type MetricsConfig struct {
	// Textfile is written in the Prometheus text format at the end of a batch.
	Textfile string `yaml:"textfile,omitempty"`
}

type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

type LoggingConfig struct {
	File    string `yaml:"file,omitempty"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		Specimen: SpecimenConfig{
			Shape:    ShapeRound,
			Unit:     UnitMillimetre,
			Length:   75,
			Diameter: 10,
		},
		Columns: ColumnsConfig{
			Force:             "force",
			Displacement:      "displacement",
			Time:              "time",
			Comma:             ",",
			ForceScale:        1,
			DisplacementScale: 1,
		},
		Analysis: defaultAnalysis(),
		Output: OutputConfig{
			Directory:  "run_all_tensile_tests",
			Plots:      true,
			PlotFormat: "png",
			Summary:    true,
			Reports:    []string{ReportCSV, ReportMarkdown},
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load reads the configuration file at path. Values missing from the file keep their default.
// ${VAR} references are expanded, after loading .env and .env.local when they exist.
func Load(path string) (*Config, error) {
	err := loadEnvFiles(".env", ".env.local")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read configuration %s", path)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration %s", path)
	}

	return cfg, nil
}

// Parse decodes a YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFiles loads the files that exist. Variables already set are kept.
func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "unable to load %s", path)
		}
	}

	return nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	_, err := os.Stat(path)
	if err == nil && !force {
		return errors.Wrapf(ErrConfigExists, "%s (use --force to overwrite)", path)
	}

	cfg := Default()
	cfg.Output.Reports = []string{ReportCSV, ReportMarkdown, ReportHTML}
	cfg.Store.Path = "tensile_history.db"
	cfg.Batch.Graph = "run_all_tensile_tests/pipeline.dot"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "unable to encode configuration")
	}

	header := "# Tensile test analysis configuration.\n# Specimen dimensions are in the unit given by specimen.unit (m or mm).\n"
	err = os.WriteFile(path, append([]byte(header), data...), 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return nil
}
