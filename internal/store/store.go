// Package store keeps the history of the analysed tests in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

var ErrUnknownRun = errors.New("unknown run")

// Record is one analysed test.
type Record struct {
	RunID      string
	Name       string
	Path       string
	AnalysedAt time.Time
	Duration   time.Duration
	// Err is the message of the failed analysis, empty on success.
	Err string
	// Properties is nil when the analysis failed.
	Properties *tensile.Properties
}

// SQLiteStore stores runs and their records.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
	// columns are the property names, in the order of tensile.Properties.Rows.
	columns []string
}

// Open opens or creates the database at path. Use ":memory:" for an in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite database")
	}
	// a single connection keeps ":memory:" databases alive and serialises the writes
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	for _, row := range (&tensile.Properties{}).Rows() {
		s.columns = append(s.columns, row.Name)
	}

	err = s.initialize()
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "unable to initialize schema")
	}

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	var properties strings.Builder
	for _, column := range s.columns {
		fmt.Fprintf(&properties, "\t\t%s REAL,\n", column)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		inputs TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		analysed_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
` + properties.String() + `		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_tests_name ON tests(name);
	CREATE INDEX IF NOT EXISTS idx_tests_run_id ON tests(run_id);
	`
	_, err := s.db.Exec(schema)

	return err
}

// BeginRun records the start of a run over inputs.
func (s *SQLiteStore) BeginRun(ctx context.Context, runID string, inputs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return errors.Wrap(err, "unable to marshal inputs")
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, inputs) VALUES (?, ?, ?)",
		runID, time.Now().UnixNano(), string(inputsJSON),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to insert run %s", runID)
	}

	return nil
}

// Save adds a record to the run. NaN and infinite properties are stored as NULL, so both read
// back as NaN.
func (s *SQLiteStore) Save(ctx context.Context, runID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "unable to query runs")
	}
	if exists == 0 {
		return errors.Wrap(ErrUnknownRun, runID)
	}

	analysedAt := rec.AnalysedAt
	if analysedAt.IsZero() {
		analysedAt = time.Now()
	}

	args := []any{runID, rec.Name, rec.Path, analysedAt.UnixNano(), int64(rec.Duration)}
	if rec.Properties != nil {
		for _, row := range rec.Properties.Rows() {
			args = append(args, nullFloat(row.Value))
		}
	} else {
		for range s.columns {
			args = append(args, sql.NullFloat64{})
		}
	}
	args = append(args, rec.Err)

	query := fmt.Sprintf(
		"INSERT INTO tests (run_id, name, path, analysed_at, duration_ns, %s, error) VALUES (?, ?, ?, ?, ?, %s?)",
		strings.Join(s.columns, ", "), strings.Repeat("?, ", len(s.columns)),
	)
	_, err = s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "unable to insert test %s", rec.Name)
	}

	return nil
}

// History returns the records of the test named name, oldest first.
func (s *SQLiteStore) History(ctx context.Context, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(
		"SELECT run_id, name, path, analysed_at, duration_ns, error, %s FROM tests WHERE name = ? ORDER BY analysed_at, id",
		strings.Join(s.columns, ", "),
	)
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query tests")
	}
	defer rows.Close()

	return s.scanRecords(rows)
}

func (s *SQLiteStore) scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec        Record
			analysedAt int64
			duration   int64
			values     = make([]sql.NullFloat64, len(s.columns))
		)
		dest := []any{&rec.RunID, &rec.Name, &rec.Path, &analysedAt, &duration, &rec.Err}
		for i := range values {
			dest = append(dest, &values[i])
		}

		err := rows.Scan(dest...)
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan test")
		}
		rec.AnalysedAt = time.Unix(0, analysedAt)
		rec.Duration = time.Duration(duration)

		if rec.Err == "" {
			rec.Properties = &tensile.Properties{}
			for i, column := range s.columns {
				v := math.NaN()
				if values[i].Valid {
					v = values[i].Float64
				}
				rec.Properties.Set(column, v)
			}
		}
		records = append(records, rec)
	}

	err := rows.Err()
	if err != nil {
		return nil, errors.Wrap(err, "unable to iterate tests")
	}

	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v, Valid: true}
}
