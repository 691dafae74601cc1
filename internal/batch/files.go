package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrNoInput = errors.New("no test file found")

// IsTestFile reports whether path looks like a test recording.
func IsTestFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// fileLister expands the inputs of a run one at a time. It is not safe for concurrent use.
type fileLister struct {
	exclude string
	seen    map[string]bool
}

func newFileLister(exclude string) (*fileLister, error) {
	l := &fileLister{seen: map[string]bool{}}
	if exclude != "" {
		abs, err := filepath.Abs(exclude)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve %s", exclude)
		}
		l.exclude = abs
	}

	return l, nil
}

// Expand returns the files of input that were not returned yet.
func (l *fileLister) Expand(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", input)
	}

	candidates := []string{input}
	if info.IsDir() {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list %s", input)
		}
		candidates = candidates[:0]
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsTestFile(entry.Name()) {
				candidates = append(candidates, filepath.Join(input, entry.Name()))
			}
		}
		sort.Strings(candidates)
	}

	var files []string
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve %s", path)
		}
		if l.seen[abs] || filepath.Dir(abs) == l.exclude {
			continue
		}
		l.seen[abs] = true
		files = append(files, path)
	}

	return files, nil
}

// ListFiles expands directories into the CSV files they contain, sorted by name. Files given
// explicitly are kept whatever their extension. Files of the exclude directory are skipped
// so that the summaries of a previous run are not analysed.
func ListFiles(inputs []string, exclude string) ([]string, error) {
	lister, err := newFileLister(exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, input := range inputs {
		expanded, err := lister.Expand(input)
		if err != nil {
			return nil, err
		}
		files = append(files, expanded...)
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoInput, "in %s", strings.Join(inputs, ", "))
	}

	return files, nil
}
