package lifecycle

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// minRecordSize is the size below which an expectation record is invalid
const minRecordSize = 4

const dataDir = "data"

// CoordinateDir returns the exact build directory of a coordinate
func (t *Tracker) CoordinateDir(c types.BuildCoordinate) string {
	return filepath.Join(append([]string{t.cfg.DBRoot}, identity.CoordinatePath(c)...)...)
}

// RecordPath returns the expectation record of the build directory dir
func (t *Tracker) RecordPath(dir string) string {
	return filepath.Join(dir, dataDir, t.cfg.ArchesFile)
}

// readExpectation parses a record. A missing record yields ok == false.
func readExpectation(path string) (types.Expectation, bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return types.Expectation{}, false, nil
	}
	if err != nil {
		return types.Expectation{}, false, types.Errorf(types.ErrIOFailure, "failed to stat %s: %v", path, err)
	}
	lines, err := readLines(path)
	if err != nil {
		return types.Expectation{}, false, err
	}

	var arches []string
	for _, line := range lines {
		if data := dataOf(line); data != "" {
			arches = strings.Fields(data)
			break
		}
	}
	if info.Size() < minRecordSize || len(arches) == 0 {
		return types.Expectation{Invalid: true}, true, nil
	}
	return types.Expectation{Arches: arches}, true, nil
}

// ExpectedArchitectures resolves the record for c, walking from the exact
// build directory up to the database root and taking the nearest record.
// It returns the arches and the record path.
func (t *Tracker) ExpectedArchitectures(c types.BuildCoordinate) ([]string, string, error) {
	if err := checkSegments("coordinate", identity.CoordinatePath(c)...); err != nil {
		return nil, "", err
	}
	root := filepath.Clean(t.cfg.DBRoot)
	dir := t.CoordinateDir(c)
	for {
		path := t.RecordPath(dir)
		expectation, found, err := readExpectation(path)
		if err != nil {
			return nil, "", err
		}
		if found {
			if expectation.Invalid {
				return nil, displayPath(path), types.Errorf(types.ErrInvalidExpectation, "%s is empty or very small", displayPath(path))
			}
			return expectation.Arches, displayPath(path), nil
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, "", types.Errorf(types.ErrNoExpectationFound, "no %s for %s", t.cfg.ArchesFile, identity.EncodeBuildCoordinate(c))
}

// ExactExpectation reads the record at the exact build directory of c only
func (t *Tracker) ExactExpectation(c types.BuildCoordinate) (*types.Expectation, string, error) {
	if err := checkSegments("coordinate", identity.CoordinatePath(c)...); err != nil {
		return nil, "", err
	}
	path := t.RecordPath(t.CoordinateDir(c))
	expectation, found, err := readExpectation(path)
	if err != nil || !found {
		return nil, displayPath(path), err
	}
	return &expectation, displayPath(path), nil
}

// SetExpectedArchitectures writes the record at the exact build directory of
// c, creating directories as needed. It never looks at ancestors. The previous
// record at that location is returned, or nil if there was none.
func (t *Tracker) SetExpectedArchitectures(c types.BuildCoordinate, arches []string) (*types.Expectation, error) {
	if err := checkSegments("coordinate", identity.CoordinatePath(c)...); err != nil {
		return nil, err
	}
	if _, err := t.parser.Encode(c); err != nil {
		return nil, err
	}
	tokens := normalizeArches(arches)
	if len(tokens) == 0 {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "no architectures to set for %s", identity.EncodeBuildCoordinate(c))
	}

	dir := t.CoordinateDir(c)
	unlock := t.locks.lock("arches:" + dir)
	defer unlock()

	path := t.RecordPath(dir)
	previous, found, err := readExpectation(path)
	if err != nil {
		return nil, err
	}

	content := []string{
		commentMarker + " written by otool " + time.Now().UTC().Format(time.RFC3339),
		strings.Join(tokens, " "),
	}
	if err := writeAtomic(path, joinLines(content)); err != nil {
		return nil, err
	}
	metrics.ExpectationWrites.Inc()
	t.logger.Info().
		Str("nvr", identity.EncodeBuildCoordinate(c)).
		Str("path", path).
		Strs("arches", tokens).
		Msg("Wrote arches expectation")

	if !found {
		return nil, nil
	}
	return &previous, nil
}

// DiscoverAllExpectations scans root recursively for expectation records. The
// result maps the directory holding each record to its content; broken records
// are reported as invalid rather than left out. Entries that cannot be read
// are skipped.
func (t *Tracker) DiscoverAllExpectations(root string) (map[string]types.Expectation, error) {
	found := make(map[string]types.Expectation)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			t.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != t.cfg.ArchesFile {
			return nil
		}
		expectation, ok, err := readExpectation(path)
		if err != nil {
			t.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable record")
			return nil
		}
		if ok {
			found[displayPath(filepath.Dir(path))] = expectation
		}
		return nil
	})
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to scan %s: %v", root, err)
	}
	return found, nil
}

// UsedArches returns the distinct arches named by valid records, sorted
func UsedArches(expectations map[string]types.Expectation) []string {
	seen := make(map[string]struct{})
	for _, e := range expectations {
		for _, arch := range e.Arches {
			seen[arch] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for arch := range seen {
		out = append(out, arch)
	}
	sort.Strings(out)
	return out
}

// normalizeArches splits every element on whitespace and drops duplicates,
// keeping the first occurrence
func normalizeArches(arches []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range arches {
		for _, token := range strings.Fields(a) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
		}
	}
	return out
}
