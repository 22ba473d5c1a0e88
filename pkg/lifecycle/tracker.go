package lifecycle

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

const (
	DefaultProcessedFile = "processed.txt"
	DefaultArchesFile    = "arches-expected"

	commentMarker = "#"
)

// Config locates the two trees the tracker works on
type Config struct {
	DBRoot        string // Build database root holding arches expectations
	JobsRoot      string // Orchestrator jobs root holding processed ledgers
	ProcessedFile string
	ArchesFile    string
}

// Tracker owns the per-job processed ledgers and the per-build arches
// expectations. Every read-modify-write on one ledger or one expectation
// record is serialized inside the process; other processes writing the same
// files are not coordinated with.
type Tracker struct {
	cfg    Config
	parser *identity.CoordinateParser
	locks  *keyLocks
	logger zerolog.Logger
}

// NewTracker creates a tracker using the built-in architecture list
func NewTracker(cfg Config) *Tracker {
	if cfg.ProcessedFile == "" {
		cfg.ProcessedFile = DefaultProcessedFile
	}
	if cfg.ArchesFile == "" {
		cfg.ArchesFile = DefaultArchesFile
	}
	return &Tracker{
		cfg:    cfg,
		parser: identity.NewCoordinateParser(),
		locks:  newKeyLocks(),
		logger: log.WithComponent("lifecycle"),
	}
}

// WithParser returns a tracker sharing this tracker's locks that parses
// ledger lines with p
func (t *Tracker) WithParser(p *identity.CoordinateParser) *Tracker {
	c := *t
	c.parser = p
	return &c
}

// Config returns the tracker configuration with defaults applied
func (t *Tracker) Config() Config {
	return t.cfg
}

// LedgerPath returns the processed ledger of a job
func (t *Tracker) LedgerPath(job string) string {
	return filepath.Join(t.cfg.JobsRoot, job, t.cfg.ProcessedFile)
}

// readLines returns the lines of path, or nil when it does not exist
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to read %s: %v", path, err)
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to read %s: %v", path, err)
	}
	return lines, nil
}

// dataOf strips comments from a line. Comment-only and blank lines yield "".
func dataOf(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, commentMarker) {
		return ""
	}
	if i := strings.Index(trimmed, " "+commentMarker); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	return trimmed
}

// writeAtomic replaces path with data through a temporary file and a rename
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.Errorf(types.ErrIOFailure, "failed to create %s: %v", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return types.Errorf(types.ErrIOFailure, "failed to create temporary file in %s: %v", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return types.Errorf(types.ErrIOFailure, "failed to write %s: %v", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return types.Errorf(types.ErrIOFailure, "failed to sync %s: %v", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return types.Errorf(types.ErrIOFailure, "failed to close %s: %v", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return types.Errorf(types.ErrIOFailure, "failed to chmod %s: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return types.Errorf(types.ErrIOFailure, "failed to replace %s: %v", path, err)
	}
	return nil
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func displayPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// checkSegments rejects path segments that would escape the trees
func checkSegments(what string, segments ...string) error {
	for _, s := range segments {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
			return types.Errorf(types.ErrMalformedIdentity, "%s segment %q is not a valid path segment", what, s)
		}
	}
	return nil
}
