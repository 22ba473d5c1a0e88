package lifecycle

import (
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// RecordedCoordinates returns the coordinates a job has already processed, in
// file order. A missing ledger is an empty history. Lines that do not parse as
// a coordinate are skipped.
func (t *Tracker) RecordedCoordinates(job string) ([]types.BuildCoordinate, error) {
	if err := checkSegments("job", job); err != nil {
		return nil, err
	}
	lines, err := readLines(t.LedgerPath(job))
	if err != nil {
		return nil, err
	}
	coordinates := make([]types.BuildCoordinate, 0, len(lines))
	for _, line := range lines {
		data := dataOf(line)
		if data == "" {
			continue
		}
		c, err := t.parser.Parse(data)
		if err != nil {
			logger := log.WithJob(t.logger, job)
			logger.Debug().Str("line", data).Msg("Skipping unparseable ledger line")
			continue
		}
		coordinates = append(coordinates, c)
	}
	return coordinates, nil
}

// HasCoordinate reports whether the job's ledger records c
func (t *Tracker) HasCoordinate(job string, c types.BuildCoordinate) (bool, error) {
	recorded, err := t.RecordedCoordinates(job)
	if err != nil {
		return false, err
	}
	for _, r := range recorded {
		if r == c {
			return true, nil
		}
	}
	return false, nil
}

// RemoveCoordinate deletes every ledger entry equal to c, comparing parsed
// coordinates rather than raw lines. It reports whether anything was removed;
// removing an absent entry is not an error. Comments and lines that do not
// parse are kept, and the ledger is rewritten atomically.
func (t *Tracker) RemoveCoordinate(job string, c types.BuildCoordinate) (bool, error) {
	if err := checkSegments("job", job); err != nil {
		return false, err
	}
	if _, err := t.parser.Encode(c); err != nil {
		return false, err
	}
	unlock := t.locks.lock("ledger:" + job)
	defer unlock()

	path := t.LedgerPath(job)
	lines, err := readLines(path)
	if err != nil {
		return false, err
	}

	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		if data := dataOf(line); data != "" {
			if parsed, err := t.parser.Parse(data); err == nil && parsed == c {
				removed++
				continue
			}
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return false, nil
	}

	if err := writeAtomic(path, joinLines(kept)); err != nil {
		return false, err
	}
	logger := log.WithJob(t.logger, job)
	logger.Info().
		Str("nvr", identity.EncodeBuildCoordinate(c)).
		Int("entries", removed).
		Msg("Removed coordinate from ledger")
	return true, nil
}
