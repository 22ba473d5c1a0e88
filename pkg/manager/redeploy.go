package manager

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/matrix"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/reconciler"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// RedeployRequest selects the jobs of one kind whose ledgers a redeploy
// looks at. Empty selectors match everything.
type RedeployRequest struct {
	Kind     types.JobKind
	NVR      string
	Project  string
	Platform string
	Task     string
	JDK      string
	Provider string
	Variants []string // Every value must be assigned to some dimension of the job
	Regex    string   // Comma-separated full-match regexes; a job must match one
	Do       bool     // Perform the removal instead of previewing it
}

// RedeployResult is what a redeploy found or changed
type RedeployResult struct {
	NVR      string   `json:"nvr,omitempty"`
	NVRs     []string `json:"nvrs,omitempty"`     // Listing mode: every recorded coordinate
	Affected []string `json:"affected,omitempty"` // Jobs whose ledger records the coordinate
	Removed  []string `json:"removed,omitempty"`  // Jobs whose ledger was rewritten
	Done     bool     `json:"done"`

	Failed []ProjectFailure `json:"failed,omitempty"` // Projects whose jobs could not be selected
}

func (r RedeployRequest) selects(job matrix.Job, patterns reconciler.Patterns) bool {
	key := job.Identity.Key
	if job.Identity.Kind != r.Kind {
		return false
	}
	if r.Project != "" && r.Project != key.Project {
		return false
	}
	if r.Platform != "" && r.Platform != key.Platform {
		return false
	}
	if r.Task != "" && r.Task != key.Task {
		return false
	}
	if r.JDK != "" && r.JDK != key.JDKVersion {
		return false
	}
	if r.Provider != "" && r.Provider != key.Provider {
		return false
	}
	for _, value := range r.Variants {
		found := false
		for _, assigned := range key.Variants {
			if assigned == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(patterns) > 0 && !patterns.MatchesAny(job.Name) {
		return false
	}
	return true
}

// Redeploy lists or removes processed coordinates.
//
// Without an NVR it lists the sorted union of the coordinates recorded by the
// selected jobs. With an NVR it lists the selected jobs whose ledger records
// it, and with Do it removes the coordinate from each of those ledgers so the
// jobs pick the build up again. Projects that fail to expand are skipped and
// named in Failed. Removal is not transactional: when one ledger
// fails the others are still processed and the failures are returned together.
func (m *Manager) Redeploy(req RedeployRequest) (*RedeployResult, error) {
	if req.Kind != types.JobKindBuild && req.Kind != types.JobKindTest {
		return nil, types.Errorf(types.ErrUnknownReference, "job kind %q", req.Kind)
	}
	patterns, err := reconciler.ParsePatterns(req.Regex)
	if err != nil {
		return nil, err
	}
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	jobs, failed, err := expand(m.expander, snapshot, matrix.Filter{Project: req.Project})
	if err != nil {
		return nil, err
	}
	tracker := m.tracker.WithParser(identity.ParserFor(snapshot))

	var selected []string
	for _, job := range jobs {
		if req.selects(job, patterns) {
			selected = append(selected, job.Name)
		}
	}

	if req.NVR == "" {
		seen := make(map[string]struct{})
		nvrs := []string{}
		for _, job := range selected {
			coordinates, err := tracker.RecordedCoordinates(job)
			if err != nil {
				return nil, err
			}
			for _, c := range coordinates {
				nvr := identity.EncodeBuildCoordinate(c)
				if _, ok := seen[nvr]; !ok {
					seen[nvr] = struct{}{}
					nvrs = append(nvrs, nvr)
				}
			}
		}
		sort.Strings(nvrs)
		return &RedeployResult{NVRs: nvrs, Failed: failed}, nil
	}

	c, err := identity.ParserFor(snapshot).Parse(req.NVR)
	if err != nil {
		return nil, err
	}
	result := &RedeployResult{NVR: identity.EncodeBuildCoordinate(c), Affected: []string{}, Done: req.Do, Failed: failed}
	for _, job := range selected {
		recorded, err := tracker.HasCoordinate(job, c)
		if err != nil {
			return nil, err
		}
		if recorded {
			result.Affected = append(result.Affected, job)
		}
	}
	if !req.Do {
		return result, nil
	}

	var failures *multierror.Error
	for _, job := range result.Affected {
		removed, err := tracker.RemoveCoordinate(job, c)
		if err != nil {
			logger := log.WithJob(m.logger, job)
			logger.Error().Err(err).Str("nvr", result.NVR).Msg("Failed to remove coordinate")
			failures = multierror.Append(failures, fmt.Errorf("job %s: %w", job, err))
			continue
		}
		if removed {
			metrics.LedgerRemovals.WithLabelValues(string(req.Kind)).Inc()
			result.Removed = append(result.Removed, job)
		}
	}
	return result, failures.ErrorOrNil()
}
