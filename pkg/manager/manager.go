package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/rs/zerolog"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/client"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/lifecycle"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/matrix"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/reconciler"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/storage"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Manager runs the otool use cases. It keeps no configuration or job state
// between calls: every call takes a fresh snapshot from the store.
type Manager struct {
	store    storage.Store
	lister   client.JobLister
	tracker  *lifecycle.Tracker
	expander *matrix.Expander
	dataDir  string
	jobURL   string
	logger   zerolog.Logger
}

// Config holds configuration for creating a Manager
type Config struct {
	Store   storage.Store
	Lister  client.JobLister
	Tracker *lifecycle.Tracker
	DataDir string
	JobURL  string // Prefix of job links in non-orphan listings
}

// NewManager creates a new Manager instance
func NewManager(cfg Config) *Manager {
	return &Manager{
		store:    cfg.Store,
		lister:   cfg.Lister,
		tracker:  cfg.Tracker,
		expander: matrix.NewExpander(),
		dataDir:  cfg.DataDir,
		jobURL:   cfg.JobURL,
		logger:   log.WithComponent("manager"),
	}
}

// Store returns the configuration store
func (m *Manager) Store() storage.Store {
	return m.store
}

func (m *Manager) snapshot() (*types.Snapshot, error) {
	snapshot, err := m.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return snapshot, nil
}

// JobsMode selects which job population a jobs query lists
type JobsMode string

const (
	ModeAllJenkins      JobsMode = "allJenkins"      // every job on the orchestrator
	ModeAllOtool        JobsMode = "allOtool"        // every declared job
	ModeJDKProjects     JobsMode = "jdkProjects"     // jobs declared by JDK projects
	ModeJDKTestProjects JobsMode = "jdkTestProjects" // jobs declared by JDK test projects
	ModeOrphansJenkins  JobsMode = "orphansJenkins"  // declared but missing on the orchestrator
	ModeOrphansOtool    JobsMode = "orphansOtool"    // on the orchestrator but no longer declared
)

// JobsModes lists the modes in the order help output shows them
var JobsModes = []JobsMode{
	ModeOrphansJenkins,
	ModeOrphansOtool,
	ModeAllOtool,
	ModeAllJenkins,
	ModeJDKTestProjects,
	ModeJDKProjects,
}

// JobsQuery is one jobs listing request
type JobsQuery struct {
	Mode    JobsMode
	URL     string // Overrides the configured job link prefix
	Exclude string // Comma-separated full-match regexes
	Include string // Comma-separated full-match regexes, same selection as Exclude
	Project string
}

func (q JobsQuery) needsActual() bool {
	return q.Mode == ModeAllJenkins || q.Mode == ModeOrphansJenkins || q.Mode == ModeOrphansOtool
}

func (q JobsQuery) declaredFilter() (matrix.Filter, bool) {
	switch q.Mode {
	case ModeAllOtool, ModeOrphansJenkins, ModeOrphansOtool:
		return matrix.Filter{Project: q.Project}, true
	case ModeJDKProjects:
		return matrix.Filter{Project: q.Project, Type: types.ProjectTypeJDK}, true
	case ModeJDKTestProjects:
		return matrix.Filter{Project: q.Project, Type: types.ProjectTypeJDKTest}, true
	}
	return matrix.Filter{}, false
}

// ProjectFailure names a project left out of a result because its expansion
// failed
type ProjectFailure struct {
	Project string `json:"project"`
	Error   string `json:"error"`
}

// JobsResult is the answer to a jobs query
type JobsResult struct {
	Jobs   []string         `json:"jobs"`
	Failed []ProjectFailure `json:"failed,omitempty"`
}

// Jobs answers a jobs query. The orchestrator listing and the expansion of
// the declared matrix run concurrently. Filters are compiled before any work
// starts, so a bad pattern fails the request without partial results.
//
// A project whose expansion fails contributes no declared jobs and is listed
// in Failed. In orphansOtool mode its orchestrator jobs therefore show up as
// orphans until the project is fixed.
func (m *Manager) Jobs(ctx context.Context, q JobsQuery) (*JobsResult, error) {
	switch q.Mode {
	case ModeAllJenkins, ModeAllOtool, ModeJDKProjects, ModeJDKTestProjects, ModeOrphansJenkins, ModeOrphansOtool:
	case "":
		return nil, types.Errorf(types.ErrMissingParameter, "one of %v is required", JobsModes)
	default:
		return nil, types.Errorf(types.ErrUnknownReference, "jobs mode %q", q.Mode)
	}

	exclude, err := reconciler.ParsePatterns(q.Exclude)
	if err != nil {
		return nil, err
	}
	include, err := reconciler.ParsePatterns(q.Include)
	if err != nil {
		return nil, err
	}

	var (
		actual, declared []string
		failed           []ProjectFailure
	)
	g, gctx := errgroup.WithContext(ctx)
	if q.needsActual() {
		g.Go(func() error {
			names, err := m.lister.ListJobNames(gctx)
			if err != nil {
				return fmt.Errorf("failed to list orchestrator jobs: %w", err)
			}
			actual = names
			return nil
		})
	}
	if filter, ok := q.declaredFilter(); ok {
		g.Go(func() error {
			jobs, failures, err := m.DeclaredJobs(filter)
			if err != nil {
				return err
			}
			declared = matrix.Names(jobs)
			failed = failures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var names []string
	prefix := ""
	switch q.Mode {
	case ModeAllJenkins:
		names = reconciler.Union(actual)
		prefix = m.linkPrefix(q)
	case ModeOrphansJenkins:
		names = reconciler.Reconcile(declared, actual).Missing
	case ModeOrphansOtool:
		names = reconciler.Reconcile(declared, actual).Redundant
	default:
		names = reconciler.Union(declared)
		prefix = m.linkPrefix(q)
	}

	names = include.Include(exclude.Exclude(names))
	if names == nil {
		names = []string{}
	}
	if prefix != "" {
		for i, name := range names {
			names[i] = prefix + name
		}
	}
	m.logger.Debug().Str("mode", string(q.Mode)).Int("jobs", len(names)).Int("failed", len(failed)).Msg("Answered jobs query")
	return &JobsResult{Jobs: names, Failed: failed}, nil
}

func (m *Manager) linkPrefix(q JobsQuery) string {
	if q.URL != "" {
		return q.URL
	}
	return m.jobURL
}

// DeclaredJobs expands the projects the filter selects against a fresh
// snapshot. Projects that fail to expand are returned as failures next to the
// jobs of the others; only a failure to read the configuration is an error.
func (m *Manager) DeclaredJobs(filter matrix.Filter) ([]matrix.Job, []ProjectFailure, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, nil, err
	}
	return expand(m.expander, snapshot, filter)
}

func expand(expander *matrix.Expander, snapshot *types.Snapshot, filter matrix.Filter) ([]matrix.Job, []ProjectFailure, error) {
	jobs, err := expander.ExpandAll(snapshot, filter)
	if err == nil {
		return jobs, nil, nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil, nil, err
	}
	failures := make([]ProjectFailure, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var projectErr *matrix.ProjectError
		if !errors.As(e, &projectErr) {
			return nil, nil, err
		}
		failures = append(failures, ProjectFailure{Project: projectErr.Project, Error: projectErr.Err.Error()})
	}
	return jobs, failures, nil
}

// DecodeJob decodes a job name against the current configuration
func (m *Manager) DecodeJob(name string) (types.JobIdentity, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return types.JobIdentity{}, err
	}
	return identity.DecodeJobName(name, snapshot)
}

// ParseCoordinate parses an NVR/NVRA knowing the configured architectures
func (m *Manager) ParseCoordinate(nvr string) (types.BuildCoordinate, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return types.BuildCoordinate{}, err
	}
	return identity.ParserFor(snapshot).Parse(nvr)
}
