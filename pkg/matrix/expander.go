package matrix

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// Job is one point of an expanded matrix
type Job struct {
	Name     string            `json:"name"`
	Identity types.JobIdentity `json:"identity"`
}

// Filter restricts ExpandAll to a subset of projects. Empty fields match all.
type Filter struct {
	Project string
	Type    types.ProjectType
}

func (f Filter) matches(p *types.Project) bool {
	if f.Project != "" && f.Project != p.ID {
		return false
	}
	if f.Type != "" && f.Type != p.Type {
		return false
	}
	return true
}

// ProjectError names the project whose expansion failed
type ProjectError struct {
	Project string
	Err     error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %s: %v", e.Project, e.Err)
}

func (e *ProjectError) Unwrap() error { return e.Err }

// Expander turns project configuration into job matrices. It holds no state
// between calls; every call works on the snapshot it is given.
type Expander struct {
	logger zerolog.Logger
}

// NewExpander creates a new expander
func NewExpander() *Expander {
	return &Expander{logger: log.WithComponent("matrix")}
}

// Expand computes every job the project declares, sorted by name.
//
// The product is platforms x applicable tasks x the product's jdk version x
// variant assignments x providers. Exclusion rules are applied afterwards and
// duplicates are removed by key, not by name. Any reference the snapshot
// cannot resolve fails the whole project with ErrUnresolvedReference.
func (e *Expander) Expand(project *types.Project, snapshot *types.Snapshot) ([]Job, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ExpansionDuration, string(project.Type))

	jdk, err := resolveJDK(project, snapshot)
	if err != nil {
		return nil, err
	}
	if project.Type == types.ProjectTypeJDKTest {
		upstream, ok := snapshot.Project(project.BuildProject)
		if !ok || upstream.Type != types.ProjectTypeJDK {
			return nil, types.Errorf(types.ErrUnresolvedReference, "build project %q of %s", project.BuildProject, project.ID)
		}
	}

	platforms := make([]*types.Platform, 0, len(project.Platforms))
	for _, id := range project.Platforms {
		platform, ok := snapshot.Platform(id)
		if !ok {
			return nil, types.Errorf(types.ErrUnresolvedReference, "platform %q of %s", id, project.ID)
		}
		platforms = append(platforms, platform)
	}

	seen := make(map[string]struct{})
	var jobs []Job
	for _, taskID := range project.Tasks {
		task, ok := snapshot.Task(taskID)
		if !ok {
			return nil, types.Errorf(types.ErrUnresolvedReference, "task %q of %s", taskID, project.ID)
		}
		kind, applies := identity.JobKindOf(project, task)
		if !applies {
			continue
		}
		assignments, err := variantAssignments(project, task, snapshot)
		if err != nil {
			return nil, err
		}

		for _, platform := range platforms {
			providers, err := providersFor(project, platform, kind, snapshot)
			if err != nil {
				return nil, err
			}
			for _, variants := range assignments {
				for _, provider := range providers {
					key := types.JobKey{
						Project:    project.ID,
						Platform:   platform.ID,
						Task:       task.ID,
						JDKVersion: jdk.ID,
						Variants:   variants,
						Provider:   provider,
					}
					if excluded(project, key) {
						continue
					}
					if _, dup := seen[key.ID()]; dup {
						continue
					}
					seen[key.ID()] = struct{}{}

					name, err := identity.EncodeJobName(key, snapshot)
					if err != nil {
						return nil, err
					}
					jobs = append(jobs, Job{Name: name, Identity: types.JobIdentity{Kind: kind, Key: key}})
				}
			}
		}
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	metrics.DeclaredJobs.WithLabelValues(project.ID).Set(float64(len(jobs)))
	return jobs, nil
}

// ExpandAll expands every project the filter selects. Projects that fail do
// not contribute jobs; the returned error is a multierror of *ProjectError
// naming each of them, returned together with the jobs of the projects that
// succeeded.
func (e *Expander) ExpandAll(snapshot *types.Snapshot, filter Filter) ([]Job, error) {
	var (
		jobs   []Job
		result *multierror.Error
	)
	for _, project := range snapshot.Projects() {
		if !filter.matches(project) {
			continue
		}
		projectJobs, err := e.Expand(project, snapshot)
		if err != nil {
			metrics.ExpansionFailures.Inc()
			logger := log.WithProject(e.logger, project.ID)
			logger.Warn().Err(err).Msg("Project expansion failed")
			result = multierror.Append(result, &ProjectError{Project: project.ID, Err: err})
			continue
		}
		e.logger.Debug().Str("project", project.ID).Int("jobs", len(projectJobs)).Msg("Expanded project")
		jobs = append(jobs, projectJobs...)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, result.ErrorOrNil()
}

// Names returns the job names in order
func Names(jobs []Job) []string {
	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = job.Name
	}
	return names
}

func resolveJDK(project *types.Project, snapshot *types.Snapshot) (*types.JDKVersion, error) {
	jdk, ok := snapshot.JDKVersion(project.Product.JDK)
	if !ok {
		return nil, types.Errorf(types.ErrUnresolvedReference, "jdk version %q of %s", project.Product.JDK, project.ID)
	}
	if !jdk.HasPackage(project.Product.PackageName) {
		return nil, types.Errorf(types.ErrUnresolvedReference, "package %q is not part of jdk version %s", project.Product.PackageName, jdk.ID)
	}
	return jdk, nil
}

// variantAssignments returns the cartesian product of the values admissible
// for each dimension the task requires. A task without requirements yields a
// single nil assignment.
func variantAssignments(project *types.Project, task *types.Task, snapshot *types.Snapshot) ([]map[string]string, error) {
	dims := task.RequiredDimensions()
	if len(dims) == 0 {
		return []map[string]string{nil}, nil
	}

	choices := make([][]string, len(dims))
	for i, dim := range dims {
		dimension, ok := snapshot.TaskVariant(dim)
		if !ok {
			return nil, types.Errorf(types.ErrUnresolvedReference, "variant dimension %q of task %s", dim, task.ID)
		}
		declared, ok := project.Variants[dim]
		if !ok || len(declared) == 0 {
			if dimension.DefaultValue == "" {
				return nil, types.Errorf(types.ErrUnresolvedReference, "%s declares no value for variant dimension %q", project.ID, dim)
			}
			declared = []string{dimension.DefaultValue}
		}
		for _, value := range declared {
			if !dimension.HasValue(value) {
				return nil, types.Errorf(types.ErrUnresolvedReference, "value %q of variant dimension %q in %s", value, dim, project.ID)
			}
		}
		choices[i] = declared
	}

	assignments := []map[string]string{{}}
	for i, dim := range dims {
		next := make([]map[string]string, 0, len(assignments)*len(choices[i]))
		for _, partial := range assignments {
			for _, value := range choices[i] {
				assignment := make(map[string]string, len(partial)+1)
				for k, v := range partial {
					assignment[k] = v
				}
				assignment[dim] = value
				next = append(next, assignment)
			}
		}
		assignments = next
	}
	return assignments, nil
}

// providersFor returns the providers jobs of kind run with on platform. Build
// jobs use the project's build providers, test jobs the platform's providers.
func providersFor(project *types.Project, platform *types.Platform, kind types.JobKind, snapshot *types.Snapshot) ([]string, error) {
	providers := platform.Providers
	if kind == types.JobKindBuild {
		providers = project.BuildProviders
	}
	for _, id := range providers {
		if _, ok := snapshot.BuildProvider(id); !ok {
			return nil, types.Errorf(types.ErrUnresolvedReference, "provider %q of %s", id, project.ID)
		}
	}
	return providers, nil
}

func excluded(project *types.Project, key types.JobKey) bool {
	for _, rule := range project.Exclusions {
		if rule.Matches(key) {
			return true
		}
	}
	return false
}
