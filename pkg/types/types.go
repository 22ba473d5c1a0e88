package types

import (
	"sort"
	"strings"
)

// ProjectType distinguishes build-producing projects from test-only projects
type ProjectType string

const (
	ProjectTypeJDK     ProjectType = "JDK_PROJECT"
	ProjectTypeJDKTest ProjectType = "JDK_TEST_PROJECT"
)

// TaskType tells whether a task or variant dimension belongs to the build or test side
type TaskType string

const (
	TaskTypeBuild TaskType = "BUILD"
	TaskTypeTest  TaskType = "TEST"
)

// JobKind tags a JobIdentity as a build job or a test job
type JobKind string

const (
	JobKindBuild JobKind = "BUILD"
	JobKindTest  JobKind = "TEST"
)

// Platform describes an operating system / architecture pair jobs run on
type Platform struct {
	ID           string   `json:"id" yaml:"id"`
	OS           string   `json:"os" yaml:"os"`
	Version      string   `json:"version" yaml:"version"`
	Architecture string   `json:"architecture" yaml:"architecture"`
	KojiArch     string   `json:"kojiArch,omitempty" yaml:"kojiArch,omitempty"` // Architecture alias used in koji coordinates
	Providers    []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	VMName       string   `json:"vmName,omitempty" yaml:"vmName,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Triad returns the os/version/architecture string used inside job names
func (p *Platform) Triad() string {
	return p.OS + p.Version + "." + p.Architecture
}

// EffectiveKojiArch returns the koji architecture alias, falling back to the architecture
func (p *Platform) EffectiveKojiArch() string {
	if p.KojiArch != "" {
		return p.KojiArch
	}
	return p.Architecture
}

// Task describes a unit of work (build, tck, jtreg, ...) a job performs
type Task struct {
	ID             string   `json:"id" yaml:"id"`
	Type           TaskType `json:"type" yaml:"type"`
	AppliesToBuild bool     `json:"appliesToBuild" yaml:"appliesToBuild"`
	AppliesToTest  bool     `json:"appliesToTest" yaml:"appliesToTest"`
	Variants       []string `json:"variants,omitempty" yaml:"variants,omitempty"` // Required variant dimension ids
	ViewColumns    []string `json:"viewColumns,omitempty" yaml:"viewColumns,omitempty"`
	TimeoutHours   int      `json:"timeoutHours,omitempty" yaml:"timeoutHours,omitempty"`
}

// RequiredDimensions returns the task's required dimension ids, sorted
func (t *Task) RequiredDimensions() []string {
	dims := append([]string(nil), t.Variants...)
	sort.Strings(dims)
	return dims
}

// TaskVariant is a variant dimension together with the values it admits.
// Every (ID, value) pair is one VariantDimension.
type TaskVariant struct {
	ID           string   `json:"id" yaml:"id"`
	Type         TaskType `json:"type" yaml:"type"`
	DefaultValue string   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Values       []string `json:"values" yaml:"values"`
	Order        int      `json:"order,omitempty" yaml:"order,omitempty"`
}

// HasValue reports whether value is admitted by the dimension
func (v *TaskVariant) HasValue(value string) bool {
	for _, candidate := range v.Values {
		if candidate == value {
			return true
		}
	}
	return false
}

// JDKVersion groups the product package names belonging to one JDK line
type JDKVersion struct {
	ID           string   `json:"id" yaml:"id"`
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	PackageNames []string `json:"packageNames" yaml:"packageNames"`
}

// HasPackage reports whether packageName belongs to this JDK version
func (v *JDKVersion) HasPackage(packageName string) bool {
	for _, name := range v.PackageNames {
		if name == packageName {
			return true
		}
	}
	return false
}

// BuildProvider is a source of builds (a koji hub or similar)
type BuildProvider struct {
	ID     string `json:"id" yaml:"id"`
	SrcURL string `json:"srcUrl,omitempty" yaml:"srcUrl,omitempty"`
	TopURL string `json:"topUrl,omitempty" yaml:"topUrl,omitempty"`
}

// Product identifies the JDK line and package a project builds or tests
type Product struct {
	JDK         string `json:"jdk" yaml:"jdk"`
	PackageName string `json:"packageName" yaml:"packageName"`
}

// ExclusionRule removes matching tuples from an expanded matrix.
// Empty fields match anything.
type ExclusionRule struct {
	Platform string            `json:"platform,omitempty" yaml:"platform,omitempty"`
	Task     string            `json:"task,omitempty" yaml:"task,omitempty"`
	Provider string            `json:"provider,omitempty" yaml:"provider,omitempty"`
	Variants map[string]string `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Matches reports whether the rule excludes key
func (r ExclusionRule) Matches(key JobKey) bool {
	if r.Platform != "" && r.Platform != key.Platform {
		return false
	}
	if r.Task != "" && r.Task != key.Task {
		return false
	}
	if r.Provider != "" && r.Provider != key.Provider {
		return false
	}
	for dim, value := range r.Variants {
		if key.Variants[dim] != value {
			return false
		}
	}
	return true
}

// Project is the declarative description of which jobs should exist
type Project struct {
	ID             string              `json:"id" yaml:"id"`
	Type           ProjectType         `json:"type" yaml:"type"`
	Product        Product             `json:"product" yaml:"product"`
	Platforms      []string            `json:"platforms" yaml:"platforms"`
	Tasks          []string            `json:"tasks" yaml:"tasks"`
	Variants       map[string][]string `json:"variants,omitempty" yaml:"variants,omitempty"`
	BuildProviders []string            `json:"buildProviders,omitempty" yaml:"buildProviders,omitempty"`
	Exclusions     []ExclusionRule     `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	BuildProject   string              `json:"buildProject,omitempty" yaml:"buildProject,omitempty"` // Upstream project of a JDK_TEST_PROJECT
}

// JobKey is the composite identity of a job. Its canonical name is a pure
// function of these fields.
type JobKey struct {
	Project    string            `json:"project"`
	Platform   string            `json:"platform"`
	Task       string            `json:"task"`
	JDKVersion string            `json:"jdkVersion"`
	Variants   map[string]string `json:"variants,omitempty"`
	Provider   string            `json:"provider"`
}

// ID returns a comparable representation of the key. It is not the job name.
func (k JobKey) ID() string {
	dims := make([]string, 0, len(k.Variants))
	for dim := range k.Variants {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	var b strings.Builder
	for _, part := range []string{k.Project, k.Platform, k.Task, k.JDKVersion, k.Provider} {
		b.WriteString(part)
		b.WriteByte(0)
	}
	for _, dim := range dims {
		b.WriteString(dim)
		b.WriteByte('=')
		b.WriteString(k.Variants[dim])
		b.WriteByte(0)
	}
	return b.String()
}

// Equal reports whether two keys identify the same job
func (k JobKey) Equal(other JobKey) bool {
	return k.ID() == other.ID()
}

// JobIdentity is a JobKey tagged with the kind of job it names
type JobIdentity struct {
	Kind JobKind `json:"kind"`
	Key  JobKey  `json:"key"`
}

// IsBuild reports whether the identity names a build job
func (j JobIdentity) IsBuild() bool {
	return j.Kind == JobKindBuild
}

// BuildCoordinate is a legacy NVR/NVRA build coordinate
type BuildCoordinate struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Release      string `json:"release"`
	Architecture string `json:"architecture,omitempty"` // Empty when the coordinate is an NVR
}

// HasArchitecture reports whether the coordinate is an NVRA
func (c BuildCoordinate) HasArchitecture() bool {
	return c.Architecture != ""
}

// Expectation is one arches-expected record found on disk
type Expectation struct {
	Arches  []string `json:"arches,omitempty"`
	Invalid bool     `json:"invalid,omitempty"`
}

// String renders the record the way listings show it
func (e Expectation) String() string {
	if e.Invalid {
		return "invalid"
	}
	return strings.Join(e.Arches, " ")
}
