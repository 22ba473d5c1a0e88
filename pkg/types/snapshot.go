package types

import "sort"

// Snapshot is one consistent version of the configuration. Identifiers in job
// names are only meaningful relative to a snapshot, so every decode and every
// expansion is handed one explicitly.
type Snapshot struct {
	platforms   map[string]*Platform
	triads      map[string]*Platform
	tasks       map[string]*Task
	variants    map[string]*TaskVariant
	jdkVersions map[string]*JDKVersion
	providers   map[string]*BuildProvider
	projects    map[string]*Project
}

// SnapshotData carries the raw collections a Snapshot is built from
type SnapshotData struct {
	Platforms      []*Platform      `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Tasks          []*Task          `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	TaskVariants   []*TaskVariant   `json:"taskVariants,omitempty" yaml:"taskVariants,omitempty"`
	JDKVersions    []*JDKVersion    `json:"jdkVersions,omitempty" yaml:"jdkVersions,omitempty"`
	BuildProviders []*BuildProvider `json:"buildProviders,omitempty" yaml:"buildProviders,omitempty"`
	Projects       []*Project       `json:"projects,omitempty" yaml:"projects,omitempty"`
}

// NewSnapshot indexes the collections by id
func NewSnapshot(data SnapshotData) *Snapshot {
	s := &Snapshot{
		platforms:   make(map[string]*Platform, len(data.Platforms)),
		triads:      make(map[string]*Platform, len(data.Platforms)),
		tasks:       make(map[string]*Task, len(data.Tasks)),
		variants:    make(map[string]*TaskVariant, len(data.TaskVariants)),
		jdkVersions: make(map[string]*JDKVersion, len(data.JDKVersions)),
		providers:   make(map[string]*BuildProvider, len(data.BuildProviders)),
		projects:    make(map[string]*Project, len(data.Projects)),
	}
	for _, p := range data.Platforms {
		s.platforms[p.ID] = p
		s.triads[p.Triad()] = p
	}
	for _, t := range data.Tasks {
		s.tasks[t.ID] = t
	}
	for _, v := range data.TaskVariants {
		s.variants[v.ID] = v
	}
	for _, v := range data.JDKVersions {
		s.jdkVersions[v.ID] = v
	}
	for _, p := range data.BuildProviders {
		s.providers[p.ID] = p
	}
	for _, p := range data.Projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *Snapshot) Platform(id string) (*Platform, bool) {
	p, ok := s.platforms[id]
	return p, ok
}

// PlatformByTriad finds the platform whose os/version/architecture string is triad
func (s *Snapshot) PlatformByTriad(triad string) (*Platform, bool) {
	p, ok := s.triads[triad]
	return p, ok
}

func (s *Snapshot) Task(id string) (*Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

func (s *Snapshot) TaskVariant(id string) (*TaskVariant, bool) {
	v, ok := s.variants[id]
	return v, ok
}

func (s *Snapshot) JDKVersion(id string) (*JDKVersion, bool) {
	v, ok := s.jdkVersions[id]
	return v, ok
}

func (s *Snapshot) BuildProvider(id string) (*BuildProvider, bool) {
	p, ok := s.providers[id]
	return p, ok
}

func (s *Snapshot) Project(id string) (*Project, bool) {
	p, ok := s.projects[id]
	return p, ok
}

// Projects returns all projects sorted by id
func (s *Snapshot) Projects() []*Project {
	out := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProjectsOfType returns the projects of one type sorted by id
func (s *Snapshot) ProjectsOfType(t ProjectType) []*Project {
	var out []*Project
	for _, p := range s.Projects() {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// Platforms returns all platforms sorted by id
func (s *Snapshot) Platforms() []*Platform {
	out := make([]*Platform, 0, len(s.platforms))
	for _, p := range s.platforms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// JDKVersions returns all jdk versions sorted by id
func (s *Snapshot) JDKVersions() []*JDKVersion {
	out := make([]*JDKVersion, 0, len(s.jdkVersions))
	for _, v := range s.jdkVersions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Architectures returns every architecture and koji arch alias the platforms declare
func (s *Snapshot) Architectures() []string {
	seen := make(map[string]struct{})
	for _, p := range s.platforms {
		seen[p.Architecture] = struct{}{}
		seen[p.EffectiveKojiArch()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for arch := range seen {
		out = append(out, arch)
	}
	sort.Strings(out)
	return out
}

// KojiArches returns the distinct koji architectures of all platforms, sorted
func (s *Snapshot) KojiArches() []string {
	seen := make(map[string]struct{})
	for _, p := range s.platforms {
		seen[p.EffectiveKojiArch()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for arch := range seen {
		out = append(out, arch)
	}
	sort.Strings(out)
	return out
}
