package identity

import (
	"sort"
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

const (
	// SegmentDelimiter separates the top level segments of a job name
	SegmentDelimiter = "-"
	// ValueDelimiter separates values inside the platform and variant segments
	ValueDelimiter = "."

	minSegments = 5
	maxSegments = 6
)

// EncodeJobName renders the canonical job name of a key:
//
//	<project>-<os><version>.<arch>-<task>-<jdk>[-<v1>.<v2>...]-<provider>
//
// Variant values are ordered by dimension id. The platform triad comes from
// the snapshot because the key only carries the platform id.
func EncodeJobName(key types.JobKey, snapshot *types.Snapshot) (string, error) {
	platform, ok := snapshot.Platform(key.Platform)
	if !ok {
		return "", types.Errorf(types.ErrUnknownReference, "platform %q", key.Platform)
	}
	return encode(key, platform), nil
}

func encode(key types.JobKey, platform *types.Platform) string {
	segments := []string{key.Project, platform.Triad(), key.Task, key.JDKVersion}
	if len(key.Variants) > 0 {
		segments = append(segments, variantSegment(key.Variants))
	}
	segments = append(segments, key.Provider)
	return strings.Join(segments, SegmentDelimiter)
}

func variantSegment(variants map[string]string) string {
	dims := make([]string, 0, len(variants))
	for dim := range variants {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	values := make([]string, len(dims))
	for i, dim := range dims {
		values[i] = variants[dim]
	}
	return strings.Join(values, ValueDelimiter)
}

// DecodeJobName parses a job name back into its identity. References are
// resolved against snapshot; a name is only valid relative to the
// configuration version it was produced from.
func DecodeJobName(name string, snapshot *types.Snapshot) (types.JobIdentity, error) {
	var none types.JobIdentity

	segments := strings.Split(name, SegmentDelimiter)
	if len(segments) < minSegments || len(segments) > maxSegments {
		return none, types.Errorf(types.ErrMalformedIdentity, "%q has %d segments", name, len(segments))
	}
	for _, segment := range segments {
		if segment == "" {
			return none, types.Errorf(types.ErrMalformedIdentity, "%q has an empty segment", name)
		}
	}

	project, ok := snapshot.Project(segments[0])
	if !ok {
		return none, types.Errorf(types.ErrUnknownReference, "project %q", segments[0])
	}
	if strings.Count(segments[1], ValueDelimiter) != 1 {
		return none, types.Errorf(types.ErrMalformedIdentity, "platform segment %q", segments[1])
	}
	platform, ok := snapshot.PlatformByTriad(segments[1])
	if !ok {
		return none, types.Errorf(types.ErrUnknownReference, "platform %q", segments[1])
	}
	task, ok := snapshot.Task(segments[2])
	if !ok {
		return none, types.Errorf(types.ErrUnknownReference, "task %q", segments[2])
	}
	kind, ok := JobKindOf(project, task)
	if !ok {
		return none, types.Errorf(types.ErrUnknownReference, "task %q does not apply to %s %q", task.ID, project.Type, project.ID)
	}
	if _, ok := snapshot.JDKVersion(segments[3]); !ok {
		return none, types.Errorf(types.ErrUnknownReference, "jdk version %q", segments[3])
	}

	dims := task.RequiredDimensions()
	want := minSegments
	if len(dims) > 0 {
		want = maxSegments
	}
	if len(segments) != want {
		return none, types.Errorf(types.ErrMalformedIdentity, "%q: task %q expects %d segments, got %d", name, task.ID, want, len(segments))
	}

	var variants map[string]string
	if len(dims) > 0 {
		values := strings.Split(segments[4], ValueDelimiter)
		if len(values) != len(dims) {
			return none, types.Errorf(types.ErrMalformedIdentity, "%q: task %q requires %d variant values, got %d", name, task.ID, len(dims), len(values))
		}
		variants = make(map[string]string, len(dims))
		for i, dim := range dims {
			dimension, ok := snapshot.TaskVariant(dim)
			if !ok {
				return none, types.Errorf(types.ErrUnknownReference, "variant dimension %q", dim)
			}
			if !dimension.HasValue(values[i]) {
				return none, types.Errorf(types.ErrUnknownReference, "value %q of variant dimension %q", values[i], dim)
			}
			variants[dim] = values[i]
		}
	}

	provider := segments[len(segments)-1]
	if _, ok := snapshot.BuildProvider(provider); !ok {
		return none, types.Errorf(types.ErrUnknownReference, "provider %q", provider)
	}

	return types.JobIdentity{
		Kind: kind,
		Key: types.JobKey{
			Project:    project.ID,
			Platform:   platform.ID,
			Task:       task.ID,
			JDKVersion: segments[3],
			Variants:   variants,
			Provider:   provider,
		},
	}, nil
}

// JobKindOf decides whether a task yields a build or a test job inside project.
// The second result is false when the task does not apply to the project kind.
func JobKindOf(project *types.Project, task *types.Task) (types.JobKind, bool) {
	switch project.Type {
	case types.ProjectTypeJDK:
		if task.AppliesToBuild {
			return types.JobKindBuild, true
		}
		if task.AppliesToTest {
			return types.JobKindTest, true
		}
	case types.ProjectTypeJDKTest:
		if task.AppliesToTest {
			return types.JobKindTest, true
		}
	}
	return "", false
}
