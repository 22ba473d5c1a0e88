package identity

import (
	"errors"
	"testing"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *types.Snapshot {
	return types.NewSnapshot(types.SnapshotData{
		Platforms: []*types.Platform{
			{ID: "el8-x86_64", OS: "el", Version: "8", Architecture: "x86_64", Providers: []string{"vagrant"}},
			{ID: "el9-aarch64", OS: "el", Version: "9", Architecture: "aarch64", KojiArch: "arm64", Providers: []string{"vagrant", "beaker"}},
		},
		Tasks: []*types.Task{
			{ID: "build", Type: types.TaskTypeBuild, AppliesToBuild: true},
			{ID: "tck", Type: types.TaskTypeTest, AppliesToTest: true, Variants: []string{"jvm", "debug"}},
		},
		TaskVariants: []*types.TaskVariant{
			{ID: "debug", Type: types.TaskTypeBuild, DefaultValue: "release", Values: []string{"release", "fastdebug"}},
			{ID: "jvm", Type: types.TaskTypeBuild, DefaultValue: "hotspot", Values: []string{"hotspot", "zero"}},
		},
		JDKVersions: []*types.JDKVersion{
			{ID: "jdk17", Version: "17", PackageNames: []string{"java-17-openjdk"}},
		},
		BuildProviders: []*types.BuildProvider{{ID: "prov1"}, {ID: "vagrant"}},
		Projects: []*types.Project{
			{ID: "P1", Type: types.ProjectTypeJDK, Product: types.Product{JDK: "jdk17", PackageName: "java-17-openjdk"}},
			{ID: "T1", Type: types.ProjectTypeJDKTest, Product: types.Product{JDK: "jdk17", PackageName: "java-17-openjdk"}, BuildProject: "P1"},
		},
	})
}

func TestJobNameRoundTrip(t *testing.T) {
	snapshot := testSnapshot()

	tests := []struct {
		name     string
		key      types.JobKey
		expected string
		kind     types.JobKind
	}{
		{
			name:     "build job without variants",
			key:      types.JobKey{Project: "P1", Platform: "el8-x86_64", Task: "build", JDKVersion: "jdk17", Provider: "prov1"},
			expected: "P1-el8.x86_64-build-jdk17-prov1",
			kind:     types.JobKindBuild,
		},
		{
			name: "test job with variants ordered by dimension",
			key: types.JobKey{
				Project: "P1", Platform: "el9-aarch64", Task: "tck", JDKVersion: "jdk17",
				Variants: map[string]string{"jvm": "zero", "debug": "fastdebug"}, Provider: "vagrant",
			},
			expected: "P1-el9.aarch64-tck-jdk17-fastdebug.zero-vagrant",
			kind:     types.JobKindTest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := EncodeJobName(tt.key, snapshot)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)

			identity, err := DecodeJobName(name, snapshot)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, identity.Kind)
			assert.True(t, tt.key.Equal(identity.Key))
			assert.Equal(t, tt.key, identity.Key)
		})
	}
}

func TestEncodeJobNameUnknownPlatform(t *testing.T) {
	_, err := EncodeJobName(types.JobKey{Project: "P1", Platform: "win-x86_64"}, testSnapshot())
	assert.True(t, errors.Is(err, types.ErrUnknownReference))
}

func TestDecodeJobNameErrors(t *testing.T) {
	snapshot := testSnapshot()

	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{name: "empty", input: "", kind: types.ErrMalformedIdentity},
		{name: "single segment", input: "P1", kind: types.ErrMalformedIdentity},
		{name: "too many segments", input: "P1-el8.x86_64-tck-jdk17-a.b-prov1-x", kind: types.ErrMalformedIdentity},
		{name: "empty segment", input: "P1--build-jdk17-prov1", kind: types.ErrMalformedIdentity},
		{name: "platform without dot", input: "P1-el8x86_64-build-jdk17-prov1", kind: types.ErrMalformedIdentity},
		{name: "variant segment on plain task", input: "P1-el8.x86_64-build-jdk17-zero-prov1", kind: types.ErrMalformedIdentity},
		{name: "missing variant segment", input: "P1-el8.x86_64-tck-jdk17-vagrant", kind: types.ErrMalformedIdentity},
		{name: "wrong variant count", input: "P1-el8.x86_64-tck-jdk17-zero-vagrant", kind: types.ErrMalformedIdentity},
		{name: "unknown project", input: "P9-el8.x86_64-build-jdk17-prov1", kind: types.ErrUnknownReference},
		{name: "unknown platform", input: "P1-f40.x86_64-build-jdk17-prov1", kind: types.ErrUnknownReference},
		{name: "unknown task", input: "P1-el8.x86_64-jtreg-jdk17-prov1", kind: types.ErrUnknownReference},
		{name: "unknown jdk", input: "P1-el8.x86_64-build-jdk8-prov1", kind: types.ErrUnknownReference},
		{name: "unknown provider", input: "P1-el8.x86_64-build-jdk17-koji", kind: types.ErrUnknownReference},
		{name: "unknown variant value", input: "P1-el8.x86_64-tck-jdk17-release.graal-vagrant", kind: types.ErrUnknownReference},
		{name: "build task in test project", input: "T1-el8.x86_64-build-jdk17-prov1", kind: types.ErrUnknownReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJobName(tt.input, snapshot)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.True(t, types.IsClientError(err))
		})
	}
}

func TestDecodeTestProjectJob(t *testing.T) {
	identity, err := DecodeJobName("T1-el8.x86_64-tck-jdk17-release.hotspot-vagrant", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, types.JobKindTest, identity.Kind)
	assert.False(t, identity.IsBuild())
	assert.Equal(t, map[string]string{"debug": "release", "jvm": "hotspot"}, identity.Key.Variants)
}
