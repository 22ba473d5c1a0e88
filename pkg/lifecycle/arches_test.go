package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecord(t *testing.T, tracker *Tracker, rel, content string) string {
	t.Helper()
	dir := filepath.Join(tracker.Config().DBRoot, rel, "data")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, tracker.Config().ArchesFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExpectedArchitecturesAncestor(t *testing.T) {
	tracker := newTestTracker(t)
	path := writeRecord(t, tracker, "a", "# defaults\nx86_64 aarch64\n")
	require.NoError(t, os.MkdirAll(filepath.Join(tracker.Config().DBRoot, "a", "b", "data"), 0755))

	arches, source, err := tracker.ExpectedArchitectures(types.BuildCoordinate{Name: "a", Version: "b", Release: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x86_64", "aarch64"}, arches)
	assert.Equal(t, path, source)
}

func TestExpectedArchitecturesNearestWins(t *testing.T) {
	tracker := newTestTracker(t)
	writeRecord(t, tracker, "a", "x86_64\n")
	writeRecord(t, tracker, "a/b", "ppc64le s390x\n")

	arches, _, err := tracker.ExpectedArchitectures(types.BuildCoordinate{Name: "a", Version: "b", Release: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ppc64le", "s390x"}, arches)
}

func TestExpectedArchitecturesRootRecord(t *testing.T) {
	tracker := newTestTracker(t)
	writeRecord(t, tracker, ".", "x86_64\n")

	arches, _, err := tracker.ExpectedArchitectures(types.BuildCoordinate{Name: "n", Version: "v", Release: "r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x86_64"}, arches)
}

func TestExpectedArchitecturesErrors(t *testing.T) {
	tracker := newTestTracker(t)
	c := types.BuildCoordinate{Name: "a", Version: "b", Release: "c"}

	_, _, err := tracker.ExpectedArchitectures(c)
	assert.True(t, errors.Is(err, types.ErrNoExpectationFound))
	assert.True(t, types.IsClientError(err))

	writeRecord(t, tracker, "a/b", "# only a comment\n")
	_, source, err := tracker.ExpectedArchitectures(c)
	assert.True(t, errors.Is(err, types.ErrInvalidExpectation))
	assert.False(t, types.IsClientError(err))
	assert.NotEmpty(t, source)
}

func TestSetExpectedArchitecturesIsLocal(t *testing.T) {
	tracker := newTestTracker(t)
	ancestor := writeRecord(t, tracker, "a", "x86_64\n")
	c := types.BuildCoordinate{Name: "a", Version: "b", Release: "c", Architecture: "x86_64"}

	previous, err := tracker.SetExpectedArchitectures(c, []string{"aarch64 x86_64", "aarch64"})
	require.NoError(t, err)
	assert.Nil(t, previous, "ancestor records are never the previous value")

	data, err := os.ReadFile(ancestor)
	require.NoError(t, err)
	assert.Equal(t, "x86_64\n", string(data))

	arches, source, err := tracker.ExpectedArchitectures(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"aarch64", "x86_64"}, arches)
	assert.Equal(t, filepath.Join(tracker.Config().DBRoot, "a", "b", "c", "data", DefaultArchesFile), source)

	previous, err = tracker.SetExpectedArchitectures(c, []string{"s390x"})
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, []string{"aarch64", "x86_64"}, previous.Arches)

	_, err = tracker.SetExpectedArchitectures(c, []string{" "})
	assert.True(t, errors.Is(err, types.ErrInvalidConfiguration))
}

func TestDiscoverAllExpectations(t *testing.T) {
	tracker := newTestTracker(t)
	root := tracker.Config().DBRoot
	writeRecord(t, tracker, "a", "x86_64 aarch64\n")
	writeRecord(t, tracker, "a/b/c", "ppc64le\n")
	writeRecord(t, tracker, "broken", "x\n")
	writeRecord(t, tracker, "empty", "# nothing\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "unrelated.txt"), []byte("x86_64"), 0644))

	found, err := tracker.DiscoverAllExpectations(root)
	require.NoError(t, err)
	require.Len(t, found, 4)

	assert.Equal(t, types.Expectation{Arches: []string{"x86_64", "aarch64"}}, found[filepath.Join(root, "a", "data")])
	assert.Equal(t, []string{"ppc64le"}, found[filepath.Join(root, "a", "b", "c", "data")].Arches)
	assert.True(t, found[filepath.Join(root, "broken", "data")].Invalid)
	assert.Equal(t, "invalid", found[filepath.Join(root, "empty", "data")].String())

	assert.Equal(t, []string{"aarch64", "ppc64le", "x86_64"}, UsedArches(found))
}

func TestDiscoverAllExpectationsMissingRoot(t *testing.T) {
	tracker := newTestTracker(t)

	found, err := tracker.DiscoverAllExpectations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverAllExpectationsSkipsUnreadableEntries(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	tracker := newTestTracker(t)
	root := tracker.Config().DBRoot
	writeRecord(t, tracker, "a", "x86_64\n")
	writeRecord(t, tracker, "locked/b", "aarch64\n")
	unreadable := writeRecord(t, tracker, "c", "s390x\n")
	writeRecord(t, tracker, "d", "ppc64le\n")

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	require.NoError(t, os.Chmod(unreadable, 0))
	t.Cleanup(func() {
		os.Chmod(locked, 0755)
		os.Chmod(unreadable, 0644)
	})

	found, err := tracker.DiscoverAllExpectations(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.Expectation{
		filepath.Join(root, "a", "data"): {Arches: []string{"x86_64"}},
		filepath.Join(root, "d", "data"): {Arches: []string{"ppc64le"}},
	}, found)
}

func TestSetExpectedArchitecturesRejectsUnencodableCoordinate(t *testing.T) {
	tracker := newTestTracker(t)
	c := types.BuildCoordinate{Name: "a", Version: "1", Release: "2.x86_64"}

	_, err := tracker.SetExpectedArchitectures(c, []string{"x86_64"})
	assert.True(t, errors.Is(err, types.ErrMalformedIdentity))

	_, statErr := os.Stat(tracker.CoordinateDir(c))
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected coordinate")
}
