package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJob = "P1-el8.x86_64-build-jdk17-prov1"

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	root := t.TempDir()
	return NewTracker(Config{
		DBRoot:   filepath.Join(root, "builds"),
		JobsRoot: filepath.Join(root, "jobs"),
	})
}

func writeLedger(t *testing.T, tracker *Tracker, job, content string) {
	t.Helper()
	path := tracker.LedgerPath(job)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func mustParse(t *testing.T, s string) types.BuildCoordinate {
	t.Helper()
	c, err := identity.ParseBuildCoordinate(s)
	require.NoError(t, err)
	return c
}

func TestRecordedCoordinatesMissingLedger(t *testing.T) {
	tracker := newTestTracker(t)

	coordinates, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)
	assert.Empty(t, coordinates)

	removed, err := tracker.RemoveCoordinate(testJob, mustParse(t, "a-1-2"))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRecordedCoordinatesKeepsFileOrder(t *testing.T) {
	tracker := newTestTracker(t)
	writeLedger(t, tracker, testJob, "# processed builds\n"+
		"java-17-openjdk-17.0.9-2.el8\n"+
		"\n"+
		"java-17-openjdk-17.0.8-1.el8 # rebuilt\n"+
		"garbage\n")

	coordinates, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)
	assert.Equal(t, []types.BuildCoordinate{
		mustParse(t, "java-17-openjdk-17.0.9-2.el8"),
		mustParse(t, "java-17-openjdk-17.0.8-1.el8"),
	}, coordinates)
}

func TestRemoveCoordinateIsIdempotent(t *testing.T) {
	tracker := newTestTracker(t)
	writeLedger(t, tracker, testJob, "# header\n"+
		"a-1-1.el8\n"+
		"b-2-2.el8.x86_64\n"+
		"not-a\n")

	target := mustParse(t, "b-2-2.el8.x86_64")

	removed, err := tracker.RemoveCoordinate(testJob, target)
	require.NoError(t, err)
	assert.True(t, removed)
	after, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)

	removed, err = tracker.RemoveCoordinate(testJob, target)
	require.NoError(t, err)
	assert.False(t, removed)
	again, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)

	assert.Equal(t, after, again)
	assert.Equal(t, []types.BuildCoordinate{mustParse(t, "a-1-1.el8")}, again)

	data, err := os.ReadFile(tracker.LedgerPath(testJob))
	require.NoError(t, err)
	assert.Equal(t, "# header\na-1-1.el8\nnot-a\n", string(data))
}

func TestRemoveCoordinateComparesParsedValues(t *testing.T) {
	tracker := newTestTracker(t)
	writeLedger(t, tracker, testJob, "  a-1-1.el8  \na-1-1.el8 # duplicate entry\nb-1-1\n")

	removed, err := tracker.RemoveCoordinate(testJob, types.BuildCoordinate{Name: "a", Version: "1", Release: "1.el8"})
	require.NoError(t, err)
	assert.True(t, removed)

	coordinates, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)
	assert.Equal(t, []types.BuildCoordinate{mustParse(t, "b-1-1")}, coordinates)
}

func TestRemoveCoordinateRejectsUnencodableCoordinate(t *testing.T) {
	tracker := newTestTracker(t)
	writeLedger(t, tracker, testJob, "a-1-2-3\n")

	_, err := tracker.RemoveCoordinate(testJob, types.BuildCoordinate{Name: "a", Version: "1", Release: "2-3"})
	assert.True(t, errors.Is(err, types.ErrMalformedIdentity))

	data, err := os.ReadFile(tracker.LedgerPath(testJob))
	require.NoError(t, err)
	assert.Equal(t, "a-1-2-3\n", string(data))
}

func TestRemoveCoordinateConcurrent(t *testing.T) {
	tracker := newTestTracker(t)

	content := ""
	var targets []types.BuildCoordinate
	for i := 0; i < 20; i++ {
		nvr := fmt.Sprintf("pkg-%d-1.el8", i)
		content += nvr + "\n"
		targets = append(targets, mustParse(t, nvr))
	}
	writeLedger(t, tracker, testJob, content)

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(c types.BuildCoordinate) {
			defer wg.Done()
			removed, err := tracker.RemoveCoordinate(testJob, c)
			assert.NoError(t, err)
			assert.True(t, removed)
		}(target)
	}
	wg.Wait()

	coordinates, err := tracker.RecordedCoordinates(testJob)
	require.NoError(t, err)
	assert.Empty(t, coordinates, "no removal was lost")
	assert.Equal(t, 0, tracker.locks.size())
}

func TestLedgerRejectsEscapingJobNames(t *testing.T) {
	tracker := newTestTracker(t)

	for _, job := range []string{"", "..", "a/b"} {
		_, err := tracker.RecordedCoordinates(job)
		assert.True(t, errors.Is(err, types.ErrMalformedIdentity), "job %q", job)
	}
}
