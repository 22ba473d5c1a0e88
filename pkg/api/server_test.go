package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/client"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/lifecycle"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/manager"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/storage"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const buildJob = "P1-el8.x86_64-build-jdk17-prov1"

func testData() types.SnapshotData {
	return types.SnapshotData{
		Platforms: []*types.Platform{
			{ID: "el8-x86_64", OS: "el", Version: "8", Architecture: "x86_64", Providers: []string{"vagrant"}},
		},
		Tasks: []*types.Task{
			{ID: "build", Type: types.TaskTypeBuild, AppliesToBuild: true},
		},
		JDKVersions: []*types.JDKVersion{
			{ID: "jdk17", Version: "17", PackageNames: []string{"java-17-openjdk"}},
		},
		BuildProviders: []*types.BuildProvider{{ID: "prov1"}, {ID: "vagrant"}},
		Projects: []*types.Project{
			{
				ID:             "P1",
				Type:           types.ProjectTypeJDK,
				Product:        types.Product{JDK: "jdk17", PackageName: "java-17-openjdk"},
				Platforms:      []string{"el8-x86_64"},
				Tasks:          []string{"build"},
				BuildProviders: []string{"prov1"},
			},
		},
	}
}

type testEnv struct {
	server  *Server
	http    *httptest.Server
	tracker *lifecycle.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	store, err := storage.NewBoltStore(filepath.Join(root, "data"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Import(testData()))

	jobsFile := filepath.Join(root, "jobs.txt")
	require.NoError(t, os.WriteFile(jobsFile, []byte(buildJob+"\nold-job\n"), 0644))

	tracker := lifecycle.NewTracker(lifecycle.Config{
		DBRoot:   filepath.Join(root, "builds"),
		JobsRoot: filepath.Join(root, "jobs"),
	})
	s := NewServer(manager.NewManager(manager.Config{
		Store:   store,
		Lister:  &client.FileLister{Path: jobsFile},
		Tracker: tracker,
		DataDir: filepath.Join(root, "data"),
	}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: s, http: ts, tracker: tracker}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestJobsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/get/jobs?mode=orphansOtool", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"old-job"}, decode[manager.JobsResult](t, resp).Jobs)

	resp = env.do(t, http.MethodGet, "/get/jobs?mode=allOtool&URL=http://j/job/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[manager.JobsResult](t, resp)
	assert.Equal(t, []string{"http://j/job/" + buildJob}, result.Jobs)
	assert.Empty(t, result.Failed)
}

func TestJobsEndpointReportsFailedProjects(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.server.manager.Store().PutProject(&types.Project{
		ID:             "P2",
		Type:           types.ProjectTypeJDK,
		Product:        types.Product{JDK: "jdk21", PackageName: "java-21-openjdk"},
		Platforms:      []string{"el8-x86_64"},
		Tasks:          []string{"build"},
		BuildProviders: []string{"prov1"},
	}))

	resp := env.do(t, http.MethodGet, "/get/jobs?mode=allOtool", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[manager.JobsResult](t, resp)
	assert.Equal(t, []string{buildJob}, result.Jobs)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "P2", result.Failed[0].Project)
}

func TestErrorStatus(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "missing mode", path: "/get/jobs", want: http.StatusBadRequest},
		{name: "bad regex", path: "/get/jobs?mode=allOtool&exclude=(", want: http.StatusBadRequest},
		{name: "malformed job", path: "/get/job?name=nodashes", want: http.StatusBadRequest},
		{name: "malformed nvr", path: "/get/nvr?nvr=x", want: http.StatusBadRequest},
		{name: "unknown root", path: "/get/path?root=tmp", want: http.StatusBadRequest},
		{name: "no expectation", path: "/misc/re/archesExpected?nvr=a-1-2", want: http.StatusBadRequest},
		{name: "unknown collection", path: "/config/servers", want: http.StatusBadRequest},
		{name: "unknown route", path: "/get/everything", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
			if tt.want == http.StatusBadRequest {
				assert.NotEmpty(t, decode[ErrorResponse](t, resp).Error)
			}
		})
	}
}

func TestInvalidExpectationIsServerError(t *testing.T) {
	env := newTestEnv(t)
	c, err := env.server.manager.ParseCoordinate("a-1-2")
	require.NoError(t, err)
	path := env.tracker.RecordPath(env.tracker.CoordinateDir(c))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	resp := env.do(t, http.MethodGet, "/misc/re/archesExpected?nvr=a-1-2", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRedeployEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ledger := env.tracker.LedgerPath(buildJob)
	require.NoError(t, os.MkdirAll(filepath.Dir(ledger), 0755))
	require.NoError(t, os.WriteFile(ledger, []byte("java-17-openjdk-17.0.9-1.el8\n"), 0644))

	resp := env.do(t, http.MethodGet, "/misc/re/build?nvr=java-17-openjdk-17.0.9-1.el8", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[manager.RedeployResult](t, resp)
	assert.Equal(t, []string{buildJob}, preview.Affected)
	assert.False(t, preview.Done)

	resp = env.do(t, http.MethodGet, "/misc/re/build?nvr=java-17-openjdk-17.0.9-1.el8&do=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{buildJob}, decode[manager.RedeployResult](t, resp).Removed)

	resp = env.do(t, http.MethodGet, "/misc/re/build", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[manager.RedeployResult](t, resp).NVRs)
}

func TestConfigCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/config/buildProviders/koji", `{"topUrl":"https://koji"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "koji", decode[types.BuildProvider](t, resp).ID)

	resp = env.do(t, http.MethodGet, "/config/buildProviders/koji", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://koji", decode[types.BuildProvider](t, resp).TopURL)

	resp = env.do(t, http.MethodPut, "/config/buildProviders/koji", `{"id":"other"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/config/tasks/tck-x", `{"type":"TEST"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "delimiters are rejected at write time")

	resp = env.do(t, http.MethodPut, "/config/platforms/p", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/config/buildProviders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]types.BuildProvider](t, resp), 3)

	resp = env.do(t, http.MethodDelete, "/config/buildProviders/koji", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/config/buildProviders/koji", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHelpAndGetters(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/get/help", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	resp = env.do(t, http.MethodGet, "/get/jdkVersion?product=java-17-openjdk", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jdk17", decode[string](t, resp))

	resp = env.do(t, http.MethodGet, "/get/job?name="+buildJob, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := decode[types.JobIdentity](t, resp)
	assert.Equal(t, types.JobKindBuild, id.Kind)
	assert.Equal(t, "prov1", id.Key.Provider)

	resp = env.do(t, http.MethodGet, "/get/projects?type=JDK_TEST_PROJECT", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{}, decode[[]string](t, resp))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, env.http.URL+"/get/products", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestGRPCHealthStatus(t *testing.T) {
	env := newTestEnv(t)
	req := &healthpb.HealthCheckRequest{Service: ServiceName}

	resp, err := env.server.health.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
