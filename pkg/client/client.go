package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// JobLister reports the jobs the orchestrator currently has. Names are opaque.
type JobLister interface {
	ListJobNames(ctx context.Context) ([]string, error)
}

// DefaultTimeout bounds one orchestrator listing when no timeout is configured
const DefaultTimeout = 30 * time.Second

// Config holds the Jenkins connection settings
type Config struct {
	URL     string
	User    string
	Token   string
	Timeout time.Duration
}

// JenkinsClient lists jobs through the Jenkins JSON API
type JenkinsClient struct {
	baseURL    *url.URL
	user       string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewJenkinsClient creates a client for the Jenkins instance at cfg.URL
func NewJenkinsClient(cfg Config) (*JenkinsClient, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.URL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "jenkins url %q is not absolute", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &JenkinsClient{
		baseURL:    base,
		user:       cfg.User,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("client"),
	}, nil
}

type jobList struct {
	Jobs []struct {
		Name string `json:"name"`
	} `json:"jobs"`
}

// ListJobNames returns the sorted names of all top level jobs
func (c *JenkinsClient) ListJobNames(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "api/json", RawQuery: "tree=jobs%5Bname%5D"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to build request: %v", err)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to list jenkins jobs: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, types.Errorf(types.ErrIOFailure, "jenkins answered %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var list jobList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to decode jenkins job list: %v", err)
	}

	names := make([]string, 0, len(list.Jobs))
	for _, job := range list.Jobs {
		if job.Name != "" {
			names = append(names, job.Name)
		}
	}
	sort.Strings(names)
	c.logger.Debug().Int("jobs", len(names)).Dur("duration", time.Since(start)).Msg("Listed jenkins jobs")
	return names, nil
}

// FileLister reads job names from a text file, one per line. Blank lines and
// lines starting with '#' are ignored.
type FileLister struct {
	Path string
}

func (l *FileLister) ListJobNames(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to read job list: %v", err)
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	sort.Strings(names)
	return names, nil
}

// DirLister treats every directory under the orchestrator jobs root as a job
type DirLister struct {
	Root string
}

func (l *DirLister) ListJobNames(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, types.Errorf(types.ErrIOFailure, "failed to list jobs root: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// NewLister picks the lister for the configured source: the Jenkins API when
// a URL is set, then a static job file, then the jobs root directory
func NewLister(cfg Config, jobsFile, jobsRoot string) (JobLister, error) {
	switch {
	case cfg.URL != "":
		return NewJenkinsClient(cfg)
	case jobsFile != "":
		return &FileLister{Path: jobsFile}, nil
	case jobsRoot != "":
		return &DirLister{Root: jobsRoot}, nil
	default:
		return nil, fmt.Errorf("no job source configured: set jenkins.url, jenkins.jobs-file or jobs-root")
	}
}
