package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/client"
)

// ListerChecker checks that the orchestrator answers a job listing
type ListerChecker struct {
	Lister client.JobLister
}

// Check performs the listing
func (c *ListerChecker) Check(ctx context.Context) Result {
	start := time.Now()
	names, err := c.Lister.ListJobNames(ctx)
	if err != nil {
		return result(start, false, fmt.Sprintf("listing failed: %v", err))
	}
	return result(start, true, fmt.Sprintf("%d jobs", len(names)))
}

// Name returns the component name
func (c *ListerChecker) Name() string {
	return "orchestrator"
}

// DirChecker checks that a configured root is a readable directory
type DirChecker struct {
	Component string
	Path      string
}

// Check stats and opens the directory
func (c *DirChecker) Check(ctx context.Context) Result {
	start := time.Now()
	info, err := os.Stat(c.Path)
	if err != nil {
		return result(start, false, err.Error())
	}
	if !info.IsDir() {
		return result(start, false, fmt.Sprintf("%s is not a directory", c.Path))
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return result(start, false, err.Error())
	}
	f.Close()
	return result(start, true, "")
}

// Name returns the component name
func (c *DirChecker) Name() string {
	return c.Component
}
