package storage

import (
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// Collection names, also used as bucket names and in the HTTP API
const (
	CollectionPlatforms      = "platforms"
	CollectionTasks          = "tasks"
	CollectionTaskVariants   = "taskVariants"
	CollectionJDKVersions    = "jdkVersions"
	CollectionBuildProviders = "buildProviders"
	CollectionProjects       = "projects"
)

// Collections lists every configuration collection
var Collections = []string{
	CollectionPlatforms,
	CollectionTasks,
	CollectionTaskVariants,
	CollectionJDKVersions,
	CollectionBuildProviders,
	CollectionProjects,
}

// Store defines the interface for configuration storage. Reads of a missing
// id fail with types.ErrNotFound; backend failures with types.ErrStorageFailure.
type Store interface {
	// Platforms
	PutPlatform(platform *types.Platform) error
	GetPlatform(id string) (*types.Platform, error)
	ListPlatforms() ([]*types.Platform, error)
	DeletePlatform(id string) error

	// Tasks
	PutTask(task *types.Task) error
	GetTask(id string) (*types.Task, error)
	ListTasks() ([]*types.Task, error)
	DeleteTask(id string) error

	// Variant dimensions
	PutTaskVariant(variant *types.TaskVariant) error
	GetTaskVariant(id string) (*types.TaskVariant, error)
	ListTaskVariants() ([]*types.TaskVariant, error)
	DeleteTaskVariant(id string) error

	// JDK versions
	PutJDKVersion(version *types.JDKVersion) error
	GetJDKVersion(id string) (*types.JDKVersion, error)
	ListJDKVersions() ([]*types.JDKVersion, error)
	DeleteJDKVersion(id string) error

	// Build providers
	PutBuildProvider(provider *types.BuildProvider) error
	GetBuildProvider(id string) (*types.BuildProvider, error)
	ListBuildProviders() ([]*types.BuildProvider, error)
	DeleteBuildProvider(id string) error

	// Projects
	PutProject(project *types.Project) error
	GetProject(id string) (*types.Project, error)
	ListProjects() ([]*types.Project, error)
	DeleteProject(id string) error

	// Snapshot reads every collection in one consistent view
	Snapshot() (*types.Snapshot, error)
	// Export returns the raw collections of one consistent view
	Export() (types.SnapshotData, error)
	// Import validates data and upserts all of it in one transaction
	Import(data types.SnapshotData) error
	// Counts returns the number of objects per collection
	Counts() (map[string]int, error)

	// Utility
	Close() error
}
