package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	bolt "go.etcd.io/bbolt"
)

const dbFileName = "otool.db"

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, types.Errorf(types.ErrStorageFailure, "failed to create data dir: %v", err)
	}
	dbPath := filepath.Join(dataDir, dbFileName)

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, types.Errorf(types.ErrStorageFailure, "failed to open database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, types.Errorf(types.ErrStorageFailure, "%v", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// storageError keeps typed errors and turns everything else into a storage failure
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}
	return types.Errorf(types.ErrStorageFailure, "%s: %v", op, err)
}

func putObject(tx *bolt.Tx, bucket, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(bucket)).Put([]byte(id), data)
}

func getObject[T any](tx *bolt.Tx, bucket, id string) (*T, error) {
	data := tx.Bucket([]byte(bucket)).Get([]byte(id))
	if data == nil {
		return nil, types.Errorf(types.ErrNotFound, "%s/%s", bucket, id)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// listObjects returns the bucket content ordered by id
func listObjects[T any](tx *bolt.Tx, bucket string) ([]*T, error) {
	var out []*T
	err := tx.Bucket([]byte(bucket)).ForEach(func(k, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("corrupt %s/%s: %w", bucket, k, err)
		}
		out = append(out, &v)
		return nil
	})
	return out, err
}

func deleteObject(tx *bolt.Tx, bucket, id string) error {
	b := tx.Bucket([]byte(bucket))
	if b.Get([]byte(id)) == nil {
		return types.Errorf(types.ErrNotFound, "%s/%s", bucket, id)
	}
	return b.Delete([]byte(id))
}

func (s *BoltStore) put(bucket, id string, v any) error {
	return storageError("put "+bucket, s.db.Update(func(tx *bolt.Tx) error {
		return putObject(tx, bucket, id, v)
	}))
}

func get[T any](s *BoltStore, bucket, id string) (*T, error) {
	var v *T
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		v, err = getObject[T](tx, bucket, id)
		return err
	})
	if err != nil {
		return nil, storageError("get "+bucket, err)
	}
	return v, nil
}

func list[T any](s *BoltStore, bucket string) ([]*T, error) {
	var out []*T
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		out, err = listObjects[T](tx, bucket)
		return err
	})
	return out, storageError("list "+bucket, err)
}

func (s *BoltStore) delete(bucket, id string) error {
	return storageError("delete "+bucket, s.db.Update(func(tx *bolt.Tx) error {
		return deleteObject(tx, bucket, id)
	}))
}

// Platform operations
func (s *BoltStore) PutPlatform(platform *types.Platform) error {
	if err := identity.ValidatePlatform(platform); err != nil {
		return err
	}
	return storageError("put platforms", s.db.Update(func(tx *bolt.Tx) error {
		platforms, err := listObjects[types.Platform](tx, CollectionPlatforms)
		if err != nil {
			return err
		}
		for _, other := range platforms {
			if other.ID != platform.ID && other.Triad() == platform.Triad() {
				return types.Errorf(types.ErrInvalidConfiguration, "platform %s already uses triad %s", other.ID, platform.Triad())
			}
		}
		return putObject(tx, CollectionPlatforms, platform.ID, platform)
	}))
}

func (s *BoltStore) GetPlatform(id string) (*types.Platform, error) {
	return get[types.Platform](s, CollectionPlatforms, id)
}

func (s *BoltStore) ListPlatforms() ([]*types.Platform, error) {
	return list[types.Platform](s, CollectionPlatforms)
}

func (s *BoltStore) DeletePlatform(id string) error {
	return s.delete(CollectionPlatforms, id)
}

// Task operations
func (s *BoltStore) PutTask(task *types.Task) error {
	if err := identity.ValidateTask(task); err != nil {
		return err
	}
	return s.put(CollectionTasks, task.ID, task)
}

func (s *BoltStore) GetTask(id string) (*types.Task, error) {
	return get[types.Task](s, CollectionTasks, id)
}

func (s *BoltStore) ListTasks() ([]*types.Task, error) {
	return list[types.Task](s, CollectionTasks)
}

func (s *BoltStore) DeleteTask(id string) error {
	return s.delete(CollectionTasks, id)
}

// Variant dimension operations
func (s *BoltStore) PutTaskVariant(variant *types.TaskVariant) error {
	if err := identity.ValidateTaskVariant(variant); err != nil {
		return err
	}
	return s.put(CollectionTaskVariants, variant.ID, variant)
}

func (s *BoltStore) GetTaskVariant(id string) (*types.TaskVariant, error) {
	return get[types.TaskVariant](s, CollectionTaskVariants, id)
}

func (s *BoltStore) ListTaskVariants() ([]*types.TaskVariant, error) {
	return list[types.TaskVariant](s, CollectionTaskVariants)
}

func (s *BoltStore) DeleteTaskVariant(id string) error {
	return s.delete(CollectionTaskVariants, id)
}

// JDK version operations
func (s *BoltStore) PutJDKVersion(version *types.JDKVersion) error {
	if err := identity.ValidateJDKVersion(version); err != nil {
		return err
	}
	return s.put(CollectionJDKVersions, version.ID, version)
}

func (s *BoltStore) GetJDKVersion(id string) (*types.JDKVersion, error) {
	return get[types.JDKVersion](s, CollectionJDKVersions, id)
}

func (s *BoltStore) ListJDKVersions() ([]*types.JDKVersion, error) {
	return list[types.JDKVersion](s, CollectionJDKVersions)
}

func (s *BoltStore) DeleteJDKVersion(id string) error {
	return s.delete(CollectionJDKVersions, id)
}

// Build provider operations
func (s *BoltStore) PutBuildProvider(provider *types.BuildProvider) error {
	if err := identity.ValidateBuildProvider(provider); err != nil {
		return err
	}
	return s.put(CollectionBuildProviders, provider.ID, provider)
}

func (s *BoltStore) GetBuildProvider(id string) (*types.BuildProvider, error) {
	return get[types.BuildProvider](s, CollectionBuildProviders, id)
}

func (s *BoltStore) ListBuildProviders() ([]*types.BuildProvider, error) {
	return list[types.BuildProvider](s, CollectionBuildProviders)
}

func (s *BoltStore) DeleteBuildProvider(id string) error {
	return s.delete(CollectionBuildProviders, id)
}

// Project operations
func (s *BoltStore) PutProject(project *types.Project) error {
	if err := identity.ValidateProject(project); err != nil {
		return err
	}
	return s.put(CollectionProjects, project.ID, project)
}

func (s *BoltStore) GetProject(id string) (*types.Project, error) {
	return get[types.Project](s, CollectionProjects, id)
}

func (s *BoltStore) ListProjects() ([]*types.Project, error) {
	return list[types.Project](s, CollectionProjects)
}

func (s *BoltStore) DeleteProject(id string) error {
	return s.delete(CollectionProjects, id)
}

func readAll(tx *bolt.Tx) (types.SnapshotData, error) {
	var (
		data types.SnapshotData
		err  error
	)
	if data.Platforms, err = listObjects[types.Platform](tx, CollectionPlatforms); err != nil {
		return data, err
	}
	if data.Tasks, err = listObjects[types.Task](tx, CollectionTasks); err != nil {
		return data, err
	}
	if data.TaskVariants, err = listObjects[types.TaskVariant](tx, CollectionTaskVariants); err != nil {
		return data, err
	}
	if data.JDKVersions, err = listObjects[types.JDKVersion](tx, CollectionJDKVersions); err != nil {
		return data, err
	}
	if data.BuildProviders, err = listObjects[types.BuildProvider](tx, CollectionBuildProviders); err != nil {
		return data, err
	}
	data.Projects, err = listObjects[types.Project](tx, CollectionProjects)
	return data, err
}

// Export reads every collection inside a single read transaction
func (s *BoltStore) Export() (types.SnapshotData, error) {
	var data types.SnapshotData
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		data, err = readAll(tx)
		return err
	})
	return data, storageError("export", err)
}

// Snapshot returns one consistent configuration version
func (s *BoltStore) Snapshot() (*types.Snapshot, error) {
	data, err := s.Export()
	if err != nil {
		return nil, err
	}
	return types.NewSnapshot(data), nil
}

// Import upserts data. The merged platforms must still have unique triads.
func (s *BoltStore) Import(data types.SnapshotData) error {
	if err := identity.ValidateSnapshotData(data); err != nil {
		return err
	}
	return storageError("import", s.db.Update(func(tx *bolt.Tx) error {
		existing, err := listObjects[types.Platform](tx, CollectionPlatforms)
		if err != nil {
			return err
		}
		merged := make(map[string]*types.Platform, len(existing)+len(data.Platforms))
		for _, p := range existing {
			merged[p.ID] = p
		}
		for _, p := range data.Platforms {
			merged[p.ID] = p
		}
		triads := make(map[string]string, len(merged))
		for _, p := range merged {
			if other, ok := triads[p.Triad()]; ok {
				return types.Errorf(types.ErrInvalidConfiguration, "platforms %s and %s share triad %s", other, p.ID, p.Triad())
			}
			triads[p.Triad()] = p.ID
		}

		for _, p := range data.Platforms {
			if err := putObject(tx, CollectionPlatforms, p.ID, p); err != nil {
				return err
			}
		}
		for _, t := range data.Tasks {
			if err := putObject(tx, CollectionTasks, t.ID, t); err != nil {
				return err
			}
		}
		for _, v := range data.TaskVariants {
			if err := putObject(tx, CollectionTaskVariants, v.ID, v); err != nil {
				return err
			}
		}
		for _, v := range data.JDKVersions {
			if err := putObject(tx, CollectionJDKVersions, v.ID, v); err != nil {
				return err
			}
		}
		for _, p := range data.BuildProviders {
			if err := putObject(tx, CollectionBuildProviders, p.ID, p); err != nil {
				return err
			}
		}
		for _, p := range data.Projects {
			if err := putObject(tx, CollectionProjects, p.ID, p); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Counts returns the number of keys in every collection
func (s *BoltStore) Counts() (map[string]int, error) {
	counts := make(map[string]int, len(Collections))
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, bucket := range Collections {
			counts[bucket] = tx.Bucket([]byte(bucket)).Stats().KeyN
		}
		return nil
	})
	return counts, storageError("count", err)
}

// Backup writes a consistent copy of the database file to path
func (s *BoltStore) Backup(path string) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(path, 0600)
	})
	return storageError("backup", err)
}
