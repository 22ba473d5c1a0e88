package api

import (
	"encoding/json"
	"net/http"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/storage"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// maxBodyBytes bounds configuration documents accepted over HTTP
const maxBodyBytes = 1 << 20

type collectionOps struct {
	list   func(storage.Store) (any, error)
	get    func(storage.Store, string) (any, error)
	put    func(storage.Store, string, *json.Decoder) (any, error)
	delete func(storage.Store, string) error
}

// opsFor binds one collection's store methods. idOf exposes the object's id
// field so a PUT can fill it from the path or reject a mismatch.
func opsFor[T any](
	list func(storage.Store) ([]*T, error),
	get func(storage.Store, string) (*T, error),
	put func(storage.Store, *T) error,
	del func(storage.Store, string) error,
	idOf func(*T) *string,
) collectionOps {
	return collectionOps{
		list: func(s storage.Store) (any, error) {
			items, err := list(s)
			if items == nil {
				items = []*T{}
			}
			return items, err
		},
		get: func(s storage.Store, id string) (any, error) {
			return get(s, id)
		},
		put: func(s storage.Store, id string, dec *json.Decoder) (any, error) {
			obj := new(T)
			if err := dec.Decode(obj); err != nil {
				return nil, types.Errorf(types.ErrInvalidConfiguration, "invalid document: %v", err)
			}
			objID := idOf(obj)
			switch *objID {
			case "":
				*objID = id
			case id:
			default:
				return nil, types.Errorf(types.ErrInvalidConfiguration, "document id %q does not match path id %q", *objID, id)
			}
			if err := put(s, obj); err != nil {
				return nil, err
			}
			return obj, nil
		},
		delete: del,
	}
}

var collections = map[string]collectionOps{
	storage.CollectionPlatforms: opsFor(
		storage.Store.ListPlatforms, storage.Store.GetPlatform, storage.Store.PutPlatform, storage.Store.DeletePlatform,
		func(p *types.Platform) *string { return &p.ID },
	),
	storage.CollectionTasks: opsFor(
		storage.Store.ListTasks, storage.Store.GetTask, storage.Store.PutTask, storage.Store.DeleteTask,
		func(t *types.Task) *string { return &t.ID },
	),
	storage.CollectionTaskVariants: opsFor(
		storage.Store.ListTaskVariants, storage.Store.GetTaskVariant, storage.Store.PutTaskVariant, storage.Store.DeleteTaskVariant,
		func(v *types.TaskVariant) *string { return &v.ID },
	),
	storage.CollectionJDKVersions: opsFor(
		storage.Store.ListJDKVersions, storage.Store.GetJDKVersion, storage.Store.PutJDKVersion, storage.Store.DeleteJDKVersion,
		func(v *types.JDKVersion) *string { return &v.ID },
	),
	storage.CollectionBuildProviders: opsFor(
		storage.Store.ListBuildProviders, storage.Store.GetBuildProvider, storage.Store.PutBuildProvider, storage.Store.DeleteBuildProvider,
		func(p *types.BuildProvider) *string { return &p.ID },
	),
	storage.CollectionProjects: opsFor(
		storage.Store.ListProjects, storage.Store.GetProject, storage.Store.PutProject, storage.Store.DeleteProject,
		func(p *types.Project) *string { return &p.ID },
	),
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (collectionOps, bool) {
	name := r.PathValue("collection")
	ops, ok := collections[name]
	if !ok {
		s.writeError(w, r, types.Errorf(types.ErrUnknownReference, "collection %q", name))
	}
	return ops, ok
}

func (s *Server) handleConfigList(w http.ResponseWriter, r *http.Request) {
	ops, ok := s.collection(w, r)
	if !ok {
		return
	}
	items, err := ops.list(s.manager.Store())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	ops, ok := s.collection(w, r)
	if !ok {
		return
	}
	item, err := ops.get(s.manager.Store(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	ops, ok := s.collection(w, r)
	if !ok {
		return
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	item, err := ops.put(s.manager.Store(), r.PathValue("id"), dec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info().Str("collection", r.PathValue("collection")).Str("id", r.PathValue("id")).Msg("Configuration object stored")
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleConfigDelete(w http.ResponseWriter, r *http.Request) {
	ops, ok := s.collection(w, r)
	if !ok {
		return
	}
	if err := ops.delete(s.manager.Store(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info().Str("collection", r.PathValue("collection")).Str("id", r.PathValue("id")).Msg("Configuration object deleted")
	w.WriteHeader(http.StatusNoContent)
}
