package api

import (
	"net/http"
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/manager"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.manager.Jobs(r.Context(), manager.JobsQuery{
		Mode:    manager.JobsMode(q.Get("mode")),
		URL:     q.Get("URL"),
		Exclude: q.Get("exclude"),
		Include: q.Get("include"),
		Project: q.Get("project"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleJDKVersion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := s.manager.JDKVersionOf(q.Get("product"), q.Get("project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleJDKVersions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.JDKVersions()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ids))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.manager.Products()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ids, err := s.manager.Projects(q.Get("type"), q.Get("product"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ids))
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.manager.Platforms()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if platforms == nil {
		platforms = []*types.Platform{}
	}
	writeJSON(w, http.StatusOK, platforms)
}

func (s *Server) handleKojiArches(w http.ResponseWriter, r *http.Request) {
	arches, err := s.manager.KojiArches()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(arches))
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	path, err := s.manager.Path(r.URL.Query().Get("root"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, r, types.Errorf(types.ErrMissingParameter, "name is required"))
		return
	}
	id, err := s.manager.DecodeJob(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleNVR(w http.ResponseWriter, r *http.Request) {
	nvr := r.URL.Query().Get("nvr")
	if nvr == "" {
		s.writeError(w, r, types.Errorf(types.ErrMissingParameter, "nvr is required"))
		return
	}
	c, err := s.manager.ParseCoordinate(nvr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRedeployBuild(w http.ResponseWriter, r *http.Request) {
	s.redeploy(w, r, types.JobKindBuild)
}

func (s *Server) handleRedeployTest(w http.ResponseWriter, r *http.Request) {
	s.redeploy(w, r, types.JobKindTest)
}

func (s *Server) redeploy(w http.ResponseWriter, r *http.Request, kind types.JobKind) {
	q := r.URL.Query()
	var variants []string
	for _, v := range strings.Split(q.Get("variants"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			variants = append(variants, v)
		}
	}
	result, err := s.manager.Redeploy(manager.RedeployRequest{
		Kind:     kind,
		NVR:      q.Get("nvr"),
		Project:  q.Get("project"),
		Platform: q.Get("platform"),
		Task:     q.Get("task"),
		JDK:      q.Get("jdk"),
		Provider: q.Get("provider"),
		Variants: variants,
		Regex:    q.Get("regex"),
		Do:       boolParam(r, "do"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleArchesExpected(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.manager.Arches(manager.ArchesRequest{
		NVR: q.Get("nvr"),
		Set: q.Get("set"),
		Do:  boolParam(r, "do"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	writeText(w, manager.Help())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
