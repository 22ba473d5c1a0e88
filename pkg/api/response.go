package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// statusOf maps the error taxonomy onto HTTP: client mistakes are 400 and
// everything else 500
func statusOf(err error) int {
	if types.IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	resp := ErrorResponse{Error: err.Error()}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		resp.Error = "multiple failures"
		for _, e := range merr.Errors {
			resp.Details = append(resp.Details, e.Error())
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, code, resp)
}

// boolParam reads a boolean query parameter; anything unparseable is false
func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
