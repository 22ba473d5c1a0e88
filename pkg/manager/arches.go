package manager

import (
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/identity"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/lifecycle"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// ArchesRequest inspects or changes arches expectations
type ArchesRequest struct {
	NVR string
	Set string // Space or comma separated arches to write at the exact coordinate
	Do  bool
}

// ArchesResult carries one of three answers: a lookup (Arches, Source), a
// write or its preview (Path, Previous, Set, Done), or an overview of every
// record (Records, UsedArches, KojiArches)
type ArchesResult struct {
	NVR      string             `json:"nvr,omitempty"`
	Arches   []string           `json:"arches,omitempty"`
	Source   string             `json:"source,omitempty"`
	Path     string             `json:"path,omitempty"`
	Previous *types.Expectation `json:"previous,omitempty"`
	Set      []string           `json:"set,omitempty"`
	Done     bool               `json:"done,omitempty"`

	Records    map[string]types.Expectation `json:"records,omitempty"`
	UsedArches []string                     `json:"usedArches,omitempty"`
	KojiArches []string                     `json:"kojiArches,omitempty"`
}

// Arches answers an arches request
func (m *Manager) Arches(req ArchesRequest) (*ArchesResult, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}

	if req.NVR == "" {
		records, err := m.tracker.DiscoverAllExpectations(m.tracker.Config().DBRoot)
		if err != nil {
			return nil, err
		}
		return &ArchesResult{
			Records:    records,
			UsedArches: lifecycle.UsedArches(records),
			KojiArches: snapshot.KojiArches(),
		}, nil
	}

	parser := identity.ParserFor(snapshot)
	c, err := parser.Parse(req.NVR)
	if err != nil {
		return nil, err
	}
	tracker := m.tracker.WithParser(parser)
	result := &ArchesResult{NVR: identity.EncodeBuildCoordinate(c)}

	if req.Set == "" {
		arches, source, err := tracker.ExpectedArchitectures(c)
		if err != nil {
			return nil, err
		}
		result.Arches = arches
		result.Source = source
		return result, nil
	}

	result.Set = strings.Fields(strings.ReplaceAll(req.Set, ",", " "))
	if len(result.Set) == 0 {
		return nil, types.Errorf(types.ErrMissingParameter, "set names no architecture")
	}
	if !req.Do {
		previous, path, err := tracker.ExactExpectation(c)
		if err != nil {
			return nil, err
		}
		result.Previous = previous
		result.Path = path
		return result, nil
	}

	previous, err := tracker.SetExpectedArchitectures(c, result.Set)
	if err != nil {
		return nil, err
	}
	result.Previous = previous
	result.Path = tracker.RecordPath(tracker.CoordinateDir(c))
	result.Done = true
	return result, nil
}
