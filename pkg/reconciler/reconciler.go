package reconciler

import (
	"sort"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
)

// OrphansOnOrchestrator returns the jobs the orchestrator has that the
// configuration no longer declares (actual \ declared)
func OrphansOnOrchestrator(actual, declared []string) []string {
	return difference(actual, declared)
}

// OrphansOnDeclared returns the jobs the configuration declares that the
// orchestrator lacks (declared \ actual)
func OrphansOnDeclared(declared, actual []string) []string {
	return difference(declared, actual)
}

// Union returns the sorted union of the sets without duplicates
func Union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, name := range set {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return sorted(out)
}

// Intersection returns the sorted names present in both sets
func Intersection(a, b []string) []string {
	in := toSet(b)
	seen := make(map[string]struct{})
	var out []string
	for _, name := range a {
		if _, ok := in[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return sorted(out)
}

// Report is the full comparison of a declared and an actual job population
type Report struct {
	Declared  []string `json:"declared"`
	Actual    []string `json:"actual"`
	Missing   []string `json:"missing"`   // declared \ actual
	Redundant []string `json:"redundant"` // actual \ declared
	Common    []string `json:"common"`
}

// Reconcile compares the two populations
func Reconcile(declared, actual []string) Report {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)

	report := Report{
		Declared:  Union(declared),
		Actual:    Union(actual),
		Missing:   OrphansOnDeclared(declared, actual),
		Redundant: OrphansOnOrchestrator(actual, declared),
		Common:    Intersection(declared, actual),
	}
	metrics.OrphanJobs.WithLabelValues("missing").Set(float64(len(report.Missing)))
	metrics.OrphanJobs.WithLabelValues("redundant").Set(float64(len(report.Redundant)))
	return report
}

func difference(a, b []string) []string {
	exclude := toSet(b)
	seen := make(map[string]struct{})
	var out []string
	for _, name := range a {
		if _, ok := exclude[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return sorted(out)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func sorted(names []string) []string {
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return names
}
