package manager

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// Path roots known to the path getter
const (
	RootBuilds      = "builds"
	RootConfigs     = "configs"
	RootJenkinsJobs = "jenkinsJobs"
)

// JDKVersionOf returns the jdk version id a product package or a project
// belongs to. The product wins when both are given.
func (m *Manager) JDKVersionOf(product, project string) (string, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return "", err
	}
	if product != "" {
		for _, v := range snapshot.JDKVersions() {
			if v.HasPackage(product) {
				return v.ID, nil
			}
		}
	}
	if project != "" {
		p, ok := snapshot.Project(project)
		if !ok {
			return "", types.Errorf(types.ErrNotFound, "project %s", project)
		}
		return p.Product.JDK, nil
	}
	return "", types.Errorf(types.ErrMissingParameter, "product or project is required")
}

// JDKVersions returns all jdk version ids, sorted
func (m *Manager) JDKVersions() ([]string, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range snapshot.JDKVersions() {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

// Products returns every product package of every jdk version, sorted
func (m *Manager) Products() ([]string, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	var products []string
	for _, v := range snapshot.JDKVersions() {
		products = append(products, v.PackageNames...)
	}
	sort.Strings(products)
	return products, nil
}

// Projects returns project ids, optionally restricted to one type or to the
// projects of one product package
func (m *Manager) Projects(projectType, product string) ([]string, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	switch types.ProjectType(projectType) {
	case "", types.ProjectTypeJDK, types.ProjectTypeJDKTest:
	default:
		return nil, types.Errorf(types.ErrUnknownReference, "project type %q", projectType)
	}

	var ids []string
	for _, p := range snapshot.Projects() {
		if projectType != "" && p.Type != types.ProjectType(projectType) {
			continue
		}
		if product != "" && p.Product.PackageName != product {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Platforms returns all platforms sorted by id
func (m *Manager) Platforms() ([]*types.Platform, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	return snapshot.Platforms(), nil
}

// KojiArches returns the distinct koji architectures of all platforms
func (m *Manager) KojiArches() ([]string, error) {
	snapshot, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	return snapshot.KojiArches(), nil
}

// Path returns the absolute location of one of the configured roots
func (m *Manager) Path(root string) (string, error) {
	var path string
	switch root {
	case RootBuilds:
		path = m.tracker.Config().DBRoot
	case RootConfigs:
		path = m.dataDir
	case RootJenkinsJobs:
		path = m.tracker.Config().JobsRoot
	case "":
		return "", types.Errorf(types.ErrMissingParameter, "root is required")
	default:
		return "", types.Errorf(types.ErrUnknownReference, "root %q", root)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Help describes the query surface
func Help() string {
	var b strings.Builder
	b.WriteString("otool queries\n\n")
	b.WriteString("/get/jobs?mode=<mode>[&URL=prefix][&exclude=re,..][&include=re,..][&project=id]\n")
	b.WriteString("  modes:\n")
	for _, mode := range JobsModes {
		fmt.Fprintf(&b, "    %s\n", mode)
	}
	b.WriteString("  include removes matching jobs exactly like exclude\n")
	b.WriteString("  answers {jobs, failed}; failed names projects whose configuration does not resolve\n")
	b.WriteString("/get/jdkVersion?product=<package>|project=<id>\n")
	b.WriteString("/get/jdkVersions\n")
	b.WriteString("/get/products\n")
	b.WriteString("/get/projects[?type=JDK_PROJECT|JDK_TEST_PROJECT][&product=<package>]\n")
	b.WriteString("/get/platforms\n")
	b.WriteString("/get/kojiArches\n")
	fmt.Fprintf(&b, "/get/path?root=%s|%s|%s\n", RootBuilds, RootConfigs, RootJenkinsJobs)
	b.WriteString("/get/job?name=<job>\n")
	b.WriteString("/get/nvr?nvr=<n-v-r[.a]>\n")
	b.WriteString("/misc/re/build and /misc/re/test\n")
	b.WriteString("  [nvr=<n-v-r>][&project=][&platform=][&task=][&jdk=][&provider=][&variants=v,..][&regex=re,..][&do=true]\n")
	b.WriteString("  without nvr lists processed builds, with nvr lists affected jobs, do=true removes the build from their ledgers\n")
	b.WriteString("/misc/re/archesExpected[?nvr=<n-v-r>][&set=a b c][&do=true]\n")
	b.WriteString("  without nvr lists every record, used arches and koji arches\n")
	return b.String()
}
