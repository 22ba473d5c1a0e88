package identity

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// ValidateSegment rejects values that would make job names ambiguous. Values
// are never escaped, so any delimiter inside one is a configuration error.
func ValidateSegment(field, value string, delimiters ...string) error {
	if value == "" {
		return types.Errorf(types.ErrInvalidConfiguration, "%s is empty", field)
	}
	for _, d := range delimiters {
		if strings.Contains(value, d) {
			return types.Errorf(types.ErrInvalidConfiguration, "%s %q contains %q", field, value, d)
		}
	}
	return nil
}

func ValidatePlatform(p *types.Platform) error {
	var result *multierror.Error
	result = multierror.Append(result,
		ValidateSegment("platform id", p.ID),
		ValidateSegment("platform os", p.OS, SegmentDelimiter, ValueDelimiter),
		ValidateSegment("platform version", p.Version, SegmentDelimiter, ValueDelimiter),
		ValidateSegment("platform architecture", p.Architecture, SegmentDelimiter, ValueDelimiter),
	)
	for _, provider := range p.Providers {
		result = multierror.Append(result, ValidateSegment(fmt.Sprintf("platform %s provider", p.ID), provider, SegmentDelimiter))
	}
	return result.ErrorOrNil()
}

func ValidateTask(t *types.Task) error {
	var result *multierror.Error
	result = multierror.Append(result, ValidateSegment("task id", t.ID, SegmentDelimiter))
	if t.Type != types.TaskTypeBuild && t.Type != types.TaskTypeTest {
		result = multierror.Append(result, types.Errorf(types.ErrInvalidConfiguration, "task %s has type %q", t.ID, t.Type))
	}
	return result.ErrorOrNil()
}

func ValidateTaskVariant(v *types.TaskVariant) error {
	var result *multierror.Error
	result = multierror.Append(result, ValidateSegment("variant id", v.ID, SegmentDelimiter))
	for _, value := range v.Values {
		result = multierror.Append(result, ValidateSegment(fmt.Sprintf("variant %s value", v.ID), value, SegmentDelimiter, ValueDelimiter))
	}
	if v.DefaultValue != "" && !v.HasValue(v.DefaultValue) {
		result = multierror.Append(result, types.Errorf(types.ErrInvalidConfiguration, "variant %s default %q is not one of its values", v.ID, v.DefaultValue))
	}
	return result.ErrorOrNil()
}

func ValidateJDKVersion(v *types.JDKVersion) error {
	return ValidateSegment("jdk version id", v.ID, SegmentDelimiter)
}

func ValidateBuildProvider(p *types.BuildProvider) error {
	return ValidateSegment("provider id", p.ID, SegmentDelimiter)
}

func ValidateProject(p *types.Project) error {
	var result *multierror.Error
	result = multierror.Append(result, ValidateSegment("project id", p.ID, SegmentDelimiter))
	switch p.Type {
	case types.ProjectTypeJDK:
	case types.ProjectTypeJDKTest:
		if p.BuildProject == "" {
			result = multierror.Append(result, types.Errorf(types.ErrInvalidConfiguration, "test project %s has no build project", p.ID))
		}
	default:
		result = multierror.Append(result, types.Errorf(types.ErrInvalidConfiguration, "project %s has type %q", p.ID, p.Type))
	}
	for dim, values := range p.Variants {
		for _, value := range values {
			result = multierror.Append(result, ValidateSegment(fmt.Sprintf("project %s variant %s value", p.ID, dim), value, SegmentDelimiter, ValueDelimiter))
		}
	}
	return result.ErrorOrNil()
}

// ValidateSnapshotData checks every collection and the uniqueness of platform
// triads, which decoding relies on
func ValidateSnapshotData(data types.SnapshotData) error {
	var result *multierror.Error
	triads := make(map[string]string, len(data.Platforms))
	for _, p := range data.Platforms {
		if err := ValidatePlatform(p); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if other, ok := triads[p.Triad()]; ok && other != p.ID {
			result = multierror.Append(result, types.Errorf(types.ErrInvalidConfiguration, "platforms %s and %s share triad %s", other, p.ID, p.Triad()))
		}
		triads[p.Triad()] = p.ID
	}
	for _, t := range data.Tasks {
		result = multierror.Append(result, ValidateTask(t))
	}
	for _, v := range data.TaskVariants {
		result = multierror.Append(result, ValidateTaskVariant(v))
	}
	for _, v := range data.JDKVersions {
		result = multierror.Append(result, ValidateJDKVersion(v))
	}
	for _, p := range data.BuildProviders {
		result = multierror.Append(result, ValidateBuildProvider(p))
	}
	for _, p := range data.Projects {
		result = multierror.Append(result, ValidateProject(p))
	}
	return result.ErrorOrNil()
}
