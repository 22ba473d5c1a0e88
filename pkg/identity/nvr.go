package identity

import (
	"strings"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
)

// builtinArches are the architecture tokens koji may append to a release
var builtinArches = []string{
	"aarch64", "armv7hl", "i386", "i686", "noarch", "ppc64", "ppc64le",
	"s390x", "src", "win", "x86_64",
}

// CoordinateParser parses legacy NVR/NVRA strings.
//
// The grammar is lenient and legacy-compatible rather than strict: the last
// two '-' split name, version and release, so names may contain '-'. The final
// dotted token of the release is taken as the architecture only when it is a
// known architecture; anything else (for example the OS token in "1.el8")
// stays part of the release.
type CoordinateParser struct {
	arches map[string]struct{}
}

// NewCoordinateParser returns a parser that knows the built-in architectures
// plus extra
func NewCoordinateParser(extra ...string) *CoordinateParser {
	p := &CoordinateParser{arches: make(map[string]struct{}, len(builtinArches)+len(extra))}
	for _, arch := range builtinArches {
		p.arches[arch] = struct{}{}
	}
	for _, arch := range extra {
		if arch != "" {
			p.arches[arch] = struct{}{}
		}
	}
	return p
}

// ParserFor returns a parser that also knows every architecture declared by
// the snapshot's platforms
func ParserFor(snapshot *types.Snapshot) *CoordinateParser {
	return NewCoordinateParser(snapshot.Architectures()...)
}

// IsArchitecture reports whether token is a known architecture
func (p *CoordinateParser) IsArchitecture(token string) bool {
	_, ok := p.arches[token]
	return ok
}

// Parse splits s into a build coordinate. A missing architecture is not an error.
func (p *CoordinateParser) Parse(s string) (types.BuildCoordinate, error) {
	var none types.BuildCoordinate

	s = strings.TrimSpace(s)
	last := strings.LastIndex(s, SegmentDelimiter)
	if last < 0 {
		return none, types.Errorf(types.ErrMalformedIdentity, "coordinate %q has no %q", s, SegmentDelimiter)
	}
	middle := strings.LastIndex(s[:last], SegmentDelimiter)
	if middle < 0 {
		return none, types.Errorf(types.ErrMalformedIdentity, "coordinate %q needs name, version and release", s)
	}

	c := types.BuildCoordinate{
		Name:    s[:middle],
		Version: s[middle+1 : last],
		Release: s[last+1:],
	}
	if dot := strings.LastIndex(c.Release, ValueDelimiter); dot > 0 && p.IsArchitecture(c.Release[dot+1:]) {
		c.Architecture = c.Release[dot+1:]
		c.Release = c.Release[:dot]
	}
	if c.Name == "" || c.Version == "" || c.Release == "" {
		return none, types.Errorf(types.ErrMalformedIdentity, "coordinate %q has an empty field", s)
	}
	return c, nil
}

// ParseBuildCoordinate parses s with the built-in architecture list
func ParseBuildCoordinate(s string) (types.BuildCoordinate, error) {
	return defaultParser.Parse(s)
}

var defaultParser = NewCoordinateParser()

// Encode renders c and checks that it reads back as c. Coordinates from Parse
// always do; hand-built ones fail when version or release contain '-', when a
// release without architecture ends in a known architecture token, or when
// the architecture is not a known one.
func (p *CoordinateParser) Encode(c types.BuildCoordinate) (string, error) {
	s := EncodeBuildCoordinate(c)
	parsed, err := p.Parse(s)
	if err != nil {
		return "", err
	}
	if parsed != c {
		return "", types.Errorf(types.ErrMalformedIdentity,
			"coordinate %q reads back as name %q version %q release %q arch %q",
			s, parsed.Name, parsed.Version, parsed.Release, parsed.Architecture)
	}
	return s, nil
}

// EncodeBuildCoordinate renders N-V-R, or N-V-R.A when the architecture is
// set. It does not check its input; use CoordinateParser.Encode for
// coordinates that were not produced by Parse.
func EncodeBuildCoordinate(c types.BuildCoordinate) string {
	nvr := c.Name + SegmentDelimiter + c.Version + SegmentDelimiter + c.Release
	if c.HasArchitecture() {
		return nvr + ValueDelimiter + c.Architecture
	}
	return nvr
}

// CoordinatePath maps a coordinate to the directory segments of its build.
// The architecture is not part of the path.
func CoordinatePath(c types.BuildCoordinate) []string {
	return []string{c.Name, c.Version, c.Release}
}
