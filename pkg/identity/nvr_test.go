package identity

import (
	"errors"
	"testing"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuildCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected types.BuildCoordinate
	}{
		{
			name:     "nvr",
			input:    "java-17-openjdk-17.0.9.0.9-1",
			expected: types.BuildCoordinate{Name: "java-17-openjdk", Version: "17.0.9.0.9", Release: "1"},
		},
		{
			name:     "os token stays in release",
			input:    "java-17-openjdk-17.0.9.0.9-1.el8",
			expected: types.BuildCoordinate{Name: "java-17-openjdk", Version: "17.0.9.0.9", Release: "1.el8"},
		},
		{
			name:     "nvra",
			input:    "java-17-openjdk-17.0.9.0.9-1.el8.x86_64",
			expected: types.BuildCoordinate{Name: "java-17-openjdk", Version: "17.0.9.0.9", Release: "1.el8", Architecture: "x86_64"},
		},
		{
			name:     "surrounding whitespace",
			input:    "  a-1-2.src\n",
			expected: types.BuildCoordinate{Name: "a", Version: "1", Release: "2", Architecture: "src"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseBuildCoordinate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseBuildCoordinateMalformed(t *testing.T) {
	for _, input := range []string{"", "plain", "a-b", "-1-2", "a--2", "a-1-"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseBuildCoordinate(input)
			assert.True(t, errors.Is(err, types.ErrMalformedIdentity), "got %v", err)
		})
	}
}

func TestBuildCoordinateRoundTrip(t *testing.T) {
	coordinates := []types.BuildCoordinate{
		{Name: "java-1.8.0-openjdk", Version: "1.8.0.392.b08", Release: "2.el7"},
		{Name: "java-1.8.0-openjdk", Version: "1.8.0.392.b08", Release: "2.el7", Architecture: "ppc64le"},
		{Name: "java-latest-openjdk", Version: "21.0.1.0.12", Release: "1.rolling.fc39", Architecture: "noarch"},
	}
	for _, c := range coordinates {
		t.Run(EncodeBuildCoordinate(c), func(t *testing.T) {
			encoded, err := defaultParser.Encode(c)
			require.NoError(t, err)
			assert.Equal(t, EncodeBuildCoordinate(c), encoded)

			parsed, err := ParseBuildCoordinate(encoded)
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		})
	}
}

func TestEncodeRejectsValuesOutsideGrammar(t *testing.T) {
	tests := []struct {
		name string
		c    types.BuildCoordinate
	}{
		{name: "dash in version", c: types.BuildCoordinate{Name: "a", Version: "1-2", Release: "3"}},
		{name: "dash in release", c: types.BuildCoordinate{Name: "a", Version: "1", Release: "2-3"}},
		{name: "release ends in arch", c: types.BuildCoordinate{Name: "a", Version: "1", Release: "1.x86_64"}},
		{name: "unknown arch", c: types.BuildCoordinate{Name: "a", Version: "1", Release: "3", Architecture: "el8"}},
		{name: "empty release", c: types.BuildCoordinate{Name: "a", Version: "1"}},
		{name: "padded name", c: types.BuildCoordinate{Name: " a", Version: "1", Release: "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := defaultParser.Encode(tt.c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrMalformedIdentity))
		})
	}
}

func TestEncodeKnowsSnapshotArches(t *testing.T) {
	c := types.BuildCoordinate{Name: "a", Version: "1", Release: "2.el9", Architecture: "arm64"}

	_, err := defaultParser.Encode(c)
	assert.Error(t, err)

	encoded, err := ParserFor(testSnapshot()).Encode(c)
	require.NoError(t, err)
	assert.Equal(t, "a-1-2.el9.arm64", encoded)
}

func TestParserForSnapshotArches(t *testing.T) {
	parser := ParserFor(testSnapshot())
	assert.True(t, parser.IsArchitecture("arm64"))

	c, err := parser.Parse("a-1-2.el9.arm64")
	require.NoError(t, err)
	assert.Equal(t, "arm64", c.Architecture)

	c, err = ParseBuildCoordinate("a-1-2.el9.arm64")
	require.NoError(t, err)
	assert.Empty(t, c.Architecture)
	assert.Equal(t, "2.el9.arm64", c.Release)
}

func TestCoordinatePath(t *testing.T) {
	c := types.BuildCoordinate{Name: "n", Version: "v", Release: "r", Architecture: "x86_64"}
	assert.Equal(t, []string{"n", "v", "r"}, CoordinatePath(c))

	c.Architecture = ""
	assert.Equal(t, []string{"n", "v", "r"}, CoordinatePath(c))
}
