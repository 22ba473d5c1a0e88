package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	previous, previousLevel := Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: level, JSONOutput: true, Output: &buf})
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestChildLoggersCarryFields(t *testing.T) {
	buf := captureJSON(t, DebugLevel)

	component := WithComponent("lifecycle")
	jobLogger := WithJob(component, "P1-el8.x86_64-build-jdk17-prov1")
	jobLogger.Info().Str("nvr", "java-17-openjdk-17.0.9-1.el8").Msg("Removed coordinate from ledger")

	entry := lastEntry(t, buf)
	assert.Equal(t, "lifecycle", entry["component"])
	assert.Equal(t, "P1-el8.x86_64-build-jdk17-prov1", entry["job"])
	assert.Equal(t, "info", entry["level"])

	projectLogger := WithProject(WithComponent("matrix"), "P2")
	projectLogger.Warn().Msg("Project expansion failed")

	entry = lastEntry(t, buf)
	assert.Equal(t, "matrix", entry["component"])
	assert.Equal(t, "P2", entry["project"])
	assert.NotContains(t, entry, "job")

	requestLogger := WithRequestID(WithComponent("api"), "abc-123")
	requestLogger.Debug().Msg("Request served")
	assert.Equal(t, "abc-123", lastEntry(t, buf)["request_id"])
}

func TestInitLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
		debug bool
	}{
		{input: "debug", want: DebugLevel, debug: true},
		{input: "WARNING", want: WarnLevel},
		{input: "error", want: ErrorLevel},
		{input: "", want: InfoLevel},
		{input: "verbose", want: InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := ParseLevel(tt.input)
			assert.Equal(t, tt.want, level)

			buf := captureJSON(t, level)
			logger := WithComponent("test")
			logger.Debug().Msg("debug entry")
			assert.Equal(t, tt.debug, buf.Len() > 0)
		})
	}
}
