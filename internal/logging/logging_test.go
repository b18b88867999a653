package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/logging"
)

func TestStdoutLogger_WritesJSONLine(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewWriterLogger("engine", &buf)

	l.Info("scored", logging.F("score", 42))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "scored", entry["msg"])
	assert.Equal(t, "engine", entry["component"])
	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, fields["score"])
}

func TestStdoutLogger_WithComponentAndFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	root := logging.NewWriterLogger("root", &buf)

	child := root.With(logging.F("component", "fetcher"), logging.F("request_id", "abc"))
	child.Warn("fetch failed", logging.Err(errors.New("boom")))

	line := buf.String()
	assert.Contains(t, line, `"component":"fetcher"`)
	assert.Contains(t, line, `"request_id":"abc"`)
	assert.Contains(t, line, `"error":"boom"`)
}

func TestErr_NilError(t *testing.T) {
	t.Parallel()
	f := logging.Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "", f.Value)
}

func TestLogrusLogger_RespectsLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewLogrusLogger("warn", &buf)

	l.Info("hidden")
	l.With(logging.F("component", "server")).Warn("visible", logging.F("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"component":"server"`)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}
