package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2026, 1, 21, 10, 11, 12, 0, time.UTC) }

func TestDebugMultilineRendering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(
		WithLevel(LevelDebug),
		WithTimeFormat("15:04:05"),
		WithColored(false),
		WithWriter(LevelDebug, &buf),
	)
	logger.SetTimeNow(fixedClock)

	logger.Debugf("first line\nsecond line\nthird line")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3, output)

	wantPrefixes := []string{
		"DEBUG 10:11:12  ┬── first line",
		"DEBUG 10:11:12  ├── second line",
		"DEBUG 10:11:12  └── third line",
	}
	for i, want := range wantPrefixes {
		assert.Contains(t, lines[i], want, "line %d", i)
	}
}

func TestLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithLevel(LevelWarn), WithColored(false), WithTimeFormat(""), WithOutput(&buf))

	logger.Log(LevelInfo, "dropped")
	logger.Log(LevelWarn, "kept warning")
	logger.Log(LevelError, "kept error")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, " WARN  ")
	assert.Contains(t, out, "kept warning")
	assert.Contains(t, out, "ERROR  ")
	assert.Contains(t, out, "kept error")
}

func TestLogDoesNotInterpretFormatVerbs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithColored(false), WithTimeFormat(""), WithOutput(&buf))

	logger.Log(LevelInfo, "100% done")

	assert.Contains(t, buf.String(), "100% done")
}

func TestSilentSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithLevel(LevelSilent), WithOutput(&buf))

	logger.Errorf("boom")
	logger.Log(LevelError, "boom")

	assert.Empty(t, buf.String())
}

func TestWithComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithColored(false), WithTimeFormat(""), WithOutput(&buf))

	logger.WithComponent("ingestion").Infof("read %d rows", 10)

	assert.Contains(t, buf.String(), "[ingestion] ")
	assert.Contains(t, buf.String(), "read 10 rows")
}

func TestColoredTag(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithColored(true), WithTimeFormat(""), WithOutput(&buf))

	logger.Infof("hello")

	assert.Contains(t, buf.String(), "\033[32m INFO\033[0m")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"notice", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"silent", LevelSilent, false},
		{"verbose", LevelInfo, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNopLogger(t *testing.T) {
	var p Printer = NewNop()
	assert.NotPanics(t, func() {
		p.Log(LevelError, "x")
		p.Errorf("x %d", 1)
		p.WithComponent("c").Infof("y")
	})
}
