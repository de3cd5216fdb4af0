package pipeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var sampleResult = Result{
	RunID:            "0b7c",
	TrainPath:        "artifacts/train.csv",
	TestPath:         "artifacts/test.csv",
	PreprocessorPath: "artifacts/preprocessor.json",
	ModelPath:        "artifacts/model.json",
	TrainRows:        800,
	TestRows:         200,
	Model:            "ridge(alpha=0.1)",
	Score:            0.88123,
	Duration:         1234567 * time.Microsecond,
}

func TestRenderSummaryBoxed(t *testing.T) {
	lines := renderSummary(sampleResult, 100, false)

	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╰"))
	for _, l := range lines {
		assert.Equal(t, 72, runeWidth(l), l)
	}
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "artifacts/train.csv (800 rows)")
	assert.Contains(t, joined, "0.8812")
	assert.Contains(t, joined, "1.235s")
}

func TestRenderSummaryNarrow(t *testing.T) {
	lines := renderSummary(sampleResult, 30, false)
	assert.Equal(t, []string{"r2 0.8812 ridge(alpha=0.1)"}, lines)
}

func TestRenderSummaryColored(t *testing.T) {
	lines := renderSummary(sampleResult, 80, true)
	assert.Contains(t, lines[1], colorYellow)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", truncatePath("short", 10))
	assert.Equal(t, "...ef", truncatePath("abcdef", 5))
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	PrintFailure(&buf, &StageError{Stage: StageTrainer, RunID: "r", Err: errors.New("no model")})
	assert.Equal(t, "trainer failed: run r: trainer stage: no model\n", buf.String())

	buf.Reset()
	PrintFailure(&buf, errors.New("bad config"))
	assert.Equal(t, "error: bad config\n", buf.String())
}

func TestPrintSummaryToBuffer(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleResult)
	assert.NotContains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "ridge(alpha=0.1)")
}
