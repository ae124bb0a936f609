package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplexityFlatFileIsZero(t *testing.T) {
	assert.Equal(t, 0.0, complexity([]byte("a := 1\nb := 2\n")))
}

func TestComplexityWeightsAverageAndMaxDepth(t *testing.T) {
	source := []byte("line1\n  line2\n    line3\n")
	assert.Equal(t, 0.5, complexity(source))
}

func TestComplexityIgnoresBlankLines(t *testing.T) {
	withBlanks := []byte("if true {\n\n    x := 1\n}\n")
	withoutBlanks := []byte("if true {\n    x := 1\n}\n")
	assert.Equal(t, complexity(withoutBlanks), complexity(withBlanks))
}

func TestComplexityEmptySource(t *testing.T) {
	assert.Equal(t, 0.0, complexity(nil))
}

func TestExpandTabsAlignsToWidth(t *testing.T) {
	assert.Equal(t, "    x", string(expandTabs([]byte("\tx"), 4)))
	assert.Equal(t, "        y", string(expandTabs([]byte("\t\ty"), 4)))
}

func TestRound2HalfUpRounding(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2251))
	assert.Equal(t, 1.0, round2(0.999))
}

func TestCountLinesWithAndWithoutTrailingNewline(t *testing.T) {
	assert.Equal(t, 3, countLines([]byte("a\nb\nc\n")))
	assert.Equal(t, 3, countLines([]byte("a\nb\nc")))
	assert.Equal(t, 0, countLines(nil))
}
