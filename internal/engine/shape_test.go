package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeShortTextUntouched(t *testing.T) {
	short, full, truncated := Shape("What is 2 + 2? It is 4.", 90)
	assert.Equal(t, "What is 2 + 2? It is 4.", short)
	assert.Equal(t, short, full)
	assert.False(t, truncated)
}

func TestShapeExactBudgetUntouched(t *testing.T) {
	text := strings.Repeat("a", 90)
	short, _, truncated := Shape(text, 90)
	assert.Equal(t, text, short)
	assert.False(t, truncated)
}

func TestShapeCutsAtSentenceBoundary(t *testing.T) {
	text := "Addition means putting numbers together to make a bigger total. " +
		"For example 2 plus 3 equals 5, and 10 plus 5 equals 15."

	short, full, truncated := Shape(text, 90)
	assert.Equal(t, "Addition means putting numbers together to make a bigger total.", short)
	assert.Equal(t, text, full)
	assert.True(t, truncated)
	// A complete sentence reads complete, so no ellipsis.
	assert.False(t, strings.HasSuffix(short, ellipsis))
}

func TestShapeCutsAtClauseBoundary(t *testing.T) {
	text := "Multiplication is repeated addition of the same number again and again, " +
		"so 4 times 3 means 4 plus 4 plus 4 which equals 12 in total"

	short, full, truncated := Shape(text, 90)
	assert.Equal(t, "Multiplication is repeated addition of the same number again and again...", short)
	assert.Equal(t, text, full)
	assert.True(t, truncated)
}

func TestShapeCutsAtWordBoundary(t *testing.T) {
	text := strings.Repeat("banana ", 20) // no sentence or clause boundaries
	short, _, truncated := Shape(text, 90)

	assert.True(t, truncated)
	// Whole words survive; the 13th word would not fit.
	assert.Equal(t, strings.TrimSpace(strings.Repeat("banana ", 12))+ellipsis, short)
	assert.LessOrEqual(t, len(short), 90)
}

func TestShapeHardCut(t *testing.T) {
	text := strings.Repeat("x", 200) // unbreakable
	short, full, truncated := Shape(text, 90)

	assert.Len(t, short, 90)
	assert.Equal(t, strings.Repeat("x", 87)+ellipsis, short)
	assert.Equal(t, text, full)
	assert.True(t, truncated)
}

func TestShapeHardCutKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("ü", 100) // two bytes per rune, no cut points
	short, _, truncated := Shape(text, 90)

	assert.True(t, truncated)
	assert.True(t, utf8.ValidString(short))
	assert.LessOrEqual(t, len(short), 90)
	assert.True(t, strings.HasSuffix(short, ellipsis))
}

func TestTruncateAtRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncateAtRuneBoundary("abc", 5))
	assert.Equal(t, "ab", truncateAtRuneBoundary("abcd", 2))
	// "é" is 2 bytes; a 3-byte budget must not split it.
	assert.Equal(t, "é", truncateAtRuneBoundary("éé", 3))
	assert.Equal(t, "", truncateAtRuneBoundary("é", 1))
}

func TestShapeEarlyBoundaryIgnored(t *testing.T) {
	// The only sentence boundary sits in the first half of the window, so
	// cutting there would waste most of the budget.
	text := "Yes. " + strings.Repeat("carry the ten over to the next column ", 5)
	short, _, truncated := Shape(text, 90)

	assert.True(t, truncated)
	assert.NotEqual(t, "Yes.", short)
	assert.Greater(t, len(short), 45)
}

func TestShapeBudgetNeverExceeded(t *testing.T) {
	inputs := []string{
		"short",
		"A fraction shows parts of a whole. The top is the numerator, the bottom the denominator, which counts the equal parts of the whole thing.",
		strings.Repeat("word ", 100),
		strings.Repeat("z", 500),
		"One, two, three, four, five, six, seven, eight, nine, ten, eleven, twelve, thirteen, fourteen",
		"Ends with punctuation exactly at the edge of the window. Then continues with much more text afterwards to force a cut.",
		"   leading and trailing whitespace gets trimmed before shaping even happens   ",
	}

	for _, budget := range []int{20, 50, 90, 95, 160} {
		for _, text := range inputs {
			short, full, _ := Shape(text, budget)
			require.LessOrEqual(t, len(short), budget, "budget %d, input %q", budget, text)
			require.Equal(t, strings.TrimSpace(text), full)
		}
	}
}

func TestShapeDeterministic(t *testing.T) {
	text := "Division splits a number into equal groups, so 12 divided by 3 asks how many threes fit into twelve, and the answer is 4."

	s1, f1, t1 := Shape(text, 90)
	s2, f2, t2 := Shape(text, 90)
	assert.Equal(t, s1, s2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, t1, t2)
}
