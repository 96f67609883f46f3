package report_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customsdesk/internal/report"
)

func TestSplitMessages_ShortTextSingleChunk(t *testing.T) {
	assert.Equal(t, []string{"a\nb"}, report.SplitMessages("a\nb", 10))
	assert.Nil(t, report.SplitMessages("", 10))
}

func TestSplitMessages_CutsOnLineBoundaries(t *testing.T) {
	text := "aaaa\nbbbb\ncccc"

	chunks := report.SplitMessages(text, 9)

	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)
}

func TestSplitMessages_KeepsBlankLines(t *testing.T) {
	text := "aa\n\nbb"

	assert.Equal(t, []string{"aa\n\nbb"}, report.SplitMessages(text, 10))
	assert.Equal(t, []string{"aa\n", "bb"}, report.SplitMessages(text, 3))
}

func TestSplitMessages_HardSplitsLongLine(t *testing.T) {
	text := "hi\n" + strings.Repeat("я", 7) + "\nok"

	chunks := report.SplitMessages(text, 3)

	assert.Equal(t, []string{"hi", "яяя", "яяя", "я", "ok"}, chunks)
}

func TestSplitMessages_RespectsLimitAndReassembles(t *testing.T) {
	var lines []string
	for i := 0; i < 500; i++ {
		lines = append(lines, strings.Repeat("x", i%37)+" строка")
	}
	text := strings.Join(lines, "\n")

	chunks := report.SplitMessages(text, report.DefaultMessageLimit)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), report.DefaultMessageLimit)
	}
	assert.Equal(t, text, strings.Join(chunks, "\n"))
}
