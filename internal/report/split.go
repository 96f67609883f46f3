package report

import (
	"strings"
	"unicode/utf8"
)

// DefaultMessageLimit is the longest message, in characters, chat front ends accept.
const DefaultMessageLimit = 4000

// SplitMessages breaks text into chunks of at most limit characters, cutting
// only between lines. A single line longer than limit is cut by character.
func SplitMessages(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if text == "" {
		return nil
	}

	var (
		chunks  []string
		cur     strings.Builder
		curLen  int
		started bool
	)

	flush := func() {
		if started {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
		started = false
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if lineLen > limit {
			flush()
			runes := []rune(line)
			for len(runes) > limit {
				chunks = append(chunks, string(runes[:limit]))
				runes = runes[limit:]
			}
			cur.WriteString(string(runes))
			curLen = len(runes)
			started = true
			continue
		}

		if started && curLen+1+lineLen > limit {
			flush()
		}
		if started {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += lineLen
		started = true
	}
	flush()

	return chunks
}
