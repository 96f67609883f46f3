package extractor

import "strings"

// CleanJSONText strips a Markdown code fence and any leading reasoning block
// that some models wrap around a JSON answer.
func CleanJSONText(text string) string {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "</think>"); i >= 0 {
		s = strings.TrimSpace(s[i+len("</think>"):])
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
