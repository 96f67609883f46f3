// Package report assembles the declaration text and classification results
// into the combined text handed to users.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"customsdesk/internal/domain"
)

const (
	// TextFileName is the download name of the combined report.
	TextFileName = "dt_mapping__hs_classification.txt"

	declarationTitle    = "Declaration field | Text to insert:"
	separator           = "====================="
	classificationTitle = "Item | Commodity code (EAEU CN FEA):"
	// Disclaimer closes every combined report.
	Disclaimer = "Important: this is a legal hint only and does not constitute a legal opinion."
)

// FormatClassification renders results as box 33 entries in result order.
func FormatClassification(results []domain.ClassificationResult) string {
	var lines []string
	for _, r := range results {
		if r.Failed() {
			lines = append(lines, fmt.Sprintf("[33] Item %d: error — %s", r.LineIndex, r.Error), "")
			continue
		}

		hs := r.Classification
		lines = append(lines, fmt.Sprintf("[33] Item %d: EAEU CN FEA code %s (confidence %s)",
			r.LineIndex, hs.Code, strconv.FormatFloat(hs.Confidence, 'f', -1, 64)))
		for _, e := range hs.Explanations {
			lines = append(lines, "  - "+e)
		}
		if len(hs.CandidateCodes) > 0 {
			lines = append(lines, "  Alternatives:")
			for _, c := range hs.CandidateCodes {
				lines = append(lines, fmt.Sprintf("    • %s: %s", c.Code, c.WhyNot))
			}
		}
		if len(hs.EvidenceURLs) > 0 {
			lines = append(lines, "  Sources:")
			for _, u := range hs.EvidenceURLs {
				lines = append(lines, "    - "+u)
			}
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n")
}

// Assemble joins the declaration text and the rendered classification into
// the combined report.
func Assemble(declarationText string, results []domain.ClassificationResult) string {
	var b strings.Builder
	b.WriteString(declarationTitle)
	b.WriteString("\n")
	b.WriteString(declarationText)
	b.WriteString("\n\n")
	b.WriteString(separator)
	b.WriteString("\n")
	b.WriteString(classificationTitle)
	b.WriteString("\n")
	b.WriteString(FormatClassification(results))
	b.WriteString("\n\n")
	b.WriteString(Disclaimer)
	return b.String()
}
