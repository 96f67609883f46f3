package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"customsdesk/internal/domain"
	"customsdesk/internal/report"
)

func sampleResults() []domain.ClassificationResult {
	return []domain.ClassificationResult{
		{
			LineIndex:   1,
			Description: "Mixer",
			Classification: &domain.HSClassification{
				Code:           "8479820000",
				Confidence:     0.82,
				Explanations:   []string{"e1", "e2", "e3", "e4", "e5"},
				CandidateCodes: []domain.CandidateCode{{Code: "8474310000", WhyNot: "not for concrete"}},
				EvidenceURLs:   []string{"https://example.org/tnved/8479"},
			},
		},
		{
			LineIndex:   2,
			Description: "Gadget",
			Error:       "HS classification not obtained: invalid commodity code: \"123\"",
		},
		{
			LineIndex:      3,
			Description:    "Valve",
			Classification: &domain.HSClassification{Code: "8481808199", Confidence: 1, Explanations: []string{"a", "b", "c", "d", "e"}},
		},
	}
}

func TestFormatClassification(t *testing.T) {
	want := strings.Join([]string{
		"[33] Item 1: EAEU CN FEA code 8479820000 (confidence 0.82)",
		"  - e1",
		"  - e2",
		"  - e3",
		"  - e4",
		"  - e5",
		"  Alternatives:",
		"    • 8474310000: not for concrete",
		"  Sources:",
		"    - https://example.org/tnved/8479",
		"",
		"[33] Item 2: error — HS classification not obtained: invalid commodity code: \"123\"",
		"",
		"[33] Item 3: EAEU CN FEA code 8481808199 (confidence 1)",
		"  - a",
		"  - b",
		"  - c",
		"  - d",
		"  - e",
	}, "\n")

	assert.Equal(t, want, report.FormatClassification(sampleResults()))
}

func TestFormatClassification_Empty(t *testing.T) {
	assert.Equal(t, "", report.FormatClassification(nil))
}

func TestAssemble_Layout(t *testing.T) {
	got := report.Assemble("[2] Sender (seller) — A", sampleResults()[1:2])

	want := "Declaration field | Text to insert:\n" +
		"[2] Sender (seller) — A\n\n" +
		"=====================\n" +
		"Item | Commodity code (EAEU CN FEA):\n" +
		"[33] Item 2: error — HS classification not obtained: invalid commodity code: \"123\"\n\n" +
		report.Disclaimer
	assert.Equal(t, want, got)
}

func TestAssemble_Idempotent(t *testing.T) {
	first := report.Assemble("decl", sampleResults())
	second := report.Assemble("decl", sampleResults())

	assert.Equal(t, first, second)
	assert.True(t, strings.HasSuffix(first, report.Disclaimer))
}
