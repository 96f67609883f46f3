package domain

import "time"

// CandidateCode is an alternative code the classifier considered and rejected.
type CandidateCode struct {
	Code   string `json:"code"`
	WhyNot string `json:"why_not"`
}

// HSClassification is the classifier's answer for one goods line.
type HSClassification struct {
	Code           string          `json:"eaeu_hs_code"`
	Confidence     float64         `json:"confidence"`
	Explanations   []string        `json:"explanations"`
	CandidateCodes []CandidateCode `json:"candidate_codes,omitempty"`
	EvidenceURLs   []string        `json:"evidence_urls,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// ClassificationResult is created once per invoice line and never mutated.
// Exactly one of Classification and Error is set.
type ClassificationResult struct {
	LineIndex      int               `json:"line_index"`
	Description    string            `json:"description"`
	ModelOrSKU     *string           `json:"model_or_sku,omitempty"`
	Classification *HSClassification `json:"classification,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Failed reports whether the result is the error variant.
func (r ClassificationResult) Failed() bool {
	return r.Classification == nil
}

// SourceDocument is one uploaded or discovered file waiting for extraction.
type SourceDocument struct {
	Kind        DocumentKind `json:"kind"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"-"`
}

// DeclarationReport is the output of one pipeline run.
type DeclarationReport struct {
	ID              string                 `json:"id"`
	Declaration     string                 `json:"declaration"`
	Classifications []ClassificationResult `json:"classifications"`
	Text            string                 `json:"text"`
	GeneratedAt     time.Time              `json:"generated_at"`
}
