package port

import (
	"context"
	"encoding/json"

	"customsdesk/internal/domain"
)

// Attachment is a binary document sent inline with an extraction request.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExtractInput carries one structured-extraction request.
type ExtractInput struct {
	Instruction string
	// Context holds extra text blocks sent after the instruction.
	Context     []string
	Document    *Attachment
	Schema      json.RawMessage
	Temperature float64
	// WebSearch asks the provider to ground the answer in live search results.
	WebSearch bool
}

// ExtractOutput is the provider's JSON answer, not yet validated against the schema.
type ExtractOutput struct {
	Data      json.RawMessage
	ModelUsed string
	Citations []string
}

// Extractor abstracts an LLM service that returns JSON shaped by a schema.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

// RecordExtractor turns one source document into a validated typed record.
type RecordExtractor interface {
	ExtractDocument(ctx context.Context, doc domain.SourceDocument) (domain.Record, error)
}
