package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"customsdesk/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

//go:embed instructions/*.txt
var instructionFS embed.FS

// Kinds lists every schema the registry carries.
var Kinds = []domain.DocumentKind{
	domain.KindInvoice,
	domain.KindPackingList,
	domain.KindCMR,
	domain.KindAgreement,
	domain.KindClassification,
}

type entry struct {
	raw         json.RawMessage
	resolved    *jsonschema.Resolved
	instruction string
}

// Registry holds the compiled JSON Schema and extraction instruction for each kind.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	entries map[domain.DocumentKind]*entry
}

// NewRegistry loads and resolves all embedded schemas.
func NewRegistry() (*Registry, error) {
	r := &Registry{entries: make(map[domain.DocumentKind]*entry, len(Kinds))}
	for _, kind := range Kinds {
		raw, err := schemaFS.ReadFile("schemas/" + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("reading %s schema: %w", kind, err)
		}
		var s jsonschema.Schema
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parsing %s schema: %w", kind, err)
		}
		resolved, err := s.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolving %s schema: %w", kind, err)
		}
		instruction, err := instructionFS.ReadFile("instructions/" + string(kind) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("reading %s instruction: %w", kind, err)
		}
		r.entries[kind] = &entry{
			raw:         json.RawMessage(raw),
			resolved:    resolved,
			instruction: strings.TrimSpace(string(instruction)),
		}
	}
	return r, nil
}

func (r *Registry) lookup(kind domain.DocumentKind) (*entry, error) {
	e, ok := r.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocumentKind, kind)
	}
	return e, nil
}

// Schema returns the raw JSON Schema sent to the extraction provider.
func (r *Registry) Schema(kind domain.DocumentKind) (json.RawMessage, error) {
	e, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return e.raw, nil
}

// Instruction returns the free-text extraction instruction for kind.
func (r *Registry) Instruction(kind domain.DocumentKind) (string, error) {
	e, err := r.lookup(kind)
	if err != nil {
		return "", err
	}
	return e.instruction, nil
}

// Validate checks data against the schema for kind. Any mismatch, including
// unparseable JSON, is reported as domain.ErrSchemaViolation.
func (r *Registry) Validate(kind domain.DocumentKind, data []byte) error {
	e, err := r.lookup(kind)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrSchemaViolation, kind, err)
	}
	if err := e.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrSchemaViolation, kind, err)
	}
	return nil
}
