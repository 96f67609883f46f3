package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"customsdesk/internal/config"
	"customsdesk/internal/extractor"
	"customsdesk/internal/port"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// Extractor implements port.Extractor using the Gemini API through the genai SDK.
type Extractor struct {
	client *genai.Client
	model  string
}

// NewExtractor creates a Gemini-backed extractor.
func NewExtractor(cfg *config.ExtractorConfig) (*Extractor, error) {
	return newExtractor(cfg, cfg.Endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom base URL (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorConfig, baseURL string) (*Extractor, error) {
	return newExtractor(cfg, baseURL)
}

func newExtractor(cfg *config.ExtractorConfig, baseURL string) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	httpClient, err := extractor.NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Extractor{client: client, model: model}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	parts := []*genai.Part{genai.NewPartFromText(input.Instruction)}
	for _, c := range input.Context {
		parts = append(parts, genai.NewPartFromText(c))
	}
	if input.Document != nil {
		parts = append(parts, genai.NewPartFromBytes(input.Document.Data, input.Document.ContentType))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(input.Temperature)),
	}
	if input.WebSearch {
		// Search grounding cannot be combined with a response schema, so the
		// schema travels as text and the answer is checked downstream.
		parts = append(parts, genai.NewPartFromText("Answer with a single JSON object matching this JSON Schema:\n"+string(input.Schema)))
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = input.Schema
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, mapError(err)
	}

	text := extractor.CleanJSONText(resp.Text())
	if text == "" {
		return nil, extractor.MalformedError(providerName, errors.New("empty response"), "")
	}
	if !json.Valid([]byte(text)) {
		return nil, extractor.MalformedError(providerName, errors.New("response text is not JSON"), text)
	}

	model := e.model
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}

	return &port.ExtractOutput{
		Data:      json.RawMessage(text),
		ModelUsed: model,
		Citations: citations(resp),
	}, nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return extractor.NewRateLimitError(providerName, err, 0)
		}
		return extractor.StatusError(providerName, apiErr.Code, []byte(apiErr.Message))
	}
	return extractor.TransportError(providerName, err)
}

func citations(resp *genai.GenerateContentResponse) []string {
	var urls []string
	for _, c := range resp.Candidates {
		if c == nil || c.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range c.GroundingMetadata.GroundingChunks {
			if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
				urls = append(urls, chunk.Web.URI)
			}
		}
	}
	return urls
}
