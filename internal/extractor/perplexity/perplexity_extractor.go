package perplexity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"customsdesk/internal/config"
	"customsdesk/internal/extractor"
	"customsdesk/internal/port"
)

const (
	providerName = "perplexity"
	apiURL       = "https://api.perplexity.ai/chat/completions"
	defaultModel = "sonar-pro"
)

// Extractor implements port.Extractor using the Perplexity chat completions API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Perplexity-backed extractor.
func NewExtractor(cfg *config.ExtractorConfig) (*Extractor, error) {
	return newExtractor(cfg, cfg.Endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorConfig, endpoint string) (*Extractor, error) {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorConfig, endpoint string) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("perplexity: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = apiURL
	}
	client, err := extractor.NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   client,
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	reqBody := map[string]interface{}{
		"model": e.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContent(input),
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"schema": input.Schema,
			},
		},
		"temperature": input.Temperature,
	}
	if input.WebSearch {
		reqBody["web_search_options"] = map[string]interface{}{
			"search":      true,
			"search_type": "pro",
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, extractor.TransportError(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, extractor.TransportError(providerName, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		baseErr := fmt.Errorf("perplexity API error (status %d): %s", resp.StatusCode, extractor.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, extractor.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, extractor.StatusError(providerName, resp.StatusCode, respBody)
	}

	return parseResponse(respBody, e.model)
}

// buildContent puts the instruction first, then context blocks, then the file.
func buildContent(input port.ExtractInput) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{"type": "text", "text": input.Instruction},
	}
	for _, c := range input.Context {
		blocks = append(blocks, map[string]interface{}{"type": "text", "text": c})
	}
	if input.Document != nil {
		blocks = append(blocks, map[string]interface{}{
			"type": "file_url",
			"file_url": map[string]interface{}{
				"url": base64.StdEncoding.EncodeToString(input.Document.Data),
			},
			"file_name": input.Document.FileName,
		})
	}
	return blocks
}

// apiResponse models the chat completions response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Citations     []string `json:"citations"`
	SearchResults []struct {
		URL string `json:"url"`
	} `json:"search_results"`
}

func parseResponse(body []byte, model string) (*port.ExtractOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, extractor.MalformedError(providerName, err, string(body))
	}

	if len(resp.Choices) == 0 {
		return nil, extractor.MalformedError(providerName, errors.New("no choices in response"), string(body))
	}

	text := extractor.CleanJSONText(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(text)) {
		return nil, extractor.MalformedError(providerName, errors.New("message content is not JSON"), text)
	}

	if resp.Model != "" {
		model = resp.Model
	}
	citations := resp.Citations
	if len(citations) == 0 {
		for _, r := range resp.SearchResults {
			citations = append(citations, r.URL)
		}
	}

	return &port.ExtractOutput{
		Data:      json.RawMessage(text),
		ModelUsed: model,
		Citations: citations,
	}, nil
}
