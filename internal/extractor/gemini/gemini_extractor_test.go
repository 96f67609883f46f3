package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customsdesk/internal/config"
	"customsdesk/internal/domain"
	"customsdesk/internal/extractor"
	"customsdesk/internal/extractor/gemini"
	"customsdesk/internal/port"
)

var testSchema = json.RawMessage(`{"type":"object","properties":{"cmr_number":{"type":"string"}}}`)

func newTestExtractor(t *testing.T, serverURL string) *gemini.Extractor {
	t.Helper()
	cfg := &config.ExtractorConfig{
		Provider:    "gemini",
		APIKey:      "test-api-key",
		Model:       "gemini-2.5-flash",
		TimeoutSecs: 30,
	}
	e, err := gemini.NewExtractorWithEndpoint(cfg, serverURL)
	require.NoError(t, err)
	return e
}

func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
				"groundingMetadata": map[string]interface{}{
					"groundingChunks": []map[string]interface{}{
						{"web": map[string]interface{}{"uri": "https://example.org/eaeu", "title": "EAEU"}},
					},
				},
			},
		},
		"modelVersion": "gemini-2.5-flash-001",
	}
}

func TestGeminiExtractor_Extract_StructuredOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])
		assert.Contains(t, genCfg, "responseJsonSchema")
		assert.NotContains(t, reqBody, "tools")

		contents := reqBody["contents"].([]interface{})
		require.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		assert.Contains(t, parts[1], "inlineData")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"cmr_number":"CMR-7"}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{
		Instruction: "extract the CMR",
		Document:    &port.Attachment{FileName: "cmr.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		Schema:      testSchema,
		Temperature: 0.2,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"cmr_number":"CMR-7"}`, string(out.Data))
	assert.Equal(t, "gemini-2.5-flash-001", out.ModelUsed)
	assert.Equal(t, []string{"https://example.org/eaeu"}, out.Citations)
}

func TestGeminiExtractor_Extract_WebSearchUsesTool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		tools := reqBody["tools"].([]interface{})
		require.Len(t, tools, 1)
		assert.Contains(t, tools[0], "googleSearch")

		if genCfg, ok := reqBody["generationConfig"].(map[string]interface{}); ok {
			assert.NotContains(t, genCfg, "responseJsonSchema")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidateResponse("```json\n{\"cmr_number\":\"CMR-8\"}\n```"))
	}))
	defer server.Close()

	out, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{
		Instruction: "classify",
		Context:     []string{"Description: pump"},
		Schema:      testSchema,
		WebSearch:   true,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"cmr_number":"CMR-8"}`, string(out.Data))
}

func TestGeminiExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{Instruction: "x", Schema: testSchema})

	var rle *extractor.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestGeminiExtractor_Extract_NotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidateResponse("sorry"))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{Instruction: "x", Schema: testSchema})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
