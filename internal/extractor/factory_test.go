package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customsdesk/internal/config"
	"customsdesk/internal/extractor"
	"customsdesk/internal/port"
	"customsdesk/mocks"
)

func TestNewExtractor_RegisteredProvider(t *testing.T) {
	want := new(mocks.MockExtractor)
	extractor.RegisterProvider("test-provider", func(cfg *config.ExtractorConfig) (port.Extractor, error) {
		assert.Equal(t, "k", cfg.APIKey)
		return want, nil
	})

	got, err := extractor.NewExtractor(&config.ExtractorConfig{Provider: "test-provider", APIKey: "k"})

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := extractor.NewExtractor(&config.ExtractorConfig{Provider: "nope"})
	assert.ErrorContains(t, err, "unknown extractor provider: nope")
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	cfg := &config.ExtractorConfig{TimeoutSecs: 5, Proxy: config.ProxyConfig{Host: "127.0.0.1", Port: 1080, User: "u", Password: "p"}}

	client, err := extractor.NewHTTPClient(cfg)

	require.NoError(t, err)
	assert.Equal(t, cfg.Timeout(), client.Timeout)
}
