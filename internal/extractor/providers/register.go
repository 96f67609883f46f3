// Package providers wires the concrete extraction providers into the
// extractor factory.
package providers

import (
	"customsdesk/internal/config"
	"customsdesk/internal/extractor"
	"customsdesk/internal/extractor/gemini"
	"customsdesk/internal/extractor/perplexity"
	"customsdesk/internal/port"
)

// RegisterAll registers every built-in provider.
func RegisterAll() {
	extractor.RegisterProvider("perplexity", func(cfg *config.ExtractorConfig) (port.Extractor, error) {
		return perplexity.NewExtractor(cfg)
	})
	extractor.RegisterProvider("gemini", func(cfg *config.ExtractorConfig) (port.Extractor, error) {
		return gemini.NewExtractor(cfg)
	})
}
