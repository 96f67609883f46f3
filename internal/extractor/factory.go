package extractor

import (
	"fmt"

	"customsdesk/internal/config"
	"customsdesk/internal/port"
)

// ProviderFactory is a function that creates an Extractor from the extractor config.
type ProviderFactory func(cfg *config.ExtractorConfig) (port.Extractor, error)

// registry of provider factories, populated explicitly via RegisterProvider
// (see the providers package).
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates an Extractor from config using the registered factory.
func NewExtractor(cfg *config.ExtractorConfig) (port.Extractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
