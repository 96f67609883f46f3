// Package app wires the declaration pipeline from configuration. Both the
// HTTP server and the CLI build their service through it.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"customsdesk/internal/classification"
	"customsdesk/internal/config"
	"customsdesk/internal/extractor"
	"customsdesk/internal/extractor/providers"
	"customsdesk/internal/port"
	"customsdesk/internal/schema"
	"customsdesk/internal/service"
)

// NewDeclarationService builds the extractor gateway, the classification
// engine and the declaration service. storage may be nil.
func NewDeclarationService(cfg *config.Config, storage port.ObjectStorage, logger *zap.Logger) (service.DeclarationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	providers.RegisterAll()

	provider, err := extractor.NewExtractorChain(&cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("creating extractor: %w", err)
	}
	schemas, err := schema.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading schemas: %w", err)
	}

	gateway := extractor.NewGatewayFromConfig(&cfg.Extractor, provider, schemas)
	engine := classification.NewEngine(gateway, cfg.Classification.Concurrency, logger.Named("classification"))

	return service.NewDeclarationService(gateway, engine, storage, service.DeclarationConfig{
		Bucket:           cfg.S3.Bucket,
		ReportPrefix:     cfg.S3.ReportPrefix,
		PresignExpiry:    cfg.S3.PresignExpiry,
		MaxDocumentBytes: cfg.Server.MaxUploadMB << 20,
	}, logger.Named("declaration")), nil
}
