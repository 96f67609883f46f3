package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"customsdesk/internal/config"
	"customsdesk/internal/domain"
	"customsdesk/internal/port"
	"customsdesk/internal/schema"
)

// ClassificationTemperature is the sampling temperature for commodity classification calls.
const ClassificationTemperature = 0.1

// classificationPreamble introduces the goods details in a classification request.
const classificationPreamble = "Goods line data (use it for classification and web search):\n"

// GatewayOptions tunes a Gateway.
type GatewayOptions struct {
	// Timeout bounds each provider call. Zero means 120s.
	Timeout time.Duration
	// Temperature is used for document extraction calls.
	Temperature float64
	// Throttle is optional.
	Throttle *Throttle
}

// Gateway turns one provider call into a schema-validated record. It makes a
// single attempt per call and never retries.
type Gateway struct {
	provider    port.Extractor
	schemas     *schema.Registry
	throttle    *Throttle
	timeout     time.Duration
	temperature float64
}

// NewGateway creates a Gateway over provider.
func NewGateway(provider port.Extractor, schemas *schema.Registry, opts GatewayOptions) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Gateway{
		provider:    provider,
		schemas:     schemas,
		throttle:    opts.Throttle,
		timeout:     timeout,
		temperature: opts.Temperature,
	}
}

// NewGatewayFromConfig wires timeout, temperature and throttling from cfg.
func NewGatewayFromConfig(cfg *config.ExtractorConfig, provider port.Extractor, schemas *schema.Registry) *Gateway {
	return NewGateway(provider, schemas, GatewayOptions{
		Timeout:     cfg.Timeout(),
		Temperature: cfg.Temperature,
		Throttle:    NewThrottle(cfg.RequestsPerSecond, cfg.Burst),
	})
}

// ExtractDocument sends doc to the provider with the schema for doc.Kind and
// returns the validated, typed record.
func (g *Gateway) ExtractDocument(ctx context.Context, doc domain.SourceDocument) (domain.Record, error) {
	instruction, err := g.schemas.Instruction(doc.Kind)
	if err != nil {
		return nil, err
	}
	schemaJSON, err := g.schemas.Schema(doc.Kind)
	if err != nil {
		return nil, err
	}

	out, err := g.call(ctx, doc.Kind, port.ExtractInput{
		Instruction: instruction,
		Document: &port.Attachment{
			FileName:    doc.FileName,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		},
		Schema:      schemaJSON,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting %s %q: %w", doc.Kind.Label(), doc.FileName, err)
	}

	if err := g.Validate(doc.Kind, out.Data); err != nil {
		return nil, fmt.Errorf("extracting %s %q: %w", doc.Kind.Label(), doc.FileName, err)
	}

	rec, err := domain.DecodeRecord(doc.Kind, out.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaViolation, err)
	}
	return rec, nil
}

// Validate checks data against the schema registered for kind.
func (g *Gateway) Validate(kind domain.DocumentKind, data []byte) error {
	return g.schemas.Validate(kind, data)
}

// Classify asks the provider for a commodity code for one goods line, with web
// search grounding at ClassificationTemperature. Only the schema shape is
// checked here; code format and explanation count are left to the caller.
func (g *Gateway) Classify(ctx context.Context, details string) (*domain.HSClassification, error) {
	instruction, err := g.schemas.Instruction(domain.KindClassification)
	if err != nil {
		return nil, err
	}
	schemaJSON, err := g.schemas.Schema(domain.KindClassification)
	if err != nil {
		return nil, err
	}

	out, err := g.call(ctx, domain.KindClassification, port.ExtractInput{
		Instruction: instruction,
		Context:     []string{classificationPreamble + details},
		Schema:      schemaJSON,
		Temperature: ClassificationTemperature,
		WebSearch:   true,
	})
	if err != nil {
		return nil, err
	}
	if err := g.Validate(domain.KindClassification, out.Data); err != nil {
		return nil, err
	}

	var hs domain.HSClassification
	if err := json.Unmarshal(out.Data, &hs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaViolation, err)
	}
	// Search citations stand in for evidence when the answer names none.
	if len(hs.EvidenceURLs) == 0 && len(out.Citations) > 0 {
		hs.EvidenceURLs = append([]string(nil), out.Citations...)
	}
	return &hs, nil
}

func (g *Gateway) call(ctx context.Context, kind domain.DocumentKind, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := g.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", domain.ErrExtractionFailed, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.provider.Extract(callCtx, input)
	if err != nil {
		var rle *RateLimitError
		if errors.As(err, &rle) {
			g.throttle.Backoff(rle.RetryAfter)
		}
		err = g.normalize(ctx, callCtx, err)
		zap.L().Warn("extractor.Gateway: provider call failed",
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	if !json.Valid(out.Data) {
		return nil, MalformedError("provider", errors.New("invalid JSON document"), string(out.Data))
	}

	zap.L().Debug("extractor.Gateway: provider call completed",
		zap.String("kind", string(kind)),
		zap.String("model", out.ModelUsed),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(out.Data)),
		zap.Int("citations", len(out.Citations)),
	)
	return out, nil
}

// normalize makes sure every provider error carries one of the extraction sentinels.
func (g *Gateway) normalize(parent, callCtx context.Context, err error) error {
	if errors.Is(err, domain.ErrExtractionTimeout) {
		return err
	}
	if callCtx.Err() == context.DeadlineExceeded && parent.Err() == nil {
		return fmt.Errorf("%w after %s: %w", domain.ErrExtractionTimeout, g.timeout, err)
	}
	if IsTimeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrExtractionTimeout, err)
	}
	if errors.Is(err, domain.ErrExtractionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
}
