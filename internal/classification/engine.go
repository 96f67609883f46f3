// Package classification assigns an EAEU commodity code to every invoice line.
package classification

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"customsdesk/internal/declaration"
	"customsdesk/internal/domain"
)

// ExplanationCount is the number of reasoning lines every answer must carry.
const ExplanationCount = 5

var codePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Classifier returns a commodity code proposal for one goods line description.
type Classifier interface {
	Classify(ctx context.Context, details string) (*domain.HSClassification, error)
}

// Engine classifies invoice lines with a bounded number of concurrent calls.
type Engine struct {
	classifier  Classifier
	concurrency int
	logger      *zap.Logger
}

// NewEngine creates an Engine. concurrency below 1 means one call at a time.
func NewEngine(classifier Classifier, concurrency int, logger *zap.Logger) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{classifier: classifier, concurrency: concurrency, logger: logger}
}

// ClassifyAll returns one result per invoice line in invoice order. A failed
// line becomes an error result; it never stops the other lines.
func (e *Engine) ClassifyAll(ctx context.Context, set domain.DocumentSet) []domain.ClassificationResult {
	inv := set.Invoice
	if inv == nil || len(inv.Items) == 0 {
		return nil
	}

	var plItems []domain.LineItem
	if set.PackingList != nil {
		plItems = set.PackingList.Items
	}
	idx := declaration.Index(plItems)

	currency := strings.ToUpper(strings.TrimSpace(inv.Currency.Code))
	var agreementTerms *domain.Incoterms
	if set.Agreement != nil {
		agreementTerms = &set.Agreement.Incoterms
	}
	incoterms := declaration.ResolveIncoterms(&inv.Incoterms, agreementTerms)

	results := make([]domain.ClassificationResult, len(inv.Items))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range inv.Items {
		item := &inv.Items[i]
		enriched := Enrich(*item, declaration.MatchItem(idx, plItems, item))
		details := BuildDetails(enriched, currency, incoterms)

		g.Go(func() error {
			results[i] = e.classifyLine(ctx, i+1, item, details)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Engine) classifyLine(ctx context.Context, lineIndex int, item *domain.LineItem, details string) domain.ClassificationResult {
	result := domain.ClassificationResult{
		LineIndex:   lineIndex,
		Description: item.Description,
		ModelOrSKU:  item.ModelOrSKU,
	}

	hs, err := e.classifier.Classify(ctx, details)
	if err == nil {
		err = Validate(hs)
	}
	if err != nil {
		e.logger.Warn("classification failed",
			zap.Int("line", lineIndex),
			zap.String("description", item.Description),
			zap.Error(err),
		)
		result.Error = "HS classification not obtained: " + err.Error()
		return result
	}

	e.logger.Debug("line classified",
		zap.Int("line", lineIndex),
		zap.String("code", hs.Code),
		zap.Float64("confidence", hs.Confidence),
	)
	result.Classification = hs
	return result
}

// Validate checks the code format and the explanation count of an answer.
func Validate(hs *domain.HSClassification) error {
	if hs == nil {
		return fmt.Errorf("%w: empty answer", domain.ErrInvalidCode)
	}
	if !codePattern.MatchString(hs.Code) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCode, hs.Code)
	}
	if len(hs.Explanations) != ExplanationCount {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrExplanationCountMismatch, len(hs.Explanations), ExplanationCount)
	}
	return nil
}
