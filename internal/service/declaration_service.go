package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"customsdesk/internal/classification"
	"customsdesk/internal/declaration"
	"customsdesk/internal/domain"
	"customsdesk/internal/intake"
	"customsdesk/internal/port"
	"customsdesk/internal/report"
)

// DeclarationConfig holds the storage and size settings of the pipeline.
type DeclarationConfig struct {
	Bucket        string
	ReportPrefix  string
	PresignExpiry int64
	// MaxDocumentBytes limits documents fetched from storage. Zero disables the check.
	MaxDocumentBytes int64
}

// BuildOutput is one finished pipeline run.
type BuildOutput struct {
	Report      *domain.DeclarationReport
	Declaration *declaration.Declaration
}

// PublishOutput describes a report stored in object storage.
type PublishOutput struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// DeclarationService defines the declaration pipeline contract.
type DeclarationService interface {
	Build(ctx context.Context, docs []domain.SourceDocument) (*BuildOutput, error)
	BuildFromStorage(ctx context.Context, keys map[domain.DocumentKind]string) (*BuildOutput, error)
	Publish(ctx context.Context, rep *domain.DeclarationReport) (*PublishOutput, error)
	// CanPublish reports whether object storage is configured for Publish
	// and BuildFromStorage.
	CanPublish() bool
}

type declarationService struct {
	extractor port.RecordExtractor
	engine    *classification.Engine
	storage   port.ObjectStorage
	cfg       DeclarationConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewDeclarationService creates a new DeclarationService implementation.
// storage may be nil, in which case the storage-backed operations return
// domain.ErrStorageNotConfigured.
func NewDeclarationService(
	extractor port.RecordExtractor,
	engine *classification.Engine,
	storage port.ObjectStorage,
	cfg DeclarationConfig,
	logger *zap.Logger,
) DeclarationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &declarationService{
		extractor: extractor,
		engine:    engine,
		storage:   storage,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Build extracts all four documents concurrently, renders the declaration,
// classifies every invoice line and assembles the combined report. Any
// extraction failure aborts the run.
func (s *declarationService) Build(ctx context.Context, docs []domain.SourceDocument) (*BuildOutput, error) {
	if err := intake.CheckSet(docs); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	log := s.logger.With(zap.String("declaration_id", id))
	start := s.now()

	records := make([]domain.Record, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			log.Debug("extracting document",
				zap.String("kind", string(doc.Kind)),
				zap.String("file", doc.FileName),
				zap.Int("bytes", len(doc.Data)))
			rec, err := s.extractor.ExtractDocument(gctx, doc)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("document extraction failed", zap.Error(err))
		return nil, err
	}

	var set domain.DocumentSet
	for _, rec := range records {
		if err := set.Put(rec); err != nil {
			return nil, err
		}
	}

	decl := declaration.Build(set)
	declText := decl.String()
	results := s.engine.ClassifyAll(ctx, set)

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	log.Info("declaration built",
		zap.Int("lines", len(results)),
		zap.Int("classification_failures", failed),
		zap.Duration("elapsed", s.now().Sub(start)))

	return &BuildOutput{
		Report: &domain.DeclarationReport{
			ID:              id,
			Declaration:     declText,
			Classifications: results,
			Text:            report.Assemble(declText, results),
			GeneratedAt:     s.now().UTC(),
		},
		Declaration: decl,
	}, nil
}

// BuildFromStorage downloads the documents named by keys from the configured
// bucket and runs Build on them.
func (s *declarationService) BuildFromStorage(ctx context.Context, keys map[domain.DocumentKind]string) (*BuildOutput, error) {
	if !s.CanPublish() {
		return nil, domain.ErrStorageNotConfigured
	}
	for kind := range keys {
		if _, known := declarationKinds[kind]; !known {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocumentKind, kind)
		}
	}

	docs := make([]domain.SourceDocument, 0, len(keys))
	for _, kind := range domain.RequiredKinds {
		key, ok := keys[kind]
		if !ok {
			continue
		}
		data, err := s.storage.Download(ctx, s.cfg.Bucket, key)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", kind.Label(), err)
		}
		doc, err := intake.ReadDocument(kind, key, bytes.NewReader(data), s.cfg.MaxDocumentBytes)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return s.Build(ctx, docs)
}

// Publish stores the combined report text and returns a presigned download link.
func (s *declarationService) Publish(ctx context.Context, rep *domain.DeclarationReport) (*PublishOutput, error) {
	if !s.CanPublish() {
		return nil, domain.ErrStorageNotConfigured
	}

	key := path.Join(s.cfg.ReportPrefix, rep.ID, report.TextFileName)
	body := []byte(rep.Text)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "text/plain; charset=utf-8",
		Size:        int64(len(body)),
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, key); delErr != nil {
			s.logger.Warn("removing unlinked report", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}

	s.logger.Info("report published", zap.String("declaration_id", rep.ID), zap.String("key", key))
	return &PublishOutput{Key: key, URL: url, ExpiresIn: s.cfg.PresignExpiry}, nil
}

func (s *declarationService) CanPublish() bool {
	return s.storage != nil && s.cfg.Bucket != ""
}

var declarationKinds = func() map[domain.DocumentKind]struct{} {
	m := make(map[domain.DocumentKind]struct{}, len(domain.RequiredKinds))
	for _, k := range domain.RequiredKinds {
		m[k] = struct{}{}
	}
	return m
}()
