package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"customsdesk/internal/classification"
	"customsdesk/internal/domain"
	"customsdesk/internal/port"
	"customsdesk/internal/service"
	"customsdesk/mocks"
)

var pdfBytes = []byte("%PDF-1.4\n%test\n")

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func sourceDocs() []domain.SourceDocument {
	docs := make([]domain.SourceDocument, 0, len(domain.RequiredKinds))
	for _, kind := range domain.RequiredKinds {
		docs = append(docs, domain.SourceDocument{
			Kind:        kind,
			FileName:    string(kind) + ".pdf",
			ContentType: "application/pdf",
			Data:        pdfBytes,
		})
	}
	return docs
}

func records() map[domain.DocumentKind]domain.Record {
	return map[domain.DocumentKind]domain.Record{
		domain.KindInvoice: &domain.Invoice{
			InvoiceNumber: "INV-1",
			InvoiceDate:   "2025-03-14",
			Seller:        domain.Party{Name: "Seller GmbH"},
			Buyer:         domain.Party{Name: "Buyer LLC"},
			Incoterms:     domain.Incoterms{Rule: "FCA", Place: "Berlin"},
			Currency:      domain.Currency{Code: "EUR"},
			TotalAmount:   100,
			Items: []domain.LineItem{
				{Description: "Pump", ModelOrSKU: str("P-1"), Quantity: 1, UOM: "pcs", UnitPrice: num(60), LineTotal: num(60)},
				{Description: "Valve", Quantity: 2, UOM: "pcs", UnitPrice: num(20), LineTotal: num(40)},
			},
		},
		domain.KindPackingList: &domain.PackingList{PLNumber: "PL-1", PLDate: "2025-03-14"},
		domain.KindCMR:         &domain.CMR{Consignor: domain.CMRParty{Name: "Seller GmbH"}},
		domain.KindAgreement:   &domain.Agreement{ContractNumber: "C-1", ContractDate: "2025-01-01"},
	}
}

func validClassification(code string) *domain.HSClassification {
	return &domain.HSClassification{
		Code:         code,
		Confidence:   0.9,
		Explanations: []string{"a", "b", "c", "d", "e"},
	}
}

func kindOf(kind domain.DocumentKind) interface{} {
	return mock.MatchedBy(func(doc domain.SourceDocument) bool { return doc.Kind == kind })
}

func setup(storage port.ObjectStorage) (service.DeclarationService, *mocks.MockRecordExtractor, *mocks.MockClassifier) {
	ext := new(mocks.MockRecordExtractor)
	cls := new(mocks.MockClassifier)
	engine := classification.NewEngine(cls, 2, nil)
	svc := service.NewDeclarationService(ext, engine, storage, service.DeclarationConfig{
		Bucket:        "reports-bucket",
		ReportPrefix:  "reports",
		PresignExpiry: 600,
	}, nil)
	return svc, ext, cls
}

func expectExtractions(ext *mocks.MockRecordExtractor) {
	for kind, rec := range records() {
		ext.On("ExtractDocument", mock.Anything, kindOf(kind)).Return(rec, nil)
	}
}

func TestDeclarationService_Build_Success(t *testing.T) {
	svc, ext, cls := setup(nil)
	expectExtractions(ext)
	cls.On("Classify", mock.Anything, mock.MatchedBy(func(d string) bool { return strings.Contains(d, "Pump") })).
		Return(validClassification("8413708100"), nil)
	cls.On("Classify", mock.Anything, mock.MatchedBy(func(d string) bool { return strings.Contains(d, "Valve") })).
		Return(nil, errors.New("provider down"))

	out, err := svc.Build(context.Background(), sourceDocs())

	require.NoError(t, err)
	require.NotNil(t, out.Report)
	rep := out.Report
	assert.NotEmpty(t, rep.ID)
	assert.False(t, rep.GeneratedAt.IsZero())
	require.Len(t, rep.Classifications, 2)
	assert.Equal(t, 1, rep.Classifications[0].LineIndex)
	assert.Equal(t, "8413708100", rep.Classifications[0].Classification.Code)
	assert.True(t, rep.Classifications[1].Failed())
	assert.Contains(t, rep.Declaration, "[2] Sender (seller)")
	assert.Contains(t, rep.Text, rep.Declaration)
	assert.Contains(t, rep.Text, "[33] Item 1: EAEU CN FEA code 8413708100")
	assert.Contains(t, rep.Text, "[33] Item 2: error")
	assert.Equal(t, rep.Declaration, out.Declaration.String())
	ext.AssertNumberOfCalls(t, "ExtractDocument", 4)
}

func TestDeclarationService_Build_ExtractionFailureIsFatal(t *testing.T) {
	svc, ext, cls := setup(nil)
	recs := records()
	ext.On("ExtractDocument", mock.Anything, kindOf(domain.KindInvoice)).Return(recs[domain.KindInvoice], nil)
	ext.On("ExtractDocument", mock.Anything, kindOf(domain.KindPackingList)).Return(recs[domain.KindPackingList], nil)
	ext.On("ExtractDocument", mock.Anything, kindOf(domain.KindAgreement)).Return(recs[domain.KindAgreement], nil)
	ext.On("ExtractDocument", mock.Anything, kindOf(domain.KindCMR)).
		Return(nil, domain.ErrSchemaViolation)

	out, err := svc.Build(context.Background(), sourceDocs())

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	cls.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestDeclarationService_Build_IncompleteSet(t *testing.T) {
	svc, ext, _ := setup(nil)

	_, err := svc.Build(context.Background(), sourceDocs()[:3])

	assert.ErrorIs(t, err, domain.ErrMissingDocument)
	ext.AssertNotCalled(t, "ExtractDocument", mock.Anything, mock.Anything)
}

func TestDeclarationService_BuildFromStorage(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, ext, cls := setup(storage)
	expectExtractions(ext)
	cls.On("Classify", mock.Anything, mock.Anything).Return(validClassification("8481808199"), nil)

	keys := map[domain.DocumentKind]string{}
	for _, kind := range domain.RequiredKinds {
		key := "uploads/" + string(kind) + ".pdf"
		keys[kind] = key
		storage.On("Download", mock.Anything, "reports-bucket", key).Return(pdfBytes, nil)
	}

	out, err := svc.BuildFromStorage(context.Background(), keys)

	require.NoError(t, err)
	assert.Len(t, out.Report.Classifications, 2)
	storage.AssertNumberOfCalls(t, "Download", 4)
	ext.AssertCalled(t, "ExtractDocument", mock.Anything, mock.MatchedBy(func(doc domain.SourceDocument) bool {
		return doc.Kind == domain.KindCMR && doc.FileName == "cmr.pdf" && doc.ContentType == "application/pdf"
	}))
}

func TestDeclarationService_BuildFromStorage_DownloadError(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, _, _ := setup(storage)
	storage.On("Download", mock.Anything, "reports-bucket", "inv.pdf").Return(nil, errors.New("no such key"))

	_, err := svc.BuildFromStorage(context.Background(), map[domain.DocumentKind]string{domain.KindInvoice: "inv.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloading invoice")
}

func TestDeclarationService_BuildFromStorage_UnknownKind(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, _, _ := setup(storage)

	_, err := svc.BuildFromStorage(context.Background(), map[domain.DocumentKind]string{"bill_of_lading": "b.pdf"})

	assert.ErrorIs(t, err, domain.ErrUnknownDocumentKind)
	storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeclarationService_StorageNotConfigured(t *testing.T) {
	svc, _, _ := setup(nil)
	assert.False(t, svc.CanPublish())

	_, err := svc.BuildFromStorage(context.Background(), map[domain.DocumentKind]string{})
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	_, err = svc.Publish(context.Background(), &domain.DeclarationReport{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}

func TestDeclarationService_Publish(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, _, _ := setup(storage)
	assert.True(t, svc.CanPublish())
	rep := &domain.DeclarationReport{ID: "run-1", Text: "combined report"}

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		body, _ := io.ReadAll(in.Body)
		return in.Bucket == "reports-bucket" &&
			in.Key == "reports/run-1/dt_mapping__hs_classification.txt" &&
			string(body) == "combined report" &&
			in.Size == int64(len("combined report"))
	})).Return(&port.UploadOutput{Location: "s3://x"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "reports-bucket", "reports/run-1/dt_mapping__hs_classification.txt", int64(600)).
		Return("https://signed.example/report", nil)

	out, err := svc.Publish(context.Background(), rep)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/report", out.URL)
	assert.Equal(t, "reports/run-1/dt_mapping__hs_classification.txt", out.Key)
	assert.Equal(t, int64(600), out.ExpiresIn)
}

func TestDeclarationService_Publish_UploadError(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, _, _ := setup(storage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := svc.Publish(context.Background(), &domain.DeclarationReport{ID: "run-2"})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeclarationService_Publish_PresignErrorRemovesObject(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc, _, _ := setup(storage)
	key := "reports/run-3/dt_mapping__hs_classification.txt"
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "reports-bucket", key, int64(600)).Return("", errors.New("signer broken"))
	storage.On("Delete", mock.Anything, "reports-bucket", key).Return(nil)

	_, err := svc.Publish(context.Background(), &domain.DeclarationReport{ID: "run-3"})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	storage.AssertCalled(t, "Delete", mock.Anything, "reports-bucket", key)
}
