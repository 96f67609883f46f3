package intake_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customsdesk/internal/domain"
	"customsdesk/internal/intake"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), pdfBytes, 0o600))
	}
}

func TestListPDFs_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b_invoice.pdf", "a_cmr.PDF", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o700))

	paths, err := intake.ListPDFs(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a_cmr.PDF"), filepath.Join(dir, "b_invoice.pdf")}, paths)
}

func TestListPDFs_MissingDir(t *testing.T) {
	_, err := intake.ListPDFs(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		want domain.DocumentKind
		ok   bool
	}{
		{"invoice_GM-INV-2025-384.pdf", domain.KindInvoice, true},
		{"packing_list_PL-2025-384.pdf", domain.KindPackingList, true},
		{"PL-384.pdf", domain.KindPackingList, true},
		{"CMR.pdf", domain.KindCMR, true},
		{"ved-dogovor_TI-GM-2025-012.pdf", domain.KindAgreement, true},
		{"sales_contract.pdf", domain.KindAgreement, true},
		{"photo.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := intake.DetectKind(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDetectKind_InvoiceCheckedFirst(t *testing.T) {
	kind, ok := intake.DetectKind("invoice_and_packing.pdf")
	require.True(t, ok)
	assert.Equal(t, domain.KindInvoice, kind)
}

func TestDetectDocuments_FirstMatchPerKind(t *testing.T) {
	found, err := intake.DetectDocuments([]string{
		"docs/CMR.pdf",
		"docs/invoice_1.pdf",
		"docs/invoice_2.pdf",
		"docs/packing_list.pdf",
		"docs/agreement.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "docs/invoice_1.pdf", found[domain.KindInvoice])
	assert.Equal(t, "docs/CMR.pdf", found[domain.KindCMR])
	assert.Len(t, found, 4)
}

func TestDetectDocuments_MissingNamesKinds(t *testing.T) {
	_, err := intake.DetectDocuments([]string{"invoice.pdf", "photo.pdf"})

	require.ErrorIs(t, err, domain.ErrMissingDocument)
	assert.Contains(t, err.Error(), "packing list, CMR, agreement")
}

func TestFirstN(t *testing.T) {
	got, err := intake.FirstN([]string{"a", "b", "c", "d", "e"}, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)

	_, err = intake.FirstN([]string{"a"}, 4)
	assert.ErrorIs(t, err, domain.ErrMissingDocument)
}

func TestSniff(t *testing.T) {
	ct, err := intake.Sniff("invoice.pdf", pdfBytes, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	_, err = intake.Sniff("invoice.docx", pdfBytes, 0)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = intake.Sniff("invoice.pdf", []byte("plain text pretending"), 0)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = intake.Sniff("invoice.pdf", pdfBytes, 10)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestReadDocument_TooLarge(t *testing.T) {
	_, err := intake.ReadDocument(domain.KindCMR, "cmr.pdf", bytes.NewReader(pdfBytes), 8)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "1_ved-dogovor.pdf", "2_invoice.pdf", "3_CMR.pdf", "4_packing_list.pdf", "5_extra_invoice.pdf")

	docs, err := intake.LoadDirectory(dir, 0)

	require.NoError(t, err)
	require.Len(t, docs, 4)
	assert.Equal(t, domain.KindInvoice, docs[0].Kind)
	assert.Equal(t, "2_invoice.pdf", docs[0].FileName)
	assert.Equal(t, domain.KindPackingList, docs[1].Kind)
	assert.Equal(t, domain.KindCMR, docs[2].Kind)
	assert.Equal(t, domain.KindAgreement, docs[3].Kind)
	assert.Equal(t, "application/pdf", docs[3].ContentType)
	assert.Equal(t, pdfBytes, docs[3].Data)
}

func TestLoadDirectory_TooFewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice.pdf", "cmr.pdf")

	_, err := intake.LoadDirectory(dir, 0)

	assert.ErrorIs(t, err, domain.ErrMissingDocument)
}

func TestCheckSet(t *testing.T) {
	docs := []domain.SourceDocument{
		{Kind: domain.KindInvoice}, {Kind: domain.KindPackingList}, {Kind: domain.KindCMR}, {Kind: domain.KindAgreement},
	}
	assert.NoError(t, intake.CheckSet(docs))

	assert.ErrorIs(t, intake.CheckSet(docs[:3]), domain.ErrMissingDocument)
	assert.ErrorIs(t, intake.CheckSet(append(docs, domain.SourceDocument{Kind: domain.KindCMR})), domain.ErrDuplicateDocument)
	assert.ErrorIs(t, intake.CheckSet([]domain.SourceDocument{{Kind: "bill_of_lading"}}), domain.ErrUnknownDocumentKind)
}
