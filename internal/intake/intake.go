// Package intake finds the four source documents of a shipment on disk or in
// an upload and turns them into extraction inputs.
package intake

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"customsdesk/internal/domain"
)

// keywords maps filename fragments to document kinds. Kinds are checked in
// domain.RequiredKinds order and the first hit decides a file's kind.
var keywords = map[domain.DocumentKind][]string{
	domain.KindInvoice:     {"inv"},
	domain.KindPackingList: {"pack", "pl"},
	domain.KindCMR:         {"cmr"},
	domain.KindAgreement:   {"dogovor", "agreement", "contract"},
}

// ListPDFs returns the PDF files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// FirstN returns the first n paths, or ErrMissingDocument when fewer exist.
func FirstN(paths []string, n int) ([]string, error) {
	if len(paths) < n {
		return nil, fmt.Errorf("%w: found %d PDF files, need %d (agreement, invoice, CMR, packing list)",
			domain.ErrMissingDocument, len(paths), n)
	}
	return paths[:n], nil
}

// DetectKind guesses a document kind from a file name.
func DetectKind(name string) (domain.DocumentKind, bool) {
	n := strings.ToLower(filepath.Base(name))
	for _, kind := range domain.RequiredKinds {
		for _, kw := range keywords[kind] {
			if strings.Contains(n, kw) {
				return kind, true
			}
		}
	}
	return "", false
}

// DetectDocuments assigns each required kind to the first path whose name
// matches it. It fails with ErrMissingDocument naming every unmatched kind.
func DetectDocuments(paths []string) (map[domain.DocumentKind]string, error) {
	found := make(map[domain.DocumentKind]string, len(domain.RequiredKinds))
	for _, p := range paths {
		kind, ok := DetectKind(p)
		if !ok {
			continue
		}
		if _, taken := found[kind]; !taken {
			found[kind] = p
		}
	}
	if missing := missingKinds(found); len(missing) > 0 {
		return nil, fmt.Errorf("%w: could not recognize %s by file name; names must contain invoice/inv, packing/pack/pl, cmr, agreement/contract/dogovor",
			domain.ErrMissingDocument, strings.Join(missing, ", "))
	}
	return found, nil
}

func missingKinds(found map[domain.DocumentKind]string) []string {
	var missing []string
	for _, kind := range domain.RequiredKinds {
		if _, ok := found[kind]; !ok {
			missing = append(missing, kind.Label())
		}
	}
	return missing
}

// Sniff checks the extension and the leading bytes of a file and returns its
// content type. maxBytes <= 0 disables the size check.
func Sniff(fileName string, data []byte, maxBytes int64) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	contentType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fileName)
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fileName)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if detected := http.DetectContentType(head); !domain.AllowedContentTypes[detected] {
		return "", fmt.Errorf("%w: %s looks like %s", domain.ErrUnsupportedFileType, fileName, detected)
	}
	return contentType, nil
}

// ReadDocument reads r fully and wraps it as a source document of kind.
func ReadDocument(kind domain.DocumentKind, fileName string, r io.Reader, maxBytes int64) (domain.SourceDocument, error) {
	var src io.Reader = r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("reading %s: %w", fileName, err)
	}
	contentType, err := Sniff(fileName, data, maxBytes)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	return domain.SourceDocument{
		Kind:        kind,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// LoadDocument reads the file at path as a source document of kind.
func LoadDocument(kind domain.DocumentKind, path string, maxBytes int64) (domain.SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadDocument(kind, path, f, maxBytes)
}

// LoadDirectory picks the first four PDFs in dir, detects their kinds and
// loads them in domain.RequiredKinds order.
func LoadDirectory(dir string, maxBytes int64) ([]domain.SourceDocument, error) {
	pdfs, err := ListPDFs(dir)
	if err != nil {
		return nil, err
	}
	candidates, err := FirstN(pdfs, len(domain.RequiredKinds))
	if err != nil {
		return nil, err
	}
	found, err := DetectDocuments(candidates)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.SourceDocument, 0, len(found))
	for _, kind := range domain.RequiredKinds {
		doc, err := LoadDocument(kind, found[kind], maxBytes)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CheckSet verifies that docs hold exactly one document of every required kind.
func CheckSet(docs []domain.SourceDocument) error {
	found := make(map[domain.DocumentKind]string, len(docs))
	for _, d := range docs {
		if _, known := keywords[d.Kind]; !known {
			return fmt.Errorf("%w: %s", domain.ErrUnknownDocumentKind, d.Kind)
		}
		if _, dup := found[d.Kind]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, d.Kind.Label())
		}
		found[d.Kind] = d.FileName
	}
	if missing := missingKinds(found); len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingDocument, strings.Join(missing, ", "))
	}
	return nil
}
