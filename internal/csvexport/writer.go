package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"customsdesk/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the CSV header row (10 columns).
var Columns = []string{
	"Line",
	"Description",
	"Model/SKU",
	"Commodity Code",
	"Confidence",
	"Explanations",
	"Alternatives",
	"Evidence URLs",
	"Notes",
	"Error",
}

// Writer wraps csv.Writer for exporting classification results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteResults writes one row per classification result.
func (w *Writer) WriteResults(results []domain.ClassificationResult) error {
	for i := range results {
		if err := w.csv.Write(ResultToRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes the BOM, header and all results to out.
func Export(out io.Writer, results []domain.ClassificationResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ResultToRow converts a result to a row matching Columns. Failed results fill
// only the identity and error columns. Multi-valued columns are joined with
// " | ".
func ResultToRow(r *domain.ClassificationResult) []string {
	row := make([]string, len(Columns))

	row[0] = strconv.Itoa(r.LineIndex)
	row[1] = r.Description
	if r.ModelOrSKU != nil {
		row[2] = *r.ModelOrSKU
	}
	if r.Failed() {
		row[9] = r.Error
		return row
	}

	hs := r.Classification
	row[3] = hs.Code
	row[4] = strconv.FormatFloat(hs.Confidence, 'f', 2, 64)
	row[5] = strings.Join(hs.Explanations, " | ")

	alternatives := make([]string, 0, len(hs.CandidateCodes))
	for _, c := range hs.CandidateCodes {
		alternatives = append(alternatives, c.Code+": "+c.WhyNot)
	}
	row[6] = strings.Join(alternatives, " | ")
	row[7] = strings.Join(hs.EvidenceURLs, " | ")
	row[8] = hs.Notes

	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "report"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
