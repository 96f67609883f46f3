package handler

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"customsdesk/internal/csvexport"
	"customsdesk/internal/domain"
	"customsdesk/internal/intake"
	"customsdesk/internal/report"
	"customsdesk/internal/service"
	"customsdesk/internal/xlsxexport"
)

// Output formats accepted in the format query parameter.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatChunks = "chunks"
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatLink   = "link"
)

var formats = map[string]bool{
	FormatJSON: true, FormatText: true, FormatChunks: true,
	FormatCSV: true, FormatXLSX: true, FormatLink: true,
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// filesField holds documents whose kind is detected from the file name.
const filesField = "files"

// DeclarationHandler handles declaration pipeline endpoints.
type DeclarationHandler struct {
	declarationService service.DeclarationService
	maxFileBytes       int64
	messageLimit       int
}

// NewDeclarationHandler creates a new DeclarationHandler.
func NewDeclarationHandler(declarationService service.DeclarationService, maxFileBytes int64, messageLimit int) *DeclarationHandler {
	if messageLimit <= 0 {
		messageLimit = report.DefaultMessageLimit
	}
	return &DeclarationHandler{
		declarationService: declarationService,
		maxFileBytes:       maxFileBytes,
		messageLimit:       messageLimit,
	}
}

// Create handles POST /api/v1/declarations
// @Summary Build a declaration from uploaded documents
// @Description Upload the invoice, packing list, CMR and agreement PDFs either as named fields
// @Description or as files[] detected by file name. Returns the declaration mapping and commodity codes.
// @Tags declarations
// @Accept multipart/form-data
// @Produce json,plain,octet-stream
// @Param invoice formData file false "Commercial invoice PDF"
// @Param packing_list formData file false "Packing list PDF"
// @Param cmr formData file false "CMR waybill PDF"
// @Param agreement formData file false "Sales agreement PDF"
// @Param files formData file false "Documents detected by file name"
// @Param format query string false "Output format" Enums(json, text, chunks, csv, xlsx, link) default(json)
// @Success 200 {object} Response{data=domain.DeclarationReport} "Declaration built"
// @Failure 400 {object} ErrorResponseBody "Missing or unsupported document"
// @Failure 503 {object} ErrorResponseBody "Storage not configured for format=link"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Extraction result violates schema"
// @Failure 429 {object} ErrorResponseBody "Extraction service rate limited"
// @Failure 502 {object} ErrorResponseBody "Extraction service failed"
// @Failure 504 {object} ErrorResponseBody "Extraction service timed out"
// @Router /declarations [post]
func (h *DeclarationHandler) Create(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	if h.maxFileBytes > 0 {
		limit := h.maxFileBytes*int64(len(domain.RequiredKinds)) + 1<<20
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form with document files is required")
		return
	}

	docs, err := h.collectDocuments(form)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.declarationService.Build(c.Request.Context(), docs)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.respond(c, format, out)
}

// CreateFromStorage handles POST /api/v1/declarations/from-storage
// @Summary Build a declaration from stored documents
// @Description Documents are fetched from the configured bucket by object key, one key per document kind.
// @Tags declarations
// @Accept json
// @Produce json,plain,octet-stream
// @Param request body FromStorageRequest true "Object keys by document kind"
// @Param format query string false "Output format" Enums(json, text, chunks, csv, xlsx, link) default(json)
// @Success 200 {object} Response{data=domain.DeclarationReport} "Declaration built"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 502 {object} ErrorResponseBody "Extraction service failed"
// @Failure 503 {object} ErrorResponseBody "Storage not configured"
// @Router /declarations/from-storage [post]
func (h *DeclarationHandler) CreateFromStorage(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	var req FromStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "documents map is required")
		return
	}

	keys := make(map[domain.DocumentKind]string, len(req.Documents))
	for kind, key := range req.Documents {
		keys[domain.DocumentKind(kind)] = key
	}

	out, err := h.declarationService.BuildFromStorage(c.Request.Context(), keys)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.respond(c, format, out)
}

func (h *DeclarationHandler) format(c *gin.Context) (string, bool) {
	format := c.DefaultQuery("format", FormatJSON)
	if !formats[format] {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT",
			fmt.Sprintf("unknown format %q; allowed: json, text, chunks, csv, xlsx, link", format))
		return "", false
	}
	// A link needs storage; refuse before any extraction is paid for.
	if format == FormatLink && !h.declarationService.CanPublish() {
		HandleError(c, domain.ErrStorageNotConfigured)
		return "", false
	}
	return format, true
}

// collectDocuments reads named fields first, then fills the remaining kinds
// from files detected by name. Unrecognized files are ignored.
func (h *DeclarationHandler) collectDocuments(form *multipart.Form) ([]domain.SourceDocument, error) {
	picked := make(map[domain.DocumentKind]*multipart.FileHeader, len(domain.RequiredKinds))
	for _, kind := range domain.RequiredKinds {
		if files := form.File[string(kind)]; len(files) > 0 {
			picked[kind] = files[0]
		}
	}
	for _, fh := range append(form.File[filesField], form.File[filesField+"[]"]...) {
		kind, ok := intake.DetectKind(fh.Filename)
		if !ok {
			continue
		}
		if _, taken := picked[kind]; !taken {
			picked[kind] = fh
		}
	}

	docs := make([]domain.SourceDocument, 0, len(picked))
	for _, kind := range domain.RequiredKinds {
		fh, ok := picked[kind]
		if !ok {
			continue
		}
		doc, err := h.readFile(kind, fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (h *DeclarationHandler) readFile(kind domain.DocumentKind, fh *multipart.FileHeader) (domain.SourceDocument, error) {
	if h.maxFileBytes > 0 && fh.Size > h.maxFileBytes {
		return domain.SourceDocument{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()
	return intake.ReadDocument(kind, fh.Filename, f, h.maxFileBytes)
}

func (h *DeclarationHandler) respond(c *gin.Context, format string, out *service.BuildOutput) {
	rep := out.Report
	switch format {
	case FormatText:
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.TextFileName))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rep.Text))

	case FormatChunks:
		RespondOK(c, ChunksResponse{ID: rep.ID, Messages: report.SplitMessages(rep.Text, h.messageLimit)})

	case FormatCSV:
		var buf bytes.Buffer
		if err := csvexport.Export(&buf, rep.Classifications); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`,
			csvexport.BuildFilename("hs_classification_"+rep.ID, "csv")))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	case FormatXLSX:
		var buf bytes.Buffer
		if err := xlsxexport.Export(&buf, out.Declaration, rep.Classifications); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`,
			csvexport.BuildFilename("declaration_"+rep.ID, "xlsx")))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())

	case FormatLink:
		pub, err := h.declarationService.Publish(c.Request.Context(), rep)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, LinkResponse{ID: rep.ID, Key: pub.Key, URL: pub.URL, ExpiresIn: pub.ExpiresIn})

	default:
		RespondOK(c, rep)
	}
}
