package domain

import "errors"

var (
	ErrExtractionFailed         = errors.New("record extraction failed")
	ErrExtractionTimeout        = errors.New("record extraction timed out")
	ErrSchemaViolation          = errors.New("extracted record violates schema")
	ErrInvalidCode              = errors.New("invalid commodity code")
	ErrExplanationCountMismatch = errors.New("unexpected number of explanations")
	ErrMissingDocument          = errors.New("required document missing")
	ErrUnknownDocumentKind      = errors.New("unknown document kind")
	ErrDuplicateDocument        = errors.New("document supplied more than once")
	ErrUnsupportedFileType      = errors.New("unsupported file type")
	ErrFileTooLarge             = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed             = errors.New("report upload to storage failed")
	ErrStorageNotConfigured     = errors.New("object storage is not configured")
)
