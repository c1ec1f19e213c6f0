package domain

import "errors"

// Domain errors
var (
	ErrSessionMissing    = errors.New("user session not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrScanNotFound      = errors.New("scan session not found")
	ErrFileNotFound      = errors.New("file not found in scan session")
	ErrDuplicateFileName = errors.New("file name already present")
	ErrUploadInFlight    = errors.New("an upload is already in flight")
	ErrEmptyDocumentName = errors.New("document name is required")
	ErrNoFiles           = errors.New("no files selected")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
