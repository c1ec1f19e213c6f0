package domain

import (
	"encoding/json"
	"time"
)

// Document lifecycle stages assigned by the OCR backend. Coarser than the
// per-document status event sequence.
const (
	StageUploaded   = "UPLOADED"
	StageProcessing = "PROCESSING"
	StageCompleted  = "COMPLETED"
	StageFailed     = "FAILED"
)

// Document represents a document owned by the OCR backend. This service never
// creates or mutates one directly; it only caches read-through copies.
type Document struct {
	Pk          int       `json:"pk"`
	Title       string    `json:"title"`
	File        string    `json:"file"`
	FileStage   string    `json:"file_stage"`
	IsProcessed bool      `json:"is_processed"`
	TotalPages  int       `json:"total_pages"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DocumentPage is one page of the backend's paginated document listing.
type DocumentPage struct {
	Results    []Document `json:"results"`
	TotalPages int        `json:"total_pages"`
}

// DocumentStatusEvent is one entry of the ordered, append-only processing log
// the backend keeps per document.
type DocumentStatusEvent struct {
	Document  int    `json:"document"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
	Message   string `json:"message"`
}

// Terminal status values. Observing one of these as the last event stops
// polling.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusError   = "ERROR"
)

// IsTerminalStatus reports whether a status event value ends processing.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusSuccess, StatusFailed, StatusError:
		return true
	}
	return false
}

// LastStatus returns the status of the final event in the sequence. The last
// element determines the currently displayed state.
func LastStatus(events []DocumentStatusEvent) (string, bool) {
	if len(events) == 0 {
		return "", false
	}
	return events[len(events)-1].Status, true
}

// DownloadTicket is the backend's answer to a download request: a time-limited
// pre-authorized storage URL plus the filename to save under.
type DownloadTicket struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
}

// UploadReceipt is the backend's response to a successful multipart upload.
type UploadReceipt struct {
	Document struct {
		Pk json.Number `json:"pk"`
	} `json:"document"`
}
