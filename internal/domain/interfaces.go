package domain

import (
	"context"
	"io"
	"time"
)

// ProgressFunc receives the aggregate upload percentage in [0,100]. Every file
// in a batch shares one aggregate percentage; there is no per-file
// granularity.
type ProgressFunc func(percent int)

// DocumentRepository defines the calls this service makes against the OCR
// backend. Every method requires a live session; implementations must refuse
// to issue requests without one.
type DocumentRepository interface {
	List(ctx context.Context, session *Session, page int, query string) (*DocumentPage, error)
	Get(ctx context.Context, session *Session, id string) (*Document, error)
	Delete(ctx context.Context, session *Session, id string) error
	StatusEvents(ctx context.Context, session *Session, id string) ([]DocumentStatusEvent, error)
	Upload(ctx context.Context, session *Session, upload *PendingUpload, onProgress ProgressFunc) (*UploadReceipt, error)
	DownloadTicket(ctx context.Context, session *Session, id string) (*DownloadTicket, error)
	FetchSigned(ctx context.Context, signedURL string) (io.ReadCloser, int64, error)
}

// DownloadResult is a ready-to-stream document download obtained through the
// signed-URL flow.
type DownloadResult struct {
	Filename string
	Size     int64
	Content  io.ReadCloser
}

// DocumentService defines the use-case operations for documents.
type DocumentService interface {
	ListDocuments(ctx context.Context, session *Session, page int, query string) (*DocumentPage, error)
	GetDocument(ctx context.Context, session *Session, id string) (*Document, error)
	DeleteDocument(ctx context.Context, session *Session, id string) error
	StatusEvents(ctx context.Context, session *Session, id string) ([]DocumentStatusEvent, error)
	Download(ctx context.Context, session *Session, id string) (*DownloadResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetBackendURL() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetGoogleClientID() string
	GetSiteURL() string
	GetLoginRedirect() string
	GetAllowedOrigins() []string
	GetPollInterval() time.Duration
	GetMaxUploadSize() int64
	Validate() error
}
