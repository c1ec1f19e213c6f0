package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"docscan-gateway/internal/domain"
)

// Mock implementations for handler testing

type MockHandlerLogger struct{}

func (m *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (m *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (m *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (m *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

type mockAuthService struct {
	session   *domain.Session
	err       error
	lastToken string
	loggedOut bool
}

func (m *mockAuthService) ValidateToken(token string) (*domain.Session, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(token string) error {
	m.loggedOut = true
	return nil
}

func (m *mockAuthService) AuthorizeURL(redirectTo string) string {
	return "https://auth.example.com/authorize?provider=google&redirect_to=" + redirectTo
}

// MockDocumentService scripts the use-case layer with overridable functions.
type MockDocumentService struct {
	ListFn     func(page int, query string) (*domain.DocumentPage, error)
	GetFn      func(id string) (*domain.Document, error)
	DeleteFn   func(id string) error
	StatusFn   func(id string) ([]domain.DocumentStatusEvent, error)
	DownloadFn func(id string) (*domain.DownloadResult, error)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, session *domain.Session, page int, query string) (*domain.DocumentPage, error) {
	return m.ListFn(page, query)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, session *domain.Session, id string) (*domain.Document, error) {
	return m.GetFn(id)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, session *domain.Session, id string) error {
	return m.DeleteFn(id)
}

func (m *MockDocumentService) StatusEvents(ctx context.Context, session *domain.Session, id string) ([]domain.DocumentStatusEvent, error) {
	return m.StatusFn(id)
}

func (m *MockDocumentService) Download(ctx context.Context, session *domain.Session, id string) (*domain.DownloadResult, error) {
	return m.DownloadFn(id)
}

// stubRepo satisfies domain.DocumentRepository for upload-path tests. Only
// Upload is scripted; the rest are never reached from the scan handler.
type stubRepo struct {
	UploadFn func(upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error)
}

func (r *stubRepo) List(ctx context.Context, session *domain.Session, page int, query string) (*domain.DocumentPage, error) {
	return nil, nil
}

func (r *stubRepo) Get(ctx context.Context, session *domain.Session, id string) (*domain.Document, error) {
	return nil, nil
}

func (r *stubRepo) Delete(ctx context.Context, session *domain.Session, id string) error {
	return nil
}

func (r *stubRepo) StatusEvents(ctx context.Context, session *domain.Session, id string) ([]domain.DocumentStatusEvent, error) {
	return nil, nil
}

func (r *stubRepo) Upload(ctx context.Context, session *domain.Session, upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error) {
	return r.UploadFn(upload, onProgress)
}

func (r *stubRepo) DownloadTicket(ctx context.Context, session *domain.Session, id string) (*domain.DownloadTicket, error) {
	return nil, nil
}

func (r *stubRepo) FetchSigned(ctx context.Context, signedURL string) (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader(nil)), 0, nil
}

// stubConfig satisfies domain.Config with fixed test values.
type stubConfig struct{}

func (c *stubConfig) GetServerPort() string          { return "8080" }
func (c *stubConfig) GetLogLevel() string            { return "error" }
func (c *stubConfig) GetBackendURL() string          { return "http://backend.test" }
func (c *stubConfig) GetSupabaseURL() string         { return "http://supabase.test" }
func (c *stubConfig) GetSupabaseKey() string         { return "anon-key" }
func (c *stubConfig) GetGoogleClientID() string      { return "google-client-id" }
func (c *stubConfig) GetSiteURL() string             { return "http://localhost:3000" }
func (c *stubConfig) GetLoginRedirect() string       { return "/auth/callback" }
func (c *stubConfig) GetAllowedOrigins() []string    { return []string{"http://localhost:3000"} }
func (c *stubConfig) GetPollInterval() time.Duration { return time.Second }
func (c *stubConfig) GetMaxUploadSize() int64        { return 1 << 20 }
func (c *stubConfig) Validate() error                { return nil }

// handlerSession returns a request carrying an authenticated session, the way
// the auth middleware would have left it.
func handlerSession(r *http.Request) *http.Request {
	session := &domain.Session{
		AccessToken: "token-abc",
		UserID:      "user-123",
		Email:       "user@example.com",
	}
	ctx := context.WithValue(r.Context(), sessionContextKey, session)
	ctx = context.WithValue(ctx, tokenContextKey, session.AccessToken)
	return r.WithContext(ctx)
}
