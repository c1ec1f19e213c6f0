package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"docscan-gateway/internal/domain"
	apperrors "docscan-gateway/pkg/errors"
)

// OCRDocumentRepository implements the domain.DocumentRepository interface
// against the OCR backend's REST endpoints.
type OCRDocumentRepository struct {
	clients *BackendClient
	logger  domain.Logger
}

// NewOCRDocumentRepository creates a new backend document repository
func NewOCRDocumentRepository(clients *BackendClient, logger domain.Logger) domain.DocumentRepository {
	return &OCRDocumentRepository{
		clients: clients,
		logger:  logger,
	}
}

// List fetches one page of the server-paginated, server-searched listing.
// Page and query are passed through verbatim; other pages are never cached.
func (r *OCRDocumentRepository) List(ctx context.Context, session *domain.Session, page int, query string) (*domain.DocumentPage, error) {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if query != "" {
		params.Set("q", query)
	}
	path := "/ocr/documents"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result domain.DocumentPage
	if err := client.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = make([]domain.Document, 0)
	}
	return &result, nil
}

// Get fetches the full document entity.
func (r *OCRDocumentRepository) Get(ctx context.Context, session *domain.Session, id string) (*domain.Document, error) {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	if err := client.getJSON(ctx, "/ocr/documents/"+id+"/", &doc); err != nil {
		if apperrors.GetStatusCode(err) == http.StatusNotFound {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes the document on the backend.
func (r *OCRDocumentRepository) Delete(ctx context.Context, session *domain.Session, id string) error {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return err
	}

	req, err := client.newRequest(ctx, http.MethodDelete, "/ocr/documents/"+id+"/", nil)
	if err != nil {
		return err
	}
	resp, err := client.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// StatusEvents fetches the ordered processing event sequence for a document.
func (r *OCRDocumentRepository) StatusEvents(ctx context.Context, session *domain.Session, id string) ([]domain.DocumentStatusEvent, error) {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return nil, err
	}

	var events []domain.DocumentStatusEvent
	if err := client.getJSON(ctx, "/ocr/document-status/"+id, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DownloadTicket requests a signed download URL. A 202 from the backend comes
// back as the not-ready error type so callers can surface a "still
// processing" message instead of a failure.
func (r *OCRDocumentRepository) DownloadTicket(ctx context.Context, session *domain.Session, id string) (*domain.DownloadTicket, error) {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return nil, err
	}

	var ticket domain.DownloadTicket
	if err := client.getJSON(ctx, "/ocr/documents/"+id+"/download/", &ticket); err != nil {
		return nil, err
	}
	if ticket.DownloadURL == "" {
		return nil, apperrors.NewInternalError("no download URL provided", nil)
	}
	return &ticket, nil
}

// FetchSigned downloads directly from a signed storage URL. No credentials
// are attached; the URL itself carries the authorization.
func (r *OCRDocumentRepository) FetchSigned(ctx context.Context, signedURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build download request", err)
	}

	// A bare client: no jar so the session cookies never leak to storage, no
	// timeout because the body is streamed and cancellation comes from ctx.
	// Signed storage URLs may redirect, so the full client is used rather
	// than a single transport round-trip.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, apperrors.NewNetworkError("download from storage failed", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, 0, apperrors.NewNotFoundError("File not found in storage. It may have been deleted or not processed yet.")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, 0, apperrors.NewBackendError(fmt.Sprintf("download failed with status %d", resp.StatusCode), resp.StatusCode, nil)
	}
	return resp.Body, resp.ContentLength, nil
}

// Upload submits the pending files as one multipart request. Files whose name
// ends in .svg are skipped. onProgress receives the aggregate percentage of
// the request body written so far.
func (r *OCRDocumentRepository) Upload(ctx context.Context, session *domain.Session, upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error) {
	client, err := r.clients.Authenticated(ctx, session)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for i := range upload.Files {
		file := &upload.Files[i]
		if strings.HasSuffix(file.Name, ".svg") {
			continue
		}
		part, err := writer.CreatePart(fileHeader("files", file.Name, file.ContentType))
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build multipart body", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, apperrors.NewInternalError("failed to build multipart body", err)
		}
	}
	if err := writer.WriteField("document_name", upload.DocumentName); err != nil {
		return nil, apperrors.NewInternalError("failed to build multipart body", err)
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.NewInternalError("failed to build multipart body", err)
	}

	total := int64(body.Len())
	reader := newProgressReader(&body, total, onProgress)

	req, err := client.newRequest(ctx, http.MethodPost, "/ocr/upload", reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := client.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var receipt domain.UploadReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, apperrors.NewInternalError("failed to decode upload response", err)
	}
	return &receipt, nil
}

func fileHeader(fieldName, fileName, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}

// progressReader reports the aggregate percentage of bytes consumed from the
// underlying reader. Percentages are monotonically non-decreasing; repeats
// are suppressed.
type progressReader struct {
	reader io.Reader
	total  int64

	mu     sync.Mutex
	loaded int64
	last   int
	report domain.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, report domain.ProgressFunc) *progressReader {
	return &progressReader{reader: r, total: total, last: -1, report: report}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 && p.total > 0 && p.report != nil {
		p.mu.Lock()
		p.loaded += int64(n)
		percent := int(math.Round(float64(p.loaded) * 100 / float64(p.total)))
		if percent > 100 {
			percent = 100
		}
		changed := percent > p.last
		if changed {
			p.last = percent
		}
		p.mu.Unlock()
		if changed {
			p.report(percent)
		}
	}
	return n, err
}
