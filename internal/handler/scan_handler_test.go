package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docscan-gateway/internal/domain"
	"docscan-gateway/internal/service"

	"github.com/gorilla/mux"
)

func newScanFixture(t *testing.T, repo domain.DocumentRepository) (*ScanHandler, *service.ScanStore) {
	t.Helper()
	logger := &MockHandlerLogger{}
	store := service.NewScanStore(logger)
	images := service.NewImageService(store, logger)
	uploads := service.NewUploadService(repo, store, logger)
	return NewScanHandler(store, images, uploads, &stubConfig{}, logger), store
}

func multipartFileRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return handlerSession(req)
}

func TestCreateScan_ReturnsEmptySession(t *testing.T) {
	h, _ := newScanFixture(t, &stubRepo{})

	rec := httptest.NewRecorder()
	h.CreateScan(rec, handlerSession(httptest.NewRequest(http.MethodPost, "/api/v1/scans", nil)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var view scanView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if view.ID == "" {
		t.Fatal("expected a generated scan id")
	}
	if len(view.Files) != 0 || view.Submittable {
		t.Fatalf("expected empty, non-submittable session, got %+v", view)
	}
}

func TestAddFile_CapturesPage(t *testing.T) {
	h, store := newScanFixture(t, &stubRepo{})
	scan := store.Create()

	req := multipartFileRequest(t, "/api/v1/scans/"+scan.ID+"/files", "page-1.jpg", []byte("jpeg-bytes"))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.AddFile(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var view scanFileView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if view.Name != "page-1.jpg" || view.Size != int64(len("jpeg-bytes")) {
		t.Fatalf("unexpected file view %+v", view)
	}
	if view.SizeLabel == "" {
		t.Fatal("expected a formatted size label")
	}
}

func TestAddFile_DuplicateNameConflicts(t *testing.T) {
	h, store := newScanFixture(t, &stubRepo{})
	scan := store.Create()
	if _, err := store.AddFile(scan.ID, "page-1.jpg", "image/jpeg", []byte("first")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	req := multipartFileRequest(t, "/api/v1/scans/"+scan.ID+"/files", "page-1.jpg", []byte("second"))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.AddFile(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", rec.Code)
	}
}

func TestAddFile_UnknownScanIs404(t *testing.T) {
	h, _ := newScanFixture(t, &stubRepo{})

	req := multipartFileRequest(t, "/api/v1/scans/nope/files", "page-1.jpg", []byte("bytes"))
	req = mux.SetURLVars(req, map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	h.AddFile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReorder_ReturnsReorderedListing(t *testing.T) {
	h, store := newScanFixture(t, &stubRepo{})
	scan := store.Create()
	first, _ := store.AddFile(scan.ID, "a.jpg", "image/jpeg", []byte("a"))
	second, _ := store.AddFile(scan.ID, "b.jpg", "image/jpeg", []byte("b"))

	payload, _ := json.Marshal(reorderRequest{Order: []string{second.ID, first.ID}})
	req := handlerSession(httptest.NewRequest(http.MethodPut, "/api/v1/scans/"+scan.ID+"/order", bytes.NewReader(payload)))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.Reorder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var view scanView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if view.Files[0].Name != "b.jpg" || view.Files[1].Name != "a.jpg" {
		t.Fatalf("unexpected order %+v", view.Files)
	}
}

func TestSubmitScan_MissingNameIs400(t *testing.T) {
	h, store := newScanFixture(t, &stubRepo{
		UploadFn: func(upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error) {
			t.Fatal("upload must not be attempted without a document name")
			return nil, nil
		},
	})
	scan := store.Create()
	if _, err := store.AddFile(scan.ID, "page-1.jpg", "image/jpeg", []byte("bytes")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	req := handlerSession(httptest.NewRequest(http.MethodPost, "/api/v1/scans/"+scan.ID+"/upload", nil))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.SubmitScan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please fill document name.") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestSubmitScan_ReturnsAssignedDocumentID(t *testing.T) {
	repo := &stubRepo{
		UploadFn: func(upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error) {
			onProgress(100)
			receipt := &domain.UploadReceipt{}
			receipt.Document.Pk = json.Number("42")
			return receipt, nil
		},
	}
	h, store := newScanFixture(t, repo)
	scan := store.Create()
	if err := store.SetDocumentName(scan.ID, "Quarterly Invoice"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if _, err := store.AddFile(scan.ID, "page-1.jpg", "image/jpeg", []byte("bytes")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	req := handlerSession(httptest.NewRequest(http.MethodPost, "/api/v1/scans/"+scan.ID+"/upload", nil))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.SubmitScan(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["document_id"] != "42" {
		t.Fatalf("expected document id 42, got %+v", body)
	}

	// Session is cleared after a successful submit.
	cleared, err := store.Get(scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if len(cleared.Files) != 0 || cleared.DocumentName != "" {
		t.Fatalf("expected cleared session, got %+v", cleared)
	}
}

func TestSubmitScan_UploadFailureKeepsFiles(t *testing.T) {
	repo := &stubRepo{
		UploadFn: func(upload *domain.PendingUpload, onProgress domain.ProgressFunc) (*domain.UploadReceipt, error) {
			return nil, errors.New("backend rejected the batch")
		},
	}
	h, store := newScanFixture(t, repo)
	scan := store.Create()
	_ = store.SetDocumentName(scan.ID, "Quarterly Invoice")
	_, _ = store.AddFile(scan.ID, "page-1.jpg", "image/jpeg", []byte("bytes"))

	req := handlerSession(httptest.NewRequest(http.MethodPost, "/api/v1/scans/"+scan.ID+"/upload", nil))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.SubmitScan(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	kept, err := store.Get(scan.ID)
	if err != nil {
		t.Fatalf("get scan: %v", err)
	}
	if len(kept.Files) != 1 {
		t.Fatalf("expected files retained for retry, got %d", len(kept.Files))
	}
}

func TestGetUploadState_DefaultsToIdle(t *testing.T) {
	h, store := newScanFixture(t, &stubRepo{})
	scan := store.Create()

	req := handlerSession(httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+scan.ID+"/upload", nil))
	req = mux.SetURLVars(req, map[string]string{"id": scan.ID})
	rec := httptest.NewRecorder()
	h.GetUploadState(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var state service.UploadState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if state.IsUploading || state.Progress != 0 {
		t.Fatalf("expected idle state, got %+v", state)
	}
}
