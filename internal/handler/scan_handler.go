package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"docscan-gateway/internal/domain"
	"docscan-gateway/internal/imaging"
	"docscan-gateway/internal/service"

	"github.com/gorilla/mux"
)

// ScanHandler manages scan sessions: capturing pages, editing them, and
// submitting the batch to the OCR backend.
type ScanHandler struct {
	store         *service.ScanStore
	images        *service.ImageService
	uploads       *service.UploadService
	logger        domain.Logger
	maxUploadSize int64
}

// NewScanHandler creates a new scan session handler
func NewScanHandler(store *service.ScanStore, images *service.ImageService, uploads *service.UploadService, config domain.Config, logger domain.Logger) *ScanHandler {
	return &ScanHandler{
		store:         store,
		images:        images,
		uploads:       uploads,
		logger:        logger,
		maxUploadSize: config.GetMaxUploadSize(),
	}
}

// scanFileView is the listing shape of one pending page.
type scanFileView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	SizeLabel   string `json:"size_label"`
}

// scanView is the listing shape of a scan session.
type scanView struct {
	ID           string         `json:"id"`
	DocumentName string         `json:"document_name"`
	Files        []scanFileView `json:"files"`
	TotalSize    int64          `json:"total_size"`
	Submittable  bool           `json:"submittable"`
}

func viewOf(scan *domain.PendingUpload) scanView {
	files := make([]scanFileView, 0, len(scan.Files))
	for i := range scan.Files {
		f := &scan.Files[i]
		files = append(files, scanFileView{
			ID:          f.ID,
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        f.Size(),
			SizeLabel:   domain.FormatFileSize(f.Size()),
		})
	}
	return scanView{
		ID:           scan.ID,
		DocumentName: scan.DocumentName,
		Files:        files,
		TotalSize:    scan.TotalSize(),
		Submittable:  scan.Submittable(),
	}
}

// CreateScan opens a new scan session.
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	scan := h.store.Create()
	writeJSON(w, http.StatusCreated, viewOf(scan))
}

// GetScan returns the session's current files and name.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(scan))
}

// DeleteScan discards the session and its pending files.
func (h *ScanHandler) DeleteScan(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]string{"message": "Scan session discarded"})
}

type setNameRequest struct {
	DocumentName string `json:"document_name"`
}

// SetDocumentName updates the name the batch will be submitted under.
func (h *ScanHandler) SetDocumentName(w http.ResponseWriter, r *http.Request) {
	var req setNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetDocumentName(mux.Vars(r)["id"], req.DocumentName); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"document_name": req.DocumentName})
}

// AddFile captures one page into the session from a multipart form. A file
// whose display name is already present in the session is rejected with a
// conflict so the client can prompt for a different name.
func (h *ScanHandler) AddFile(w http.ResponseWriter, r *http.Request) {
	scanID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	// Strip any path components from the client-supplied name.
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if override := strings.TrimSpace(r.FormValue("name")); override != "" {
		name = override
	}
	if name == "" || name == "." {
		writeError(w, http.StatusBadRequest, "File name is required")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file contents")
		return
	}

	contentType := header.Header.Get("Content-Type")
	added, err := h.store.AddFile(scanID, name, contentType, data)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.logger.Info("Page captured", "scan_id", scanID, "file", added.Name, "size", domain.FormatFileSize(added.Size()))
	writeJSON(w, http.StatusCreated, scanFileView{
		ID:          added.ID,
		Name:        added.Name,
		ContentType: added.ContentType,
		Size:        added.Size(),
		SizeLabel:   domain.FormatFileSize(added.Size()),
	})
}

// RemoveFile drops one page from the session.
func (h *ScanHandler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.RemoveFile(vars["id"], vars["fileId"]); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File removed"})
}

type cropRequest struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Rotation float64 `json:"rotation"`
	Zoom     float64 `json:"zoom"`
}

// CropFile applies a crop rectangle (in natural image coordinates) plus an
// optional rotation and zoom to one page, replacing its bytes in place.
func (h *ScanHandler) CropFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req cropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Zoom == 0 {
		req.Zoom = 1
	}

	rect := imaging.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := h.images.CropFile(vars["id"], vars["fileId"], rect, req.Rotation, req.Zoom); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File cropped"})
}

type rotateRequest struct {
	Angle int `json:"angle"`
}

// RotateFile turns one page by a multiple of 90 degrees.
func (h *ScanHandler) RotateFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.images.RotateFile(vars["id"], vars["fileId"], req.Angle); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File rotated"})
}

// RotateAll turns every page in the session by the same increment.
func (h *ScanHandler) RotateAll(w http.ResponseWriter, r *http.Request) {
	scanID := mux.Vars(r)["id"]

	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.images.RotateAll(r.Context(), scanID, req.Angle); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All files rotated"})
}

type reorderRequest struct {
	Order []string `json:"order"`
}

// Reorder rearranges the session's pages into the given id order. The order
// decides page order in the submitted document.
func (h *ScanHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	scanID := mux.Vars(r)["id"]

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.Reorder(scanID, req.Order); err != nil {
		writeAppError(w, err)
		return
	}

	scan, err := h.store.Get(scanID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(scan))
}

// SubmitScan uploads the session's pages to the OCR backend as one document.
func (h *ScanHandler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}
	scanID := mux.Vars(r)["id"]

	documentID, err := h.uploads.Submit(r.Context(), session, scanID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"document_id": documentID})
}

// GetUploadState returns whether a submit is in flight and its aggregate
// progress percentage.
func (h *ScanHandler) GetUploadState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.uploads.State(mux.Vars(r)["id"]))
}
