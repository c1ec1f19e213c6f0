// Package handler provides HTTP handlers for the API.
package handler

import (
	"io"
	"net/http"
	"strconv"

	"docscan-gateway/internal/domain"
	"docscan-gateway/internal/service"
	apperrors "docscan-gateway/pkg/errors"

	"github.com/gorilla/mux"
)

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documentService domain.DocumentService
	watches         *service.WatchManager
	logger          domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService domain.DocumentService, watches *service.WatchManager, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		watches:         watches,
		logger:          logger,
	}
}

// ListDocuments returns one page of the user's documents. Supports ?page= and
// a ?q= title filter, both forwarded to the backend.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}
	query := r.URL.Query().Get("q")

	listing, err := h.documentService.ListDocuments(r.Context(), session, page, query)
	if err != nil {
		h.logger.Error("Failed to list documents", err, "user_id", session.UserID)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// GetDocument returns one document's detail.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	document, err := h.documentService.GetDocument(r.Context(), session, documentID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, document)
}

// DeleteDocument deletes a document. There is no server-side undo, so the
// request must carry ?confirm=true; the client sets it after its dialog.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "Deletion must be confirmed with confirm=true")
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), session, documentID); err != nil {
		h.logger.Error("Failed to delete document", err, "document_id", documentID)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// GetDocumentStatus returns the document's processing event sequence as of
// now, without starting a watch.
func (h *DocumentHandler) GetDocumentStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	events, err := h.documentService.StatusEvents(r.Context(), session, documentID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if events == nil {
		events = make([]domain.DocumentStatusEvent, 0)
	}

	writeJSON(w, http.StatusOK, events)
}

// DownloadDocument streams the document file obtained through the signed-URL
// flow. A backend 202 means the file is still being produced; it is surfaced
// as a 202 with a retryable message, not as an error.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	result, err := h.documentService.Download(r.Context(), session, documentID)
	if err != nil {
		if apperrors.IsNotReady(err) {
			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":  "processing",
				"message": err.(*apperrors.AppError).Message,
			})
			return
		}
		h.logger.Error("Download failed", err, "document_id", documentID)
		writeAppError(w, err)
		return
	}
	defer result.Content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if result.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}
	if _, err := io.Copy(w, result.Content); err != nil {
		h.logger.Warn("Download stream interrupted", "document_id", documentID, "error", err)
	}
}

// StartWatch begins polling the document's processing status in the
// background. Starting an existing watch is a no-op.
func (h *DocumentHandler) StartWatch(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	h.watches.Start(session, documentID)
	snap, _ := h.watches.Snapshot(documentID)
	writeJSON(w, http.StatusAccepted, snap)
}

// GetWatch returns the latest snapshot of a running (or finished) watch.
func (h *DocumentHandler) GetWatch(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	snap, _ := h.watches.Snapshot(documentID)
	writeJSON(w, http.StatusOK, snap)
}

// StopWatch cancels a running watch, e.g. when the client navigates away.
func (h *DocumentHandler) StopWatch(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	h.watches.Stop(documentID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Watch stopped"})
}
