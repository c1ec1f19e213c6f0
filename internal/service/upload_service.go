package service

import (
	"context"
	"strings"
	"sync"

	"docscan-gateway/internal/domain"
	apperrors "docscan-gateway/pkg/errors"
)

// UploadState is the observable state of one scan session's upload: whether a
// request is in flight, the aggregate progress percentage, and the document
// id assigned by the backend once the upload succeeded.
type UploadState struct {
	IsUploading bool   `json:"is_uploading"`
	Progress    int    `json:"progress"`
	UploadedID  string `json:"uploaded_id,omitempty"`
}

// UploadService orchestrates the submission of pending scans to the OCR
// backend. At most one upload is in flight per scan session; concurrent
// submissions are rejected rather than queued.
type UploadService struct {
	repo   domain.DocumentRepository
	store  *ScanStore
	logger domain.Logger

	mu     sync.Mutex
	states map[string]*UploadState
}

// NewUploadService creates a new upload orchestrator
func NewUploadService(repo domain.DocumentRepository, store *ScanStore, logger domain.Logger) *UploadService {
	return &UploadService{
		repo:   repo,
		store:  store,
		logger: logger,
		states: make(map[string]*UploadState),
	}
}

// State returns the current upload state for a scan session.
func (s *UploadService) State(scanID string) UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[scanID]; ok {
		return *state
	}
	return UploadState{}
}

// Submit validates and uploads the pending files of a scan session.
//
// The document name is checked before any network traffic: a trimmed-empty
// name fails validation without a request. On success the backend-assigned
// document id is stored and the session's files and name are cleared. Whatever
// the outcome, the in-flight flag and progress are reset.
func (s *UploadService) Submit(ctx context.Context, session *domain.Session, scanID string) (string, error) {
	scan, err := s.store.Get(scanID)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(scan.DocumentName) == "" {
		return "", apperrors.NewValidationError("Please fill document name.")
	}
	if len(scan.Files) == 0 {
		return "", apperrors.NewValidationError("No files selected.")
	}

	if err := s.begin(scanID); err != nil {
		return "", err
	}
	defer s.finish(scanID)

	receipt, err := s.repo.Upload(ctx, session, scan, func(percent int) {
		s.setProgress(scanID, percent)
	})
	if err != nil {
		s.logger.Error("Upload failed", err, "scan_id", scanID)
		return "", err
	}

	uploadedID := receipt.Document.Pk.String()
	s.mu.Lock()
	if state, ok := s.states[scanID]; ok {
		state.UploadedID = uploadedID
	}
	s.mu.Unlock()

	if err := s.store.ClearFiles(scanID); err != nil {
		// The upload itself succeeded; a missing session just means the user
		// already navigated away.
		s.logger.Warn("Could not clear scan session after upload", "scan_id", scanID, "error", err)
	}

	s.logger.Info("All files uploaded successfully", "scan_id", scanID, "document_id", uploadedID)
	return uploadedID, nil
}

// begin marks the session as uploading, rejecting a second in-flight submit.
func (s *UploadService) begin(scanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[scanID]
	if !ok {
		state = &UploadState{}
		s.states[scanID] = state
	}
	if state.IsUploading {
		return apperrors.NewValidationError(domain.ErrUploadInFlight.Error())
	}
	state.IsUploading = true
	state.Progress = 0
	state.UploadedID = ""
	return nil
}

func (s *UploadService) finish(scanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[scanID]; ok {
		state.IsUploading = false
		state.Progress = 0
	}
}

func (s *UploadService) setProgress(scanID string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[scanID]; ok && percent > state.Progress {
		state.Progress = percent
	}
}
