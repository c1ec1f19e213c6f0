package service

import (
	"fmt"
	"strings"
	"sync"

	"docscan-gateway/internal/domain"

	"github.com/google/uuid"
)

// ScanStore holds the ephemeral pending uploads of active scan sessions. A
// scan session exists only between file selection and successful submission;
// nothing here survives the process.
//
// The pending-file array is mutated by several independent editors (crop,
// rotate, delete, reorder), so every mutation is a read-modify-write of the
// latest snapshot under the store lock. Files are joined on their generated
// id, never on the display name.
type ScanStore struct {
	mu     sync.Mutex
	scans  map[string]*domain.PendingUpload
	logger domain.Logger
}

// NewScanStore creates an empty scan session store.
func NewScanStore(logger domain.Logger) *ScanStore {
	return &ScanStore{
		scans:  make(map[string]*domain.PendingUpload),
		logger: logger,
	}
}

// Create opens a new scan session and returns it.
func (s *ScanStore) Create() *domain.PendingUpload {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan := &domain.PendingUpload{ID: uuid.NewString()}
	s.scans[scan.ID] = scan
	s.logger.Debug("Scan session created", "scan_id", scan.ID)
	return scan
}

// Get returns a copy of the scan session state.
func (s *ScanStore) Get(scanID string) (*domain.PendingUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return nil, domain.ErrScanNotFound
	}
	return snapshot(scan), nil
}

// Delete drops a scan session, e.g. when the user navigates away.
func (s *ScanStore) Delete(scanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scans, scanID)
}

// SetDocumentName updates the document name for the session.
func (s *ScanStore) SetDocumentName(scanID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return domain.ErrScanNotFound
	}
	scan.DocumentName = name
	return nil
}

// AddFile appends a captured file. Duplicate display names are rejected at
// capture time so the page cards stay distinguishable.
func (s *ScanStore) AddFile(scanID, name, contentType string, data []byte) (*domain.PendingFile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "file name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return nil, domain.ErrScanNotFound
	}
	if scan.HasFileName(name) {
		return nil, domain.ErrDuplicateFileName
	}

	file := domain.PendingFile{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
	scan.Files = append(scan.Files, file)
	return &file, nil
}

// RemoveFile deletes one file from the session.
func (s *ScanStore) RemoveFile(scanID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return domain.ErrScanNotFound
	}
	for i := range scan.Files {
		if scan.Files[i].ID == fileID {
			scan.Files = append(scan.Files[:i], scan.Files[i+1:]...)
			return nil
		}
	}
	return domain.ErrFileNotFound
}

// ReplaceFileData swaps the bytes of a file in place after an edit. The id
// and display name are preserved so the visual card keeps its identity.
func (s *ScanStore) ReplaceFileData(scanID, fileID, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return domain.ErrScanNotFound
	}
	file, ok := scan.FileByID(fileID)
	if !ok {
		return domain.ErrFileNotFound
	}
	file.Data = data
	if contentType != "" {
		file.ContentType = contentType
	}
	return nil
}

// Reorder rearranges the files into the given id order. The order must be a
// permutation of the current file set; it is submitted to the backend as-is.
func (s *ScanStore) Reorder(scanID string, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return domain.ErrScanNotFound
	}
	if len(orderedIDs) != len(scan.Files) {
		return fmt.Errorf("order must list all %d files, got %d", len(scan.Files), len(orderedIDs))
	}

	byID := make(map[string]domain.PendingFile, len(scan.Files))
	for _, f := range scan.Files {
		byID[f.ID] = f
	}

	reordered := make([]domain.PendingFile, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		file, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown file id %q in order", id)
		}
		delete(byID, id)
		reordered = append(reordered, file)
	}
	scan.Files = reordered
	return nil
}

// ClearFiles resets the session after a successful submission.
func (s *ScanStore) ClearFiles(scanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scan, ok := s.scans[scanID]
	if !ok {
		return domain.ErrScanNotFound
	}
	scan.Files = nil
	scan.DocumentName = ""
	return nil
}

// snapshot copies a pending upload so callers never observe concurrent
// mutation. File data slices are shared; they are replaced, never written
// through.
func snapshot(scan *domain.PendingUpload) *domain.PendingUpload {
	out := &domain.PendingUpload{
		ID:           scan.ID,
		DocumentName: scan.DocumentName,
		Files:        make([]domain.PendingFile, len(scan.Files)),
	}
	copy(out.Files, scan.Files)
	return out
}
