package service

import (
	"context"
	"strings"
	"sync"

	"docscan-gateway/internal/domain"
)

// DocumentService mediates document reads and mutations against the OCR
// backend. Documents are owned by the backend; this service only keeps a
// read-through copy of detail fetches, invalidated after mutations.
type DocumentService struct {
	repo   domain.DocumentRepository
	logger domain.Logger

	cacheMu sync.RWMutex
	cache   map[string]*domain.Document
}

// NewDocumentService creates a new document service
func NewDocumentService(repo domain.DocumentRepository, logger domain.Logger) *DocumentService {
	return &DocumentService{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]*domain.Document),
	}
}

// ListDocuments fetches one page of the listing. Pages are never cached;
// changing page or query always refetches.
func (s *DocumentService) ListDocuments(ctx context.Context, session *domain.Session, page int, query string) (*domain.DocumentPage, error) {
	return s.repo.List(ctx, session, page, query)
}

// GetDocument returns the document detail, read through the cache. Only
// documents the backend has finished with are cached: a detail fetched while
// its stage is still moving would otherwise be served stale after processing
// completes.
func (s *DocumentService) GetDocument(ctx context.Context, session *domain.Session, id string) (*domain.Document, error) {
	s.cacheMu.RLock()
	cached, ok := s.cache[id]
	s.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	doc, err := s.repo.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if stageSettled(doc.FileStage) {
		s.cacheMu.Lock()
		s.cache[id] = doc
		s.cacheMu.Unlock()
	}
	return doc, nil
}

// stageSettled reports whether the backend will no longer mutate the
// document on its own.
func stageSettled(stage string) bool {
	return stage == domain.StageCompleted || stage == domain.StageFailed
}

// DeleteDocument removes the document and invalidates its cached copy.
func (s *DocumentService) DeleteDocument(ctx context.Context, session *domain.Session, id string) error {
	if err := s.repo.Delete(ctx, session, id); err != nil {
		return err
	}
	s.Invalidate(id)
	s.logger.Info("Document deleted", "document_id", id)
	return nil
}

// StatusEvents fetches the current processing event sequence once.
func (s *DocumentService) StatusEvents(ctx context.Context, session *domain.Session, id string) ([]domain.DocumentStatusEvent, error) {
	return s.repo.StatusEvents(ctx, session, id)
}

// Download performs the signed-URL flow: request a download ticket from the
// backend, then fetch the file directly from storage. A not-ready ticket
// response (202) propagates as the soft not-ready error.
func (s *DocumentService) Download(ctx context.Context, session *domain.Session, id string) (*domain.DownloadResult, error) {
	ticket, err := s.repo.DownloadTicket(ctx, session, id)
	if err != nil {
		return nil, err
	}

	body, size, err := s.repo.FetchSigned(ctx, ticket.DownloadURL)
	if err != nil {
		return nil, err
	}

	filename := ticket.Filename
	if filename == "" {
		filename = s.fallbackFilename(ctx, session, id)
	}

	return &domain.DownloadResult{
		Filename: filename,
		Size:     size,
		Content:  body,
	}, nil
}

// Invalidate drops a document from the read-through cache.
func (s *DocumentService) Invalidate(id string) {
	s.cacheMu.Lock()
	delete(s.cache, id)
	s.cacheMu.Unlock()
}

// fallbackFilename derives a save name from the document title when the
// ticket carries none: trimmed title with spaces replaced by dashes.
func (s *DocumentService) fallbackFilename(ctx context.Context, session *domain.Session, id string) string {
	doc, err := s.GetDocument(ctx, session, id)
	if err != nil || strings.TrimSpace(doc.Title) == "" {
		return "document-" + id + ".pdf"
	}
	return strings.ReplaceAll(strings.TrimSpace(doc.Title), " ", "-") + ".pdf"
}
