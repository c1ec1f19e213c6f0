package service

import (
	"context"
	"sync"
	"time"

	"docscan-gateway/internal/domain"
)

// PollState is the derived processing state of one watched document.
type PollState string

const (
	// PollIdle: no document id to watch yet.
	PollIdle PollState = "IDLE"
	// PollPending: id present but the backend has recorded no events yet.
	PollPending PollState = "PENDING"
	// PollChecking: events exist and the last one is not terminal.
	PollChecking PollState = "CHECKING"
	// PollSucceeded / PollFailed: terminal.
	PollSucceeded PollState = "SUCCESS"
	PollFailed    PollState = "FAILED"
)

// PollSnapshot is the externally visible state of a watch: the derived state,
// the event sequence as last fetched, and the full document entity once the
// watch succeeded.
type PollSnapshot struct {
	DocumentID string                       `json:"document_id"`
	State      PollState                    `json:"state"`
	Events     []domain.DocumentStatusEvent `json:"events"`
	Document   *domain.Document             `json:"document,omitempty"`
	Message    string                       `json:"message,omitempty"`
}

// Terminal reports whether the watch has stopped for good.
func (s PollSnapshot) Terminal() bool {
	return s.State == PollSucceeded || s.State == PollFailed
}

// StatusPoller drives the status state machine for one document at a fixed
// interval. Each fetch fully completes before the next is scheduled; the
// timer is re-armed only after a response, so polls never overlap. The only
// cancellation mechanisms are the context and a terminal observation.
type StatusPoller struct {
	repo     domain.DocumentRepository
	logger   domain.Logger
	interval time.Duration
}

// NewStatusPoller creates a poller with the given fetch interval.
func NewStatusPoller(repo domain.DocumentRepository, logger domain.Logger, interval time.Duration) *StatusPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &StatusPoller{
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

// Watch polls the document's status events until a terminal state, an empty
// response, a fetch error, or context cancellation. onUpdate is invoked after
// every transition with the latest snapshot.
//
// Transition rules, evaluated per response:
//   - fetch error: FAILED, stop (downgraded to a failed check, not propagated)
//   - empty sequence: stay PENDING, stop (nothing to check yet)
//   - last event SUCCESS: SUCCESS, stop, fetch the full document entity
//   - last event FAILED or ERROR: FAILED, stop
//   - anything else: CHECKING, re-arm the timer
func (p *StatusPoller) Watch(ctx context.Context, session *domain.Session, documentID string, onUpdate func(PollSnapshot)) PollSnapshot {
	snap := PollSnapshot{DocumentID: documentID, State: PollPending}
	emit := func() {
		if onUpdate != nil {
			onUpdate(snap)
		}
	}

	timer := time.NewTimer(0) // first fetch immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return snap
		case <-timer.C:
		}

		events, err := p.repo.StatusEvents(ctx, session, documentID)
		if err != nil {
			p.logger.Warn("Status check failed", "document_id", documentID, "error", err)
			snap.State = PollFailed
			snap.Message = "Failed to check processing status"
			emit()
			return snap
		}

		if len(events) == 0 {
			// Nothing recorded yet. Stop rather than spin; the caller may
			// start a fresh watch later.
			snap.State = PollPending
			emit()
			return snap
		}

		snap.Events = events
		last := events[len(events)-1]

		if domain.IsTerminalStatus(last.Status) {
			if last.Status == domain.StatusSuccess {
				snap.State = PollSucceeded
				// Hand off to a detail fetch of the full entity; the event
				// log is not polled again.
				doc, err := p.repo.Get(ctx, session, documentID)
				if err != nil {
					p.logger.Warn("Document detail fetch after success failed", "document_id", documentID, "error", err)
				} else {
					snap.Document = doc
				}
			} else {
				snap.State = PollFailed
				snap.Message = last.Message
			}
			emit()
			return snap
		}

		snap.State = PollChecking
		emit()
		timer.Reset(p.interval)
	}
}

// watch is one running Watch goroutine plus its latest snapshot.
type watch struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	latest PollSnapshot
}

// WatchManager keys running pollers by document id so handlers can start a
// watch, read its latest snapshot, and stop it. Shutting the manager down
// cancels every watch.
type WatchManager struct {
	poller *StatusPoller
	logger domain.Logger

	mu      sync.Mutex
	watches map[string]*watch
}

// NewWatchManager creates an empty watch registry.
func NewWatchManager(poller *StatusPoller, logger domain.Logger) *WatchManager {
	return &WatchManager{
		poller:  poller,
		logger:  logger,
		watches: make(map[string]*watch),
	}
}

// Start begins watching a document. Starting an already-watched document is a
// no-op while its watch is running; a finished watch is replaced so a client
// can re-check a document after the first watch terminated.
func (m *WatchManager) Start(session *domain.Session, documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.watches[documentID]; ok {
		if !finished(existing) {
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{
		cancel: cancel,
		done:   make(chan struct{}),
		latest: PollSnapshot{DocumentID: documentID, State: PollPending},
	}
	m.watches[documentID] = w

	go func() {
		defer close(w.done)
		m.poller.Watch(ctx, session, documentID, func(snap PollSnapshot) {
			w.mu.Lock()
			w.latest = snap
			w.mu.Unlock()
		})
	}()
}

// Snapshot returns the latest state of a watch. The second return is false
// when the document is not being watched. A watch whose goroutine has finished
// on a terminal state is removed from the registry once that terminal snapshot
// has been read, so abandoned watches do not accumulate; the terminal state is
// delivered at least once.
func (m *WatchManager) Snapshot(documentID string) (PollSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.watches[documentID]
	if !ok {
		return PollSnapshot{DocumentID: documentID, State: PollIdle}, false
	}

	w.mu.Lock()
	latest := w.latest
	w.mu.Unlock()

	if latest.Terminal() && finished(w) {
		delete(m.watches, documentID)
	}
	return latest, true
}

// finished reports whether the watch goroutine has returned.
func finished(w *watch) bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Stop cancels a single watch, e.g. when the owning view goes away.
func (m *WatchManager) Stop(documentID string) {
	m.mu.Lock()
	w, ok := m.watches[documentID]
	if ok {
		delete(m.watches, documentID)
	}
	m.mu.Unlock()

	if ok {
		w.cancel()
		<-w.done
	}
}

// Shutdown cancels every running watch. Called when the server stops so no
// poll goroutines leak past the process lifecycle.
func (m *WatchManager) Shutdown() {
	m.mu.Lock()
	watches := m.watches
	m.watches = make(map[string]*watch)
	m.mu.Unlock()

	for _, w := range watches {
		w.cancel()
		<-w.done
	}
}
