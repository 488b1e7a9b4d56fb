package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// Outcome is the terminal state of a pipeline candidate.
type Outcome string

// Pipeline outcomes. A candidate either becomes a permanent ledger entry or
// is rejected with a reason.
const (
	OutcomeSaved     Outcome = "saved"
	OutcomeShorts    Outcome = "shorts"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInvalid   Outcome = "invalid"
)

// ValidationError marks a candidate rejected for malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError marks a pipeline failure past validation.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// IngestService runs every candidate record through the same state machine
// regardless of entry path (poll or push): short-filtered, dedup-checked,
// persisted. One lock serializes every read-modify-write of the ledger and
// the dedup window across both paths.
type IngestService struct {
	mu      sync.Mutex
	history *store.HistoryStore
	window  map[string]time.Time
	horizon time.Duration
	loc     *time.Location
	now     func() time.Time
}

// NewIngestService creates the pipeline. The horizon is the sliding window
// within which a repeat sighting of an id is suppressed; loc is the display
// timezone used to pick the ledger date bucket.
func NewIngestService(history *store.HistoryStore, horizon time.Duration, loc *time.Location) *IngestService {
	if loc == nil {
		loc = time.UTC
	}
	return &IngestService{
		history: history,
		window:  make(map[string]time.Time),
		horizon: horizon,
		loc:     loc,
		now:     time.Now,
	}
}

// IsShortsCandidate reports whether a candidate is short-form by any of
// duration, channel label, or URL path segment.
func IsShortsCandidate(rec models.VideoRecord) bool {
	return rec.Duration == models.ShortsDuration ||
		rec.Channel == models.ShortsChannel ||
		strings.Contains(rec.URL, "/shorts/")
}

// Ingest runs one candidate through the pipeline and returns its outcome.
// The source label only feeds logs and metrics.
func (s *IngestService) Ingest(rec models.VideoRecord, source string) Outcome {
	outcome := s.ingest(rec)
	IngestTotal.WithLabelValues(source, string(outcome)).Inc()
	if outcome == OutcomeSaved {
		logger.Log.Info("history entry persisted",
			zap.String("videoId", rec.VideoID),
			zap.String("title", rec.Title),
			zap.String("source", source),
		)
	}
	return outcome
}

func (s *IngestService) ingest(rec models.VideoRecord) Outcome {
	if rec.VideoID == "" || rec.VideoID == models.UnknownField {
		return OutcomeInvalid
	}
	if IsShortsCandidate(rec) {
		return OutcomeShorts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneWindowLocked(now)

	if last, ok := s.window[rec.VideoID]; ok && now.Sub(last) < s.horizon {
		return OutcomeDuplicate
	}

	history := s.history.Load()
	if store.HasVideoID(history, rec.VideoID) {
		return OutcomeDuplicate
	}

	store.AddEntry(history, rec, now.In(s.loc))
	if err := s.history.Save(history); err != nil {
		// Not rolled back: the entry rides along with the next successful
		// save of the ledger.
		logger.Log.Error("failed to save history", zap.Error(err), zap.String("videoId", rec.VideoID))
	}
	s.window[rec.VideoID] = now
	return OutcomeSaved
}

// InWindow reports whether an id was accepted within the duplicate horizon.
func (s *IngestService) InWindow(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.window[videoID]
	return ok && s.now().Sub(last) < s.horizon
}

// History returns the persisted ledger under the pipeline lock.
func (s *IngestService) History() store.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Load()
}

// Entries older than twice the horizon can never suppress anything again.
func (s *IngestService) pruneWindowLocked(now time.Time) {
	for id, at := range s.window {
		if now.Sub(at) >= 2*s.horizon {
			delete(s.window, id)
		}
	}
}
