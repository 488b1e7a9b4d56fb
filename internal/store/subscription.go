package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// Snapshot is the most recent persisted roster; only one is retained and it
// is fully replaced on each successful fetch.
type Snapshot struct {
	Date     string   `json:"date"`
	Channels []string `json:"channels"`
}

// MonthlyChange accumulates added/removed channel names for one month.
// Accumulation is monotonic: diff events union into the sets, never replace
// them.
type MonthlyChange struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// MonthlyChangeEntry pairs a month with its change sets for ordered output.
type MonthlyChangeEntry struct {
	Month   string   `json:"month"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// subscriptionDoc is the persisted document shape.
type subscriptionDoc struct {
	LastSnapshot   *Snapshot                `json:"last_snapshot"`
	MonthlyChanges map[string]MonthlyChange `json:"monthly_changes"`
}

// SubscriptionStore persists the roster snapshot and the monthly change log
// as a single JSON document. The poller writes it; the serving path reads
// it; both go through the store's lock.
type SubscriptionStore struct {
	mu   sync.Mutex
	path string
}

// NewSubscriptionStore creates a store persisting at path.
func NewSubscriptionStore(path string) *SubscriptionStore {
	return &SubscriptionStore{path: path}
}

func (s *SubscriptionStore) load() subscriptionDoc {
	empty := subscriptionDoc{MonthlyChanges: map[string]MonthlyChange{}}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warn("failed to read subscription store", zap.String("path", s.path), zap.Error(err))
		}
		return empty
	}
	var doc subscriptionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Log.Warn("subscription store is not a valid document, ignoring", zap.String("path", s.path), zap.Error(err))
		return empty
	}
	if doc.MonthlyChanges == nil {
		doc.MonthlyChanges = map[string]MonthlyChange{}
	}
	return doc
}

func (s *SubscriptionStore) save(doc subscriptionDoc) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create subscription dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscription store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write subscription store: %w", err)
	}
	return nil
}

// ApplyRoster diffs the current roster names against the last snapshot,
// unions any added/removed sets into the current month's change entry, and
// replaces the snapshot. With no prior snapshot, or no change, nothing is
// recorded in the change log (re-running an unchanged roster is a no-op).
// The snapshot itself is always replaced. Returns the change log sorted
// newest month first.
func (s *SubscriptionStore) ApplyRoster(names []string, now time.Time) ([]MonthlyChangeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()

	current := map[string]bool{}
	for _, n := range names {
		if n != "" {
			current[n] = true
		}
	}

	if doc.LastSnapshot != nil && len(doc.LastSnapshot.Channels) > 0 {
		previous := map[string]bool{}
		for _, n := range doc.LastSnapshot.Channels {
			previous[n] = true
		}

		var added, removed []string
		for n := range current {
			if !previous[n] {
				added = append(added, n)
			}
		}
		for n := range previous {
			if !current[n] {
				removed = append(removed, n)
			}
		}

		if len(added) > 0 || len(removed) > 0 {
			month := now.Format("2006-01")
			entry := doc.MonthlyChanges[month]
			entry.Added = unionSorted(entry.Added, added)
			entry.Removed = unionSorted(entry.Removed, removed)
			doc.MonthlyChanges[month] = entry
			logger.Log.Info("subscription changes recorded",
				zap.Int("added", len(added)),
				zap.Int("removed", len(removed)),
				zap.String("month", month),
			)
		}
	}

	channels := make([]string, 0, len(current))
	for n := range current {
		channels = append(channels, n)
	}
	sort.Strings(channels)
	doc.LastSnapshot = &Snapshot{
		Date:     now.Format("2006-01-02"),
		Channels: channels,
	}

	if err := s.save(doc); err != nil {
		// Not rolled back: the in-memory update rides along with the next
		// successful save.
		logger.Log.Error("failed to save subscription store", zap.Error(err))
		return sortedChanges(doc.MonthlyChanges), err
	}
	return sortedChanges(doc.MonthlyChanges), nil
}

// MonthlyChanges returns the persisted change log sorted newest month first.
func (s *SubscriptionStore) MonthlyChanges() []MonthlyChangeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedChanges(s.load().MonthlyChanges)
}

// LastSnapshot returns the persisted snapshot, or nil if none exists yet.
func (s *SubscriptionStore) LastSnapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().LastSnapshot
}

func unionSorted(existing, incoming []string) []string {
	set := map[string]bool{}
	for _, n := range existing {
		set[n] = true
	}
	for _, n := range incoming {
		set[n] = true
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func sortedChanges(changes map[string]MonthlyChange) []MonthlyChangeEntry {
	out := make([]MonthlyChangeEntry, 0, len(changes))
	for month, c := range changes {
		out = append(out, MonthlyChangeEntry{Month: month, Added: c.Added, Removed: c.Removed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}
