// Package store provides the durable JSON-document stores: the per-day
// watch-history ledger and the subscription snapshot/change log.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// History is the persisted ledger shape: date ("YYYY-MM-DD") to entries,
// most-recently-added first within a day. A video id appears at most once
// across the entire structure; callers verify that before Add.
type History = map[string][]models.VideoRecord

// MonthlyCount is the legacy single-count monthly aggregation.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyBreakdown splits a month's entries into full videos and shorts.
type MonthlyBreakdown struct {
	Month  string `json:"month"`
	Videos int    `json:"videos"`
	Shorts int    `json:"shorts"`
}

// HistoryStore round-trips the ledger to a single JSON document. It is an
// append-only log: entries are never mutated or deleted here.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates a store persisting at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Load reads the full ledger. A missing file or a non-object document is
// treated as an empty ledger rather than an error.
func (s *HistoryStore) Load() History {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warn("failed to read history file", zap.String("path", s.path), zap.Error(err))
		}
		return History{}
	}

	var history History
	if err := json.Unmarshal(raw, &history); err != nil {
		logger.Log.Warn("history file is not a date mapping, ignoring", zap.String("path", s.path), zap.Error(err))
		return History{}
	}
	if history == nil {
		return History{}
	}
	return history
}

// Save writes the full ledger, creating the parent directory if needed.
func (s *HistoryStore) Save(history History) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// AddEntry inserts a record at the front of its date bucket, stamping the
// timestamp from at. Global uniqueness must already have been checked via
// HasVideoID.
func AddEntry(history History, rec models.VideoRecord, at time.Time) {
	rec.Timestamp = at.Format(time.RFC3339)
	date := at.Format("2006-01-02")
	history[date] = append([]models.VideoRecord{rec}, history[date]...)
}

// HasVideoID reports whether a video id exists anywhere in the ledger.
// Dedup is global, not per-day.
func HasVideoID(history History, videoID string) bool {
	for _, entries := range history {
		for _, e := range entries {
			if e.VideoID == videoID {
				return true
			}
		}
	}
	return false
}

// IsShorts reports whether a persisted entry counts as a short for
// aggregation purposes.
func IsShorts(rec models.VideoRecord) bool {
	return rec.Duration == models.ShortsDuration || rec.Channel == models.ShortsChannel
}

// FilterShorts returns a copy of the ledger with shorts removed and emptied
// dates dropped.
func FilterShorts(history History) History {
	filtered := History{}
	for date, entries := range history {
		var kept []models.VideoRecord
		for _, e := range entries {
			if !IsShorts(e) {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			filtered[date] = kept
		}
	}
	return filtered
}

// MonthlyStats aggregates entry counts by "YYYY-MM", newest month first.
// Kept for backward compatibility with consumers of the single count.
func MonthlyStats(history History) []MonthlyCount {
	counts := map[string]int{}
	for date, entries := range history {
		if len(date) < 7 {
			continue
		}
		counts[date[:7]] += len(entries)
	}
	out := make([]MonthlyCount, 0, len(counts))
	for month, n := range counts {
		out = append(out, MonthlyCount{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// MonthlyBreakdownStats aggregates video/short counts by "YYYY-MM", newest
// month first.
func MonthlyBreakdownStats(history History) []MonthlyBreakdown {
	byMonth := map[string]*MonthlyBreakdown{}
	for date, entries := range history {
		if len(date) < 7 {
			continue
		}
		month := date[:7]
		b := byMonth[month]
		if b == nil {
			b = &MonthlyBreakdown{Month: month}
			byMonth[month] = b
		}
		for _, e := range entries {
			if IsShorts(e) {
				b.Shorts++
			} else {
				b.Videos++
			}
		}
	}
	out := make([]MonthlyBreakdown, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}
