package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
)

func newTestIngest(t *testing.T, horizon time.Duration) *IngestService {
	t.Helper()
	historyStore := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	return NewIngestService(historyStore, horizon, time.UTC)
}

func candidate(videoID string) models.VideoRecord {
	return models.VideoRecord{
		VideoID:  videoID,
		Title:    "Title",
		Channel:  "Channel",
		Duration: "10:00",
		URL:      "https://www.youtube.com/watch?v=" + videoID,
	}
}

func TestIngestSavesAndPersists(t *testing.T) {
	t.Parallel()

	svc := newTestIngest(t, 5*time.Minute)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }

	assert.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000001"), "poll"))

	history := svc.History()
	require.Len(t, history["2024-05-10"], 1)
	assert.Equal(t, "vid00000001", history["2024-05-10"][0].VideoID)
	assert.NotEmpty(t, history["2024-05-10"][0].Timestamp)
}

func TestIngestRejectsInvalidID(t *testing.T) {
	t.Parallel()

	svc := newTestIngest(t, 5*time.Minute)

	assert.Equal(t, OutcomeInvalid, svc.Ingest(candidate(""), "push"))
	assert.Equal(t, OutcomeInvalid, svc.Ingest(candidate(models.UnknownField), "push"))
	assert.Empty(t, svc.History())
}

func TestIngestRejectsShorts(t *testing.T) {
	t.Parallel()

	svc := newTestIngest(t, 5*time.Minute)

	byDuration := candidate("shortVid001")
	byDuration.Duration = models.ShortsDuration
	assert.Equal(t, OutcomeShorts, svc.Ingest(byDuration, "poll"))

	byChannel := candidate("shortVid002")
	byChannel.Channel = models.ShortsChannel
	assert.Equal(t, OutcomeShorts, svc.Ingest(byChannel, "poll"))

	byURL := candidate("shortVid003")
	byURL.URL = "https://www.youtube.com/shorts/shortVid003"
	assert.Equal(t, OutcomeShorts, svc.Ingest(byURL, "poll"))

	assert.Empty(t, svc.History())
}

func TestIngestDeduplicatesAcrossPaths(t *testing.T) {
	t.Parallel()

	svc := newTestIngest(t, 5*time.Minute)

	assert.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000001"), "poll"))
	assert.Equal(t, OutcomeDuplicate, svc.Ingest(candidate("vid00000001"), "push"))

	history := svc.History()
	total := 0
	for _, entries := range history {
		total += len(entries)
	}
	assert.Equal(t, 1, total)
}

func TestIngestLedgerDedupOutlivesWindow(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	horizon := 5 * time.Minute

	svc := newTestIngest(t, horizon)
	now := base
	svc.now = func() time.Time { return now }

	assert.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000001"), "poll"))

	// Well past the window, the permanent ledger still rejects the id.
	now = base.Add(3 * horizon)
	assert.False(t, svc.InWindow("vid00000001"))
	assert.Equal(t, OutcomeDuplicate, svc.Ingest(candidate("vid00000001"), "poll"))
}

func TestIngestWindowPruning(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	horizon := 5 * time.Minute

	svc := newTestIngest(t, horizon)
	now := base
	svc.now = func() time.Time { return now }

	assert.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000001"), "poll"))
	assert.True(t, svc.InWindow("vid00000001"))

	// Within the horizon the window suppresses it.
	now = base.Add(horizon / 2)
	assert.True(t, svc.InWindow("vid00000001"))
	assert.Equal(t, OutcomeDuplicate, svc.Ingest(candidate("vid00000001"), "push"))

	// Past the horizon the window entry no longer applies, and once twice
	// the horizon has elapsed an unrelated ingest prunes it entirely.
	now = base.Add(2*horizon + time.Second)
	assert.False(t, svc.InWindow("vid00000001"))
	assert.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000002"), "poll"))

	svc.mu.Lock()
	_, present := svc.window["vid00000001"]
	svc.mu.Unlock()
	assert.False(t, present)
}

func TestIngestDateBucketUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("KST", 9*60*60)
	historyStore := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	svc := NewIngestService(historyStore, 5*time.Minute, loc)

	// 20:00 UTC is already the next day in KST.
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC) }

	require.Equal(t, OutcomeSaved, svc.Ingest(candidate("vid00000001"), "poll"))
	history := svc.History()
	assert.Contains(t, history, "2024-05-11")
	assert.NotContains(t, history, "2024-05-10")
}

func TestIsShortsCandidate(t *testing.T) {
	t.Parallel()

	assert.False(t, IsShortsCandidate(candidate("vid00000001")))

	short := candidate("shortVid001")
	short.URL = "https://www.youtube.com/shorts/shortVid001"
	assert.True(t, IsShortsCandidate(short))
}
