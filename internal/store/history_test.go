package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
)

func rec(videoID string) models.VideoRecord {
	return models.VideoRecord{
		VideoID:  videoID,
		Title:    "Title " + videoID,
		Channel:  "Channel",
		Duration: "10:00",
		URL:      "https://www.youtube.com/watch?v=" + videoID,
	}
}

func shortRec(videoID string) models.VideoRecord {
	return models.VideoRecord{
		VideoID:  videoID,
		Title:    "Short " + videoID,
		Channel:  models.ShortsChannel,
		Duration: models.ShortsDuration,
		URL:      "https://www.youtube.com/shorts/" + videoID,
	}
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewHistoryStore(filepath.Join(t.TempDir(), "nested", "history.json"))

	history := store.Load()
	assert.Empty(t, history)

	at := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	AddEntry(history, rec("vid00000001"), at)
	require.NoError(t, store.Save(history))

	loaded := store.Load()
	require.Len(t, loaded["2024-05-10"], 1)
	assert.Equal(t, "vid00000001", loaded["2024-05-10"][0].VideoID)
	assert.Equal(t, at.Format(time.RFC3339), loaded["2024-05-10"][0].Timestamp)
}

func TestHistoryStoreLoadIgnoresInvalidDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not","a","mapping"]`), 0o644))

	assert.Empty(t, NewHistoryStore(path).Load())
}

func TestAddEntryInsertsAtFront(t *testing.T) {
	t.Parallel()

	history := History{}
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	AddEntry(history, rec("firstVid001"), at)
	AddEntry(history, rec("secondVid01"), at.Add(time.Hour))

	entries := history["2024-05-10"]
	require.Len(t, entries, 2)
	assert.Equal(t, "secondVid01", entries[0].VideoID)
	assert.Equal(t, "firstVid001", entries[1].VideoID)
}

func TestHasVideoIDIsGlobal(t *testing.T) {
	t.Parallel()

	history := History{}
	AddEntry(history, rec("vid00000001"), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	AddEntry(history, rec("vid00000002"), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, HasVideoID(history, "vid00000001"))
	assert.True(t, HasVideoID(history, "vid00000002"))
	assert.False(t, HasVideoID(history, "vid00000003"))
}

func TestFilterShorts(t *testing.T) {
	t.Parallel()

	history := History{
		"2024-05-10": {rec("vid00000001"), shortRec("shortVid001")},
		"2024-05-11": {shortRec("shortVid002")},
	}

	filtered := FilterShorts(history)
	require.Len(t, filtered["2024-05-10"], 1)
	assert.Equal(t, "vid00000001", filtered["2024-05-10"][0].VideoID)
	assert.NotContains(t, filtered, "2024-05-11")

	// Input untouched.
	assert.Len(t, history["2024-05-10"], 2)
}

func TestMonthlyStats(t *testing.T) {
	t.Parallel()

	history := History{
		"2024-04-30": {rec("a1234567890"), rec("b1234567890")},
		"2024-05-01": {rec("c1234567890")},
		"2024-05-02": {rec("d1234567890")},
		"bogus":      {rec("e1234567890")},
	}

	stats := MonthlyStats(history)
	require.Len(t, stats, 2)
	assert.Equal(t, MonthlyCount{Month: "2024-05", Count: 2}, stats[0])
	assert.Equal(t, MonthlyCount{Month: "2024-04", Count: 2}, stats[1])
}

func TestMonthlyBreakdownStats(t *testing.T) {
	t.Parallel()

	history := History{
		"2024-05-01": {rec("a1234567890"), shortRec("s1234567890"), shortRec("t1234567890")},
		"2024-05-02": {rec("b1234567890"), rec("c1234567890")},
		"2024-06-01": {rec("d1234567890")},
	}

	stats := MonthlyBreakdownStats(history)
	require.Len(t, stats, 2)
	assert.Equal(t, MonthlyBreakdown{Month: "2024-06", Videos: 1, Shorts: 0}, stats[0])
	assert.Equal(t, MonthlyBreakdown{Month: "2024-05", Videos: 3, Shorts: 2}, stats[1])
}
