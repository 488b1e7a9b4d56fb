package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/service"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
)

func newIngestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	historyStore := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	ingest := service.NewIngestService(historyStore, 5*time.Minute, time.UTC)

	router := gin.New()
	router.POST("/api/ingest", NewIngestHandler(ingest).HandleIngest)
	return router
}

func postIngest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleIngest(t *testing.T) {
	router := newIngestRouter(t)

	w := postIngest(router, `{"video_id":"vid00000001","title":"A Video"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IngestResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "vid00000001", resp.VideoID)
	assert.NotEmpty(t, resp.EventID)
}

func TestHandleIngestAcceptsCamelCaseID(t *testing.T) {
	router := newIngestRouter(t)

	w := postIngest(router, `{"videoId":"vid00000002"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IngestResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "vid00000002", resp.VideoID)
}

func TestHandleIngestDuplicate(t *testing.T) {
	router := newIngestRouter(t)

	require.Equal(t, http.StatusOK, postIngest(router, `{"video_id":"vid00000001"}`).Code)

	w := postIngest(router, `{"video_id":"vid00000001"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IngestResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "skipped", resp.Status)
	assert.Equal(t, "duplicate", resp.Reason)
}

func TestHandleIngestSkipsShorts(t *testing.T) {
	router := newIngestRouter(t)

	w := postIngest(router, `{"video_id":"shortVid001","url":"https://www.youtube.com/shorts/shortVid001"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.IngestResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "skipped", resp.Status)
	assert.Equal(t, "shorts", resp.Reason)
}

func TestHandleIngestBadRequest(t *testing.T) {
	router := newIngestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{not json`},
		{name: "missing video id", body: `{"title":"No ID"}`},
		{name: "empty video id", body: `{"video_id":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postIngest(router, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.Equal(t, "/api/ingest", resp.Path)
		})
	}
}

func TestHandleIngestFillsDefaults(t *testing.T) {
	historyStore := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	ingest := service.NewIngestService(historyStore, 5*time.Minute, time.UTC)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/ingest", NewIngestHandler(ingest).HandleIngest)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader(`{"video_id":"vid00000001"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	history := ingest.History()
	var saved models.VideoRecord
	for _, entries := range history {
		require.Len(t, entries, 1)
		saved = entries[0]
	}
	assert.Equal(t, models.UnknownField, saved.Title)
	assert.Equal(t, models.UnknownField, saved.Channel)
	assert.Equal(t, models.UnknownField, saved.Duration)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid00000001", saved.URL)
	assert.Equal(t, "https://img.youtube.com/vi/vid00000001/0.jpg", saved.Thumbnail)
}
