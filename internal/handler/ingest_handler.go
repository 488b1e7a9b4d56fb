package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/service"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// IngestHandler is the push-style entry into the ingestion pipeline,
// bypassing the full-page fetch. Only the video id is required; other
// fields default server-side.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler creates a new IngestHandler instance.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// HandleIngest accepts one candidate record. Invalid input is rejected
// synchronously with a client error and never retried by the system.
func (h *IngestHandler) HandleIngest(c *gin.Context) {
	resp, err := h.process(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IngestHandler) process(c *gin.Context) (*models.IngestResponseDTO, error) {
	var req models.IngestRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, &service.ValidationError{Message: "Invalid JSON body"}
	}

	videoID := req.ID()
	if videoID == "" || videoID == models.UnknownField {
		return nil, &service.ValidationError{Message: "video_id required"}
	}

	eventID := uuid.New()
	rec := buildCandidate(videoID, &req)

	logger.Log.Info("push ingest received",
		zap.String("eventId", eventID.String()),
		zap.String("videoId", videoID),
	)

	switch h.ingest.Ingest(rec, "push") {
	case service.OutcomeSaved:
		return &models.IngestResponseDTO{
			Status:  "ok",
			VideoID: videoID,
			EventID: eventID.String(),
		}, nil
	case service.OutcomeShorts:
		return &models.IngestResponseDTO{Status: "skipped", Reason: "shorts"}, nil
	default:
		return &models.IngestResponseDTO{Status: "skipped", Reason: "duplicate"}, nil
	}
}

// handleError maps service error types to HTTP responses.
func (h *IngestHandler) handleError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *service.ValidationError:
		logger.Log.Warn("ingest validation failed",
			zap.String("error", e.Message),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   e.Message,
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case *service.ProcessingError:
		logger.Log.Error("ingest processing failed",
			zap.Error(e),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   e.Message,
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "Unexpected error",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	}
}

// buildCandidate fills caller-omitted fields with the same defaults the
// extraction path would produce.
func buildCandidate(videoID string, req *models.IngestRequestDTO) models.VideoRecord {
	rec := models.VideoRecord{
		VideoID:   videoID,
		Title:     req.Title,
		Channel:   req.Channel,
		Thumbnail: req.Thumbnail,
		URL:       req.URL,
		Duration:  req.Duration,
	}
	if rec.Title == "" {
		rec.Title = models.UnknownField
	}
	if rec.Channel == "" {
		rec.Channel = models.UnknownField
	}
	if rec.Duration == "" {
		rec.Duration = models.UnknownField
	}
	if rec.URL == "" {
		rec.URL = "https://www.youtube.com/watch?v=" + videoID
	}
	if rec.Thumbnail == "" {
		rec.Thumbnail = "https://img.youtube.com/vi/" + videoID + "/0.jpg"
	}
	return rec
}
