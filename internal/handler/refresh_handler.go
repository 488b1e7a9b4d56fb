package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/fetch"
	"github.com/yt-addons/youtube-monitoring-go/internal/service"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// RefreshHandler triggers an out-of-cycle recommendations fetch, gated by
// a cooldown so repeated clicks cannot hammer the upstream.
type RefreshHandler struct {
	fetcher *fetch.Client
	gate    *service.RefreshGate
}

// NewRefreshHandler creates a new RefreshHandler instance.
func NewRefreshHandler(fetcher *fetch.Client, gate *service.RefreshGate) *RefreshHandler {
	return &RefreshHandler{fetcher: fetcher, gate: gate}
}

// HandleRefreshRecommended consumes the cooldown gate and refreshes the
// recommendations cache. During cooldown it answers 429 with the remaining
// wait; a failed fetch keeps the previous cache and reports the cooldown
// state so the caller knows when to retry.
func (h *RefreshHandler) HandleRefreshRecommended(c *gin.Context) {
	ok, remaining := h.gate.TryAcquire()
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "cooldown",
			"retry_after": int(remaining.Seconds()),
		})
		return
	}

	videos, err := h.fetcher.FetchRecommended(c.Request.Context())
	if err != nil {
		logger.Log.Error("manual recommendations refresh failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"status":      "error",
			"recommended": h.fetcher.Recommended(),
			"retry_after": int(h.gate.RetryAfter().Seconds()),
		})
		return
	}

	logger.Log.Info("recommendations refreshed", zap.Int("count", len(videos)))
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"recommended": videos,
		"retry_after": int(h.gate.RetryAfter().Seconds()),
	})
}
