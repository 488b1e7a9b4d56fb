package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yt-addons/youtube-monitoring-go/internal/fetch"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	fetcher *fetch.Client
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(fetcher *fetch.Client) *HealthHandler {
	return &HealthHandler{fetcher: fetcher}
}

// HandleHealth reports liveness plus whether the upstream session is usable.
// An invalid session is not a failure; the service keeps serving cached data.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "UP",
		"cookies_valid": h.fetcher.CookiesValid(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
