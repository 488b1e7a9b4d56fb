// Package handler provides HTTP request handlers for the application.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yt-addons/youtube-monitoring-go/internal/fetch"
	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/service"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
)

// HistoryHandler serves the merged monitoring view: the persisted ledger,
// the live fetch caches, and the subscription data.
type HistoryHandler struct {
	ingest           *service.IngestService
	fetcher          *fetch.Client
	subs             *store.SubscriptionStore
	gate             *service.RefreshGate
	fetchRecommended bool
}

// NewHistoryHandler creates a new HistoryHandler instance.
func NewHistoryHandler(
	ingest *service.IngestService,
	fetcher *fetch.Client,
	subs *store.SubscriptionStore,
	gate *service.RefreshGate,
	fetchRecommended bool,
) *HistoryHandler {
	return &HistoryHandler{
		ingest:           ingest,
		fetcher:          fetcher,
		subs:             subs,
		gate:             gate,
		fetchRecommended: fetchRecommended,
	}
}

// HandleHistory merges accumulated ledger data with the live caches.
// Shorts are filtered from both views; they are tracked only in the
// monthly breakdown of what was already persisted.
func (h *HistoryHandler) HandleHistory(c *gin.Context) {
	history := store.FilterShorts(h.ingest.History())

	live := make([]models.VideoRecord, 0)
	for _, v := range h.fetcher.History() {
		if !service.IsShortsCandidate(v) {
			live = append(live, v)
		}
	}

	retryAfter := h.gate.RetryAfter()

	c.JSON(http.StatusOK, gin.H{
		"cookies_valid":                    h.fetcher.CookiesValid(),
		"by_date":                          history,
		"monthly_stats":                    store.MonthlyStats(history),
		"monthly_breakdown":                store.MonthlyBreakdownStats(history),
		"live":                             live,
		"subscriptions":                    h.fetcher.Subscriptions(),
		"monthly_subscription_changes":     h.subs.MonthlyChanges(),
		"recommended":                      h.fetcher.Recommended(),
		"fetch_recommended":                h.fetchRecommended,
		"recommended_refresh_available_at": time.Now().Add(retryAfter).Unix(),
		"recommended_refresh_retry_after":  int(retryAfter.Seconds()),
	})
}

// HandleStats returns the monthly aggregations, shorts excluded from the
// legacy count and split out in the breakdown.
func (h *HistoryHandler) HandleStats(c *gin.Context) {
	history := store.FilterShorts(h.ingest.History())
	c.JSON(http.StatusOK, gin.H{
		"monthly_stats":     store.MonthlyStats(history),
		"monthly_breakdown": store.MonthlyBreakdownStats(history),
	})
}
