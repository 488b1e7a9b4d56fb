package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/config"
	"github.com/yt-addons/youtube-monitoring-go/internal/fetch"
	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// Poller is the single background task. Each cycle runs its fetches
// sequentially — history every cycle, subscriptions and recommendations on
// their own longer elapsed-time gates — then sleeps for the scan interval.
// No fetch is retried; the next cycle is the retry.
type Poller struct {
	fetcher *fetch.Client
	ingest  *IngestService
	subs    *store.SubscriptionStore
	cfg     config.PollerConfig

	lastSeenVideoID string
	lastSubsFetch   time.Time
	lastRecFetch    time.Time
}

// NewPoller wires the polling task.
func NewPoller(fetcher *fetch.Client, ingest *IngestService, subs *store.SubscriptionStore, cfg config.PollerConfig) *Poller {
	return &Poller{
		fetcher: fetcher,
		ingest:  ingest,
		subs:    subs,
		cfg:     cfg,
	}
}

// WarmUp runs the initial staged fetch sequence synchronously so the first
// served responses already carry data.
func (p *Poller) WarmUp(ctx context.Context) {
	logger.Log.Info("warm-up: fetching watch history")
	p.fetchHistory(ctx)

	logger.Log.Info("warm-up: fetching subscriptions")
	p.fetchSubscriptions(ctx)

	if p.cfg.FetchRecommended {
		logger.Log.Info("warm-up: fetching recommendations")
		p.fetchRecommended(ctx)
	}

	logger.Log.Info("warm-up complete",
		zap.Bool("cookiesValid", p.fetcher.CookiesValid()),
		zap.Int("historyItems", len(p.fetcher.History())),
	)
}

// Run polls until the context is canceled. The scan interval is counted
// from the end of each cycle, so a slow cycle never shortens the idle gap.
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(p.cfg.ScanInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("poller stopped")
			return
		case <-timer.C:
			p.runCycle(ctx)
			timer.Reset(p.cfg.ScanInterval)
		}
	}
}

// runCycle is one poll iteration. Its outer boundary catches anything
// unhandled so no failure can terminate the polling task.
func (p *Poller) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("poll cycle panicked", zap.Any("panic", r))
		}
	}()

	p.fetchHistory(ctx)
	p.fetchSubscriptions(ctx)
	if p.cfg.FetchRecommended {
		p.fetchRecommended(ctx)
	}

	if !p.fetcher.CookiesValid() {
		logger.Log.Warn("session cookies invalid, history and roster fetches are unavailable")
	}
}

// fetchHistory polls the watch-history surface and feeds the newest record
// into the ingestion pipeline when its id changed since the last sighting.
func (p *Poller) fetchHistory(ctx context.Context) {
	videos, err := p.fetcher.FetchHistory(ctx)
	if err != nil {
		p.observeFetch("history", err)
		return
	}
	FetchTotal.WithLabelValues("history", fetchResult(videos)).Inc()

	if len(videos) == 0 {
		return
	}
	newest := videos[0]
	if newest.VideoID == "" || newest.VideoID == models.UnknownField {
		return
	}
	if newest.VideoID != p.lastSeenVideoID {
		p.ingest.Ingest(newest, "poll")
		p.lastSeenVideoID = newest.VideoID
	}
}

// fetchSubscriptions polls the roster surface and runs the snapshot differ,
// gated by its own interval to avoid upstream rate limiting.
func (p *Poller) fetchSubscriptions(ctx context.Context) {
	if time.Since(p.lastSubsFetch) < p.cfg.SubscriptionsInterval {
		return
	}

	subs, err := p.fetcher.FetchSubscriptions(ctx)
	if err != nil {
		p.observeFetch("subscriptions", err)
		return
	}
	p.lastSubsFetch = time.Now()
	FetchTotal.WithLabelValues("subscriptions", "ok").Inc()
	RosterSize.Set(float64(subs.TotalCount))

	if len(subs.Channels) == 0 {
		return
	}
	names := make([]string, 0, len(subs.Channels))
	for _, ch := range subs.Channels {
		names = append(names, ch.ChannelName)
	}
	if _, err := p.subs.ApplyRoster(names, time.Now()); err != nil {
		logger.Log.Error("failed to apply subscription roster", zap.Error(err))
	}
}

func (p *Poller) fetchRecommended(ctx context.Context) {
	if time.Since(p.lastRecFetch) < p.cfg.RecommendedInterval {
		return
	}

	videos, err := p.fetcher.FetchRecommended(ctx)
	if err != nil {
		p.observeFetch("recommended", err)
		return
	}
	p.lastRecFetch = time.Now()
	FetchTotal.WithLabelValues("recommended", fetchResult(videos)).Inc()
}

func (p *Poller) observeFetch(surface string, err error) {
	if errors.Is(err, fetch.ErrRateLimited) {
		FetchTotal.WithLabelValues(surface, "rate_limited").Inc()
		logger.Log.Warn("upstream rate limit, keeping previous data",
			zap.String("surface", surface),
		)
		return
	}
	FetchTotal.WithLabelValues(surface, "error").Inc()
	logger.Log.Error("fetch failed, keeping previous data",
		zap.String("surface", surface),
		zap.Error(err),
	)
}

func fetchResult(records []models.VideoRecord) string {
	if len(records) == 0 {
		return "empty"
	}
	return "ok"
}
