// Package fetch implements the authenticated, rate-paced session against
// the remote site and caches the last-known-good result of each surface.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yt-addons/youtube-monitoring-go/internal/config"
	"github.com/yt-addons/youtube-monitoring-go/internal/models"
	"github.com/yt-addons/youtube-monitoring-go/internal/parser"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

// ErrRateLimited marks a 429 from the upstream site. It is a soft failure:
// the caller keeps prior data and continues at the normal interval.
var ErrRateLimited = errors.New("rate limited by upstream (429)")

const (
	historyPath  = "/feed/history"
	channelsPath = "/feed/channels"
	homePath     = "/"

	thumbnailBase = "https://img.youtube.com/vi"
)

// Client fetches the watch-history, subscriptions, and home surfaces over a
// cookie-authenticated session. Cookies are reloaded from the file on every
// fetch so the file can be refreshed without a restart. A transport or
// rate-limit failure aborts only the current fetch and preserves the cached
// last-known-good data.
type Client struct {
	http        *resty.Client
	probe       *resty.Client
	cookiesPath string
	extractor   *parser.Extractor

	mu            sync.RWMutex
	cookiesValid  bool
	history       []models.VideoRecord
	subscriptions *models.SubscriptionsData
	recommended   []models.VideoRecord
}

// NewClient builds a session client from the fetcher configuration. The
// request pause is enforced between upstream page fetches to stay under
// rate limits; thumbnail probes are not paced.
func NewClient(cfg config.FetcherConfig) *Client {
	limiter := rate.NewLimiter(rate.Every(cfg.RequestPause), 1)

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(cfg.RequestTimeout)
	httpClient.SetHeaders(map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-us,en;q=0.5",
		"Sec-Fetch-Mode":  "navigate",
	})
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	probe := resty.New()
	probe.SetTimeout(cfg.ProbeTimeout)

	c := &Client{
		http:        httpClient,
		probe:       probe,
		cookiesPath: cfg.CookiesPath,
	}
	c.extractor = parser.NewExtractor(c)
	return c
}

// BestThumbnail probes the highest-resolution thumbnail for the id and
// falls back to the guaranteed-available low-resolution one on any failure.
// Implements parser.ThumbnailResolver.
func (c *Client) BestThumbnail(videoID string) string {
	if videoID == "" || videoID == models.UnknownField {
		return ""
	}
	maxres := fmt.Sprintf("%s/%s/maxresdefault.jpg", thumbnailBase, videoID)
	resp, err := c.probe.R().Get(maxres)
	if err == nil && resp.StatusCode() == http.StatusOK {
		return maxres
	}
	return fmt.Sprintf("%s/%s/0.jpg", thumbnailBase, videoID)
}

// fetchPage loads the session cookies, fetches one surface, and extracts
// the embedded document. A nil document with nil error means the page was
// served but carried no parsable data (zero records this cycle).
func (c *Client) fetchPage(ctx context.Context, path string) (map[string]any, error) {
	cookies, err := LoadNetscapeCookies(c.cookiesPath)
	if err != nil {
		c.setCookiesValid(false)
		return nil, fmt.Errorf("load session cookies: %w", err)
	}
	c.http.SetCookies(cookies)

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode())
	}

	data, err := parser.ExtractInitialData(resp.String())
	if err != nil {
		// Schema drift or an unparsable document is not fatal.
		logger.Log.Warn("no embedded data in page", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	return data, nil
}

// FetchHistory fetches the watch-history surface and refreshes the cache.
// On rate limit or transport failure the cache is left untouched. An expired
// session still answers 200 with a consent/login page, so the session only
// counts as valid once history records were actually extracted.
func (c *Client) FetchHistory(ctx context.Context) ([]models.VideoRecord, error) {
	data, err := c.fetchPage(ctx, historyPath)
	if err != nil {
		return nil, err
	}

	var videos []models.VideoRecord
	if data != nil {
		videos = c.extractor.CollectHistory(data)
	}

	c.mu.Lock()
	c.history = videos
	if len(videos) > 0 {
		c.cookiesValid = true
	}
	c.mu.Unlock()
	return videos, nil
}

// FetchSubscriptions fetches the roster surface, reconstructing the full
// sorted roster from scratch.
func (c *Client) FetchSubscriptions(ctx context.Context) (*models.SubscriptionsData, error) {
	data, err := c.fetchPage(ctx, channelsPath)
	if err != nil {
		return nil, err
	}

	var channels []models.ChannelRecord
	if data != nil {
		channels = c.extractor.CollectChannels(data)
	}
	subs := &models.SubscriptionsData{TotalCount: len(channels), Channels: channels}

	c.mu.Lock()
	c.subscriptions = subs
	if len(channels) > 0 {
		c.cookiesValid = true
	}
	c.mu.Unlock()
	return subs, nil
}

// FetchRecommended fetches up to three recommendations from the home page.
func (c *Client) FetchRecommended(ctx context.Context) ([]models.VideoRecord, error) {
	data, err := c.fetchPage(ctx, homePath)
	if err != nil {
		return nil, err
	}

	var videos []models.VideoRecord
	if data != nil {
		videos = c.extractor.CollectRecommended(data)
	}

	c.mu.Lock()
	c.recommended = videos
	if len(videos) > 0 {
		c.cookiesValid = true
	}
	c.mu.Unlock()
	return videos, nil
}

// History returns the cached last-known-good history records.
func (c *Client) History() []models.VideoRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history
}

// Subscriptions returns the cached roster, or nil before the first
// successful fetch.
func (c *Client) Subscriptions() *models.SubscriptionsData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions
}

// Recommended returns the cached recommendations.
func (c *Client) Recommended() []models.VideoRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recommended
}

// CookiesValid reports whether the session last authenticated successfully.
func (c *Client) CookiesValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookiesValid
}

func (c *Client) setCookiesValid(v bool) {
	c.mu.Lock()
	c.cookiesValid = v
	c.mu.Unlock()
}
