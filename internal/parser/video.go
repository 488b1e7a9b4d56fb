package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
)

// Marker keys identifying the three mutually-exclusive video node shapes,
// in extraction priority order.
const (
	markerLockup        = "lockupViewModel"
	markerVideoRenderer = "videoRenderer"
	markerShortsLockup  = "shortsLockupViewModel"

	lockupContentTypeVideo = "LOCKUP_CONTENT_TYPE_VIDEO"
	liveBadgeStyle         = "THUMBNAIL_OVERLAY_BADGE_STYLE_LIVE"
)

var (
	badgeDurationRe = regexp.MustCompile(`^\d{1,2}:\d{2}`)
	durationTextRe  = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
)

// ThumbnailResolver resolves the best available thumbnail URL for a video
// id. Implementations may probe the network; any failure must fall back to
// a guaranteed-available URL rather than returning an error.
type ThumbnailResolver interface {
	BestThumbnail(videoID string) string
}

// fallbackThumbnails always returns the low-resolution thumbnail that every
// video id has.
type fallbackThumbnails struct{}

func (fallbackThumbnails) BestThumbnail(videoID string) string {
	if videoID == "" || videoID == models.UnknownField {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", videoID)
}

// Extractor produces normalized video records from single untyped nodes.
// It is deterministic given the resolver's outcome; all structural lookup
// failures degrade to per-field "N/A" defaults.
type Extractor struct {
	thumbs ThumbnailResolver
}

// NewExtractor creates an Extractor. A nil resolver falls back to the
// low-resolution thumbnail URL without probing.
func NewExtractor(thumbs ThumbnailResolver) *Extractor {
	if thumbs == nil {
		thumbs = fallbackThumbnails{}
	}
	return &Extractor{thumbs: thumbs}
}

// Lockup parses a lockupViewModel node (modern card shape). The content id
// is required; everything else degrades to "N/A".
func (e *Extractor) Lockup(lockup map[string]any) (*models.VideoRecord, bool) {
	videoID, _ := lockup["contentId"].(string)
	if videoID == "" {
		return nil, false
	}

	metadata := childMap(lockup, "metadata", "lockupMetadataViewModel")
	title := strings.TrimSpace(childString(metadata, "title", "content"))
	if title == "" {
		title = models.UnknownField
	}

	channel := models.UnknownField
	rows := childList(metadata, "metadata", "contentMetadataViewModel", "metadataRows")
	if first := itemMap(rows, 0); first != nil {
		parts := childList(first, "metadataParts")
		if part := itemMap(parts, 0); part != nil {
			if text := strings.TrimSpace(childString(part, "text", "content")); text != "" {
				channel = text
			}
		}
	}

	duration := e.lockupDuration(lockup, rows)

	return &models.VideoRecord{
		VideoID:   videoID,
		Title:     title,
		Channel:   channel,
		Duration:  duration,
		Thumbnail: e.thumbs.BestThumbnail(videoID),
		URL:       "https://www.youtube.com/watch?v=" + videoID,
	}, true
}

// lockupDuration scans the overlay badge representations in precedence
// order: live badge beats a timecode-shaped badge text beats a bottom
// overlay badge. Only when no overlay matches is a duration-shaped string
// searched among the metadata rows.
func (e *Extractor) lockupDuration(lockup map[string]any, rows []any) string {
	overlays := childList(lockup, "contentImage", "thumbnailViewModel", "overlays")
	for _, o := range overlays {
		overlay, ok := o.(map[string]any)
		if !ok {
			continue
		}
		switch {
		case overlay["thumbnailOverlayBadgeViewModel"] != nil:
			badges := childList(overlay, "thumbnailOverlayBadgeViewModel", "thumbnailBadges")
			for _, b := range badges {
				bm, ok := b.(map[string]any)
				if !ok {
					continue
				}
				badge := childMap(bm, "thumbnailBadgeViewModel")
				if badge == nil {
					continue
				}
				text, _ := badge["text"].(string)
				style, _ := badge["badgeStyle"].(string)
				if style == liveBadgeStyle || text == "라이브" || text == models.LiveDuration {
					return models.LiveDuration
				}
				if badgeDurationRe.MatchString(text) {
					return text
				}
			}
		case overlay["thumbnailOverlayTimeStatusRenderer"] != nil:
			status := childMap(overlay, "thumbnailOverlayTimeStatusRenderer")
			if text := childString(status, "text", "simpleText"); text != "" {
				return text
			}
			if label := childString(status, "text", "accessibility", "accessibilityData", "label"); label != "" {
				return label
			}
		case overlay["thumbnailBottomOverlayViewModel"] != nil:
			badges := childList(overlay, "thumbnailBottomOverlayViewModel", "badges")
			for _, b := range badges {
				bm, ok := b.(map[string]any)
				if !ok {
					continue
				}
				if text := childString(bm, "thumbnailBadgeViewModel", "text"); text != "" {
					return text
				}
			}
		}
	}

	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		for _, p := range childList(row, "metadataParts") {
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if text := childString(pm, "text", "content"); durationTextRe.MatchString(text) {
				return text
			}
		}
	}
	return models.UnknownField
}

// VideoRenderer parses a videoRenderer node (legacy render shape).
func (e *Extractor) VideoRenderer(vr map[string]any) (*models.VideoRecord, bool) {
	videoID, _ := vr["videoId"].(string)
	if videoID == "" {
		videoID = models.UnknownField
	}

	title := models.UnknownField
	if td := childMap(vr, "title"); td != nil {
		if runs := childList(td, "runs"); len(runs) > 0 {
			if run := itemMap(runs, 0); run != nil {
				if text, ok := run["text"].(string); ok {
					title = text
				}
			}
		} else if simple, ok := td["simpleText"].(string); ok {
			title = simple
		}
		title = strings.TrimSpace(title)
	}

	channel := models.UnknownField
	for _, key := range []string{"longBylineText", "shortBylineText", "ownerText"} {
		byline := childMap(vr, key)
		if byline == nil {
			continue
		}
		if runs := childList(byline, "runs"); len(runs) > 0 {
			if run := itemMap(runs, 0); run != nil {
				if text, ok := run["text"].(string); ok {
					channel = text
				}
			}
			break
		}
		if simple, ok := byline["simpleText"].(string); ok {
			channel = simple
			break
		}
	}

	duration := childString(vr, "lengthText", "simpleText")
	if duration == "" {
		duration = models.UnknownField
	}

	return &models.VideoRecord{
		VideoID:   videoID,
		Title:     title,
		Channel:   channel,
		Duration:  duration,
		Thumbnail: e.thumbs.BestThumbnail(videoID),
		URL:       "https://www.youtube.com/watch?v=" + videoID,
	}, true
}

// Shorts parses a shortsLockupViewModel node. The video id is recovered
// from the entity id suffix or, when that segment is the "item" placeholder,
// from the embedded navigation command. A record with no resolvable id is
// rejected.
func (e *Extractor) Shorts(shorts map[string]any) (*models.VideoRecord, bool) {
	videoID := ""
	if entityID, _ := shorts["entityId"].(string); entityID != "" {
		segs := strings.Split(entityID, "-")
		videoID = segs[len(segs)-1]
	}
	if videoID == "" || videoID == "item" {
		videoID = childString(shorts, "onTap", "innertubeCommand", "reelWatchEndpoint", "videoId")
	}
	if videoID == "" {
		return nil, false
	}

	title := childString(shorts, "overlayMetadata", "primaryText", "content")
	if title == "" {
		title = models.ShortsChannel
	}

	return &models.VideoRecord{
		VideoID:   videoID,
		Title:     title,
		Channel:   models.ShortsChannel,
		Duration:  models.ShortsDuration,
		Thumbnail: e.thumbs.BestThumbnail(videoID),
		URL:       "https://www.youtube.com/shorts/" + videoID,
	}, true
}

// videoLockup extracts a lockup only when the node represents a video, not
// a playlist or other lockup content type.
func (e *Extractor) videoLockup(node map[string]any) (*models.VideoRecord, bool) {
	lockup := childMap(node, markerLockup)
	if lockup == nil {
		return nil, false
	}
	if ct, _ := lockup["contentType"].(string); ct != lockupContentTypeVideo {
		return nil, false
	}
	return e.Lockup(lockup)
}
