package parser

import (
	"net/url"
	"sort"
	"strings"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
)

// Caps on collected results per surface.
const (
	MaxHistoryItems     = 20
	MaxRecommendedItems = 3
)

// CollectHistory walks the watch-history page layout and returns candidate
// records in the fixed product priority: modern cards, then legacy renders,
// then shorts. The order is total and stable; ties within a buffer preserve
// page order. Output is capped at MaxHistoryItems.
func (e *Extractor) CollectHistory(data map[string]any) []models.VideoRecord {
	var lockups, renderers, shorts []models.VideoRecord

	for _, contents := range sectionItemLists(data) {
		// A message renderer marks an empty or paused history; the whole
		// list is discarded, never partially salvaged.
		if hasMessageRenderer(contents) {
			continue
		}
		for _, item := range contents {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch {
			case node[markerLockup] != nil:
				if v, ok := e.videoLockup(node); ok {
					lockups = append(lockups, *v)
				}
			case node[markerVideoRenderer] != nil:
				if v, ok := e.VideoRenderer(childMap(node, markerVideoRenderer)); ok {
					renderers = append(renderers, *v)
				}
			case node["richItemRenderer"] != nil:
				if vr := childMap(node, "richItemRenderer", "content", markerVideoRenderer); vr != nil {
					if v, ok := e.VideoRenderer(vr); ok {
						renderers = append(renderers, *v)
					}
				}
			case node["reelShelfRenderer"] != nil:
				for _, ri := range childList(node, "reelShelfRenderer", "items") {
					rim, ok := ri.(map[string]any)
					if !ok {
						continue
					}
					if sl := childMap(rim, markerShortsLockup); sl != nil {
						if v, ok := e.Shorts(sl); ok {
							shorts = append(shorts, *v)
						}
						break
					}
				}
			}
		}
	}

	out := make([]models.VideoRecord, 0, len(lockups)+len(renderers)+len(shorts))
	out = append(out, lockups...)
	out = append(out, renderers...)
	out = append(out, shorts...)
	if len(out) > MaxHistoryItems {
		out = out[:MaxHistoryItems]
	}
	return out
}

// CollectRecommended extracts up to MaxRecommendedItems videos from the home
// page, trying three strategies in order: the rich grid container, the
// section list container, and finally the recursive fallback locator over
// the whole document.
func (e *Extractor) CollectRecommended(data map[string]any) []models.VideoRecord {
	var videos []models.VideoRecord

	for _, tab := range childList(data, "contents", "twoColumnBrowseResultsRenderer", "tabs") {
		tm, ok := tab.(map[string]any)
		if !ok {
			continue
		}
		items := childList(tm, "tabRenderer", "content", "richGridRenderer", "contents")
		for _, item := range items {
			im, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if v := e.gridItem(im); v != nil {
				videos = append(videos, *v)
				if len(videos) >= MaxRecommendedItems {
					return videos
				}
			}
		}
		if len(videos) > 0 {
			break
		}
	}

	if len(videos) < MaxRecommendedItems {
		for _, section := range childList(data, "contents", "sectionListRenderer", "contents") {
			sm, ok := section.(map[string]any)
			if !ok {
				continue
			}
			for _, item := range childList(sm, "itemSectionRenderer", "contents") {
				im, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if v := e.gridItem(im); v != nil {
					videos = append(videos, *v)
					if len(videos) >= MaxRecommendedItems {
						return videos
					}
				}
			}
		}
	}

	if len(videos) < MaxRecommendedItems {
		if found := e.FindVideos(data, MaxRecommendedItems); len(found) > 0 {
			return found
		}
	}
	return videos
}

// gridItem extracts a video from a grid item, unwrapping the rich item
// container when present.
func (e *Extractor) gridItem(item map[string]any) *models.VideoRecord {
	content := childMap(item, "richItemRenderer", "content")
	if content == nil {
		content = item
	}
	if v, ok := e.videoLockup(content); ok {
		return v
	}
	if vr := childMap(content, markerVideoRenderer); vr != nil {
		if v, ok := e.VideoRenderer(vr); ok {
			return v
		}
	}
	return nil
}

// CollectChannels extracts the subscription roster from the channels page
// and returns it sorted by the Hangul/Latin/other bucket order.
func (e *Extractor) CollectChannels(data map[string]any) []models.ChannelRecord {
	items := expandedShelfItems(data)
	channels := make([]models.ChannelRecord, 0, len(items))
	for _, item := range items {
		im, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cr := childMap(im, "channelRenderer")
		if cr == nil {
			continue
		}
		if ch, ok := extractChannel(cr); ok {
			channels = append(channels, ch)
		}
	}
	SortChannels(channels)
	return channels
}

// extractChannel normalizes one channelRenderer node. A channel without a
// non-empty trimmed title is skipped.
func extractChannel(cr map[string]any) (models.ChannelRecord, bool) {
	title := strings.TrimSpace(childString(cr, "title", "simpleText"))
	if title == "" {
		return models.ChannelRecord{}, false
	}

	subscriberText := childString(cr, "videoCountText", "simpleText")
	handle := childString(cr, "subscriberCountText", "simpleText")

	thumbnail := ""
	if thumbs := childList(cr, "thumbnail", "thumbnails"); len(thumbs) > 0 {
		// Candidates are ordered low to high resolution; take the last.
		if best := itemMap(thumbs, len(thumbs)-1); best != nil {
			thumbnail, _ = best["url"].(string)
			if thumbnail != "" && !strings.HasPrefix(thumbnail, "http") {
				thumbnail = "https:" + thumbnail
			}
		}
	}

	channelURL := ""
	if base := childString(cr, "navigationEndpoint", "browseEndpoint", "canonicalBaseUrl"); base != "" {
		decoded, err := url.PathUnescape(base)
		if err != nil {
			decoded = base
		}
		channelURL = "https://www.youtube.com" + decoded
	}

	description := ""
	if runs := childList(cr, "descriptionSnippet", "runs"); len(runs) > 0 {
		if run := itemMap(runs, 0); run != nil {
			description, _ = run["text"].(string)
		}
	}

	channelID, _ := cr["channelId"].(string)

	return models.ChannelRecord{
		ChannelName:         title,
		ChannelID:           channelID,
		SubscriberCountText: subscriberText,
		SubscriberCount:     ParseSubscriberCount(subscriberText),
		Handle:              handle,
		Thumbnail:           thumbnail,
		ChannelURL:          channelURL,
		DescriptionSnippet:  description,
	}, true
}

// SortChannels orders the roster into three buckets keyed by the first rune:
// Hangul, then Latin (case-insensitive), then everything else. Within a
// bucket names compare lexicographically.
func SortChannels(channels []models.ChannelRecord) {
	sort.SliceStable(channels, func(i, j int) bool {
		bi, ki := channelSortKey(channels[i].ChannelName)
		bj, kj := channelSortKey(channels[j].ChannelName)
		if bi != bj {
			return bi < bj
		}
		return ki < kj
	})
}

func channelSortKey(name string) (int, string) {
	if name == "" {
		return 2, name
	}
	r := []rune(name)[0]
	switch {
	case (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x3130 && r <= 0x318F) || (r >= 0x1100 && r <= 0x11FF):
		return 0, name
	case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		return 1, strings.ToLower(name)
	default:
		return 2, name
	}
}

// sectionItemLists collects every tab -> section -> item list on a browse
// page.
func sectionItemLists(data map[string]any) [][]any {
	var lists [][]any
	for _, tab := range childList(data, "contents", "twoColumnBrowseResultsRenderer", "tabs") {
		tm, ok := tab.(map[string]any)
		if !ok {
			continue
		}
		tr := childMap(tm, "tabRenderer")
		if tr == nil {
			continue
		}
		for _, section := range childList(tr, "content", "sectionListRenderer", "contents") {
			sm, ok := section.(map[string]any)
			if !ok {
				continue
			}
			if contents := childList(sm, "itemSectionRenderer", "contents"); len(contents) > 0 {
				lists = append(lists, contents)
			}
		}
	}
	return lists
}

// expandedShelfItems locates the single expanded channel shelf on the
// subscriptions page.
func expandedShelfItems(data map[string]any) []any {
	for _, contents := range sectionItemLists(data) {
		for _, item := range contents {
			im, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if items := childList(im, "shelfRenderer", "content", "expandedShelfContentsRenderer", "items"); len(items) > 0 {
				return items
			}
		}
	}
	return nil
}

func hasMessageRenderer(contents []any) bool {
	for _, item := range contents {
		if im, ok := item.(map[string]any); ok {
			if _, found := im["messageRenderer"]; found {
				return true
			}
		}
	}
	return false
}
