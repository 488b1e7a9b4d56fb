// Package models contains the data models and DTOs for the YouTube monitoring service.
package models

import "time"

// Sentinel values shared across the extraction and ingestion layers.
// Duration is free text: a timecode, "LIVE", or "Shorts". Callers must not
// parse it as a time value.
const (
	UnknownField   = "N/A"
	LiveDuration   = "LIVE"
	ShortsDuration = "Shorts"
	ShortsChannel  = "YouTube Shorts"
)

// VideoRecord is a normalized watch-history entry. VideoID is the identity
// key; the "N/A" sentinel must never be persisted.
type VideoRecord struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChannelRecord is one subscribed channel as extracted from the roster page.
// Diffing identity is the name, not the id: the id is not reliably present
// on every node.
type ChannelRecord struct {
	ChannelName         string `json:"channel_name"`
	ChannelID           string `json:"channel_id"`
	SubscriberCountText string `json:"subscriber_count_text"`
	SubscriberCount     int64  `json:"subscriber_count"`
	Handle              string `json:"handle"`
	Thumbnail           string `json:"thumbnail"`
	ChannelURL          string `json:"channel_url"`
	DescriptionSnippet  string `json:"description_snippet"`
}

// SubscriptionsData is the full roster reconstructed on every fetch.
type SubscriptionsData struct {
	TotalCount int             `json:"total_count"`
	Channels   []ChannelRecord `json:"channels"`
}

// IngestRequestDTO is the push-ingest request body. Only the video id is
// required; every other field has a server-side default. Both snake_case and
// camelCase id spellings are accepted.
type IngestRequestDTO struct {
	VideoID    string `json:"video_id"`
	VideoIDAlt string `json:"videoId"`
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	Thumbnail  string `json:"thumbnail"`
	URL        string `json:"url"`
	Duration   string `json:"duration"`
}

// ID returns the video id regardless of which spelling the caller used.
func (r *IngestRequestDTO) ID() string {
	if r.VideoID != "" {
		return r.VideoID
	}
	return r.VideoIDAlt
}

// IngestResponseDTO is the push-ingest response.
type IngestResponseDTO struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	VideoID string `json:"video_id,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
