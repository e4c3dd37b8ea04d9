// Package types holds the canonical catalog data model shared by the
// source adapters and the aggregation layer.
package types

import "encoding/json"

// ListKind selects one of the fixed browse lists.
type ListKind string

const (
	ListLatest ListKind = "latest"
	ListSeries ListKind = "series"
	ListSingle ListKind = "single"
)

// PlaceholderPoster is served whenever a source record carries no image.
const PlaceholderPoster = "https://placehold.co/600x900/0f172a/94a3b8?text=No+Image"

// UntitledName substitutes for records that arrive without any title.
const UntitledName = "Chưa có tên"

// Movie is the canonical representation of a title regardless of source.
//
// Slug is the dedup/merge key across sources and is never empty: adapters
// fall back to a source id, then to the literal "unknown". PosterURL and
// ThumbURL are always absolute or the placeholder, never source-relative.
type Movie struct {
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	OriginName     string          `json:"origin_name,omitempty"`
	PosterURL      string          `json:"poster_url"`
	ThumbURL       string          `json:"thumb_url"`
	Year           string          `json:"year,omitempty"`
	EpisodeCurrent string          `json:"episode_current,omitempty"`
	EpisodeTotal   string          `json:"episode_total,omitempty"`
	Quality        string          `json:"quality,omitempty"`
	Lang           string          `json:"lang,omitempty"`
	Time           string          `json:"time,omitempty"`
	Status         string          `json:"status,omitempty"`
	Type           string          `json:"type,omitempty"`
	Category       []string        `json:"category,omitempty"`
	Country        []string        `json:"country,omitempty"`
	Content        string          `json:"content,omitempty"`
	Rating         float64         `json:"rating,omitempty"`
	Source         string          `json:"source,omitempty"`
	Origin         json.RawMessage `json:"origin,omitempty"`
}

// Episode is one playable unit within a title. An episode is playable when
// at least one of LinkM3U8/Embed is non-empty.
type Episode struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LinkM3U8   string `json:"link_m3u8,omitempty"`
	Embed      string `json:"embed,omitempty"`
	ServerName string `json:"server_name,omitempty"`
}

// Playable reports whether the episode carries any usable link.
func (e Episode) Playable() bool {
	return e.LinkM3U8 != "" || e.Embed != ""
}

// Detail pairs a title's canonical metadata with its episode list.
// A nil Movie means no source had data for the slug; it is not an error.
type Detail struct {
	Movie    *Movie    `json:"movie"`
	Episodes []Episode `json:"episodes"`
}
