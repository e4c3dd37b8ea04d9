package kkphim

import (
	"encoding/json"
	"strings"
)

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// labelList decodes labels that arrive as plain strings or {"name": ...}
// objects.
type labelList []string

func (l *labelList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Name != "" {
			out = append(out, obj.Name)
		}
	}
	*l = out
	return nil
}

type rawMovie struct {
	Slug           string     `json:"slug"`
	MongoID        string     `json:"_id"`
	ID             flexString `json:"id"`
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	OriginName     string     `json:"origin_name"`
	PosterURL      string     `json:"poster_url"`
	ThumbURL       string     `json:"thumb_url"`
	Year           flexString `json:"year"`
	EpisodeCurrent string     `json:"episode_current"`
	EpisodeTotal   flexString `json:"episode_total"`
	Quality        string     `json:"quality"`
	Lang           string     `json:"lang"`
	Time           string     `json:"time"`
	Status         string     `json:"status"`
	Type           string     `json:"type"`
	Category       labelList  `json:"category"`
	Country        labelList  `json:"country"`
	Content        string     `json:"content"`
	TrailerURL     string     `json:"trailer_url"`
}

type rawEpisode struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	Slug      string `json:"slug"`
	LinkM3U8  string `json:"link_m3u8"`
	LinkEmbed string `json:"link_embed"`
	Link      string `json:"link"`
}

// serverGroup is one server's episode block within a detail payload. Some
// payloads nest episodes under server_data, others inline them.
type serverGroup struct {
	ServerName string       `json:"server_name"`
	ServerData []rawEpisode `json:"server_data"`
}

// listEnvelope covers the documented {data:{items}} shape plus the bare
// {items} variant seen on older endpoints.
type listEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Data  *struct {
		Items []json.RawMessage `json:"items"`
	} `json:"data"`
}

func (e listEnvelope) items() []json.RawMessage {
	if e.Data != nil && len(e.Data.Items) > 0 {
		return e.Data.Items
	}
	return e.Items
}

// detailRecord mirrors rawMovie plus the embedded episode groups.
type detailRecord struct {
	rawMovie
	Episodes []serverGroup `json:"episodes"`
}

type detailEnvelope struct {
	Item  json.RawMessage `json:"item"`
	Movie json.RawMessage `json:"movie"`
	Data  *struct {
		Item json.RawMessage `json:"item"`
	} `json:"data"`
}

func (e detailEnvelope) record() json.RawMessage {
	if e.Data != nil && len(e.Data.Item) > 0 {
		return e.Data.Item
	}
	if len(e.Item) > 0 {
		return e.Item
	}
	return e.Movie
}
