package ophim

import (
	"encoding/json"
	"strings"
)

// flexString decodes a JSON string or number into a string. The upstream API
// is loose about numeric fields like year.
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
		// Fail closed: unexpected shape becomes empty, not an error.
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// labelList decodes genre/region labels that arrive either as plain strings
// or as {"name": ...} objects.
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

// rawMovie covers the field variants the API uses across list and detail
// payloads.
type rawMovie struct {
	Slug           string     `json:"slug"`
	MongoID        string     `json:"_id"`
	ID             flexString `json:"id"`
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	OriginName     string     `json:"origin_name"`
	PosterURL      string     `json:"poster_url"`
	ThumbURL       string     `json:"thumb_url"`
	Poster         string     `json:"poster"`
	Banner         string     `json:"banner"`
	Year           flexString `json:"year"`
	Released       flexString `json:"released"`
	PublishYear    flexString `json:"publishYear"`
	EpisodeCurrent string     `json:"episode_current"`
	EpisodeCamel   string     `json:"episodeCurrent"`
	EpisodeTotal   flexString `json:"episode_total"`
	Quality        string     `json:"quality"`
	Lang           string     `json:"lang"`
	Time           string     `json:"time"`
	Status         string     `json:"status"`
	Type           string     `json:"type"`
	Category       labelList  `json:"category"`
	Genres         labelList  `json:"genres"`
	Country        labelList  `json:"country"`
	Content        string     `json:"content"`
	Description    string     `json:"description"`
	Notify         string     `json:"notify"`
}

// rawEpisode covers the link field variants seen across servers.
type rawEpisode struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	Slug      string `json:"slug"`
	LinkM3U8  string `json:"link_m3u8"`
	M3U8      string `json:"m3u8"`
	LinkPlay  string `json:"linkplay"`
	Link      string `json:"link"`
	Embed     string `json:"embed"`
	LinkEmbed string `json:"link_embed"`
	EmbedURL  string `json:"embed_url"`
}

// serverGroup is one server's episode list within a detail payload.
type serverGroup struct {
	ServerName string       `json:"server_name"`
	ServerData []rawEpisode `json:"server_data"`
}

// listEnvelope tolerates both the bare and the data-wrapped list shapes.
type listEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Data  *struct {
		Items []json.RawMessage `json:"items"`
	} `json:"data"`
}

func (e listEnvelope) items() []json.RawMessage {
	if len(e.Items) > 0 {
		return e.Items
	}
	if e.Data != nil {
		return e.Data.Items
	}
	return nil
}

// detailEnvelope tolerates the movie/episodes and data.item shapes.
type detailEnvelope struct {
	Movie    json.RawMessage `json:"movie"`
	Episodes []serverGroup   `json:"episodes"`
	Data     *struct {
		Item     json.RawMessage `json:"item"`
		Episodes []serverGroup   `json:"episodes"`
	} `json:"data"`
}
