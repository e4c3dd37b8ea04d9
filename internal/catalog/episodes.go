package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/phimhub/phimhub/internal/catalog/types"
)

// Server labels the audio tracks the catalog sources publish.
const (
	ServerVietsub    = "Vietsub"
	ServerThuyetMinh = "Thuyết Minh"
)

var digitRun = regexp.MustCompile(`(\d+)`)

// ParseEpisodeNumber extracts the first run of digits from an episode name
// or slug ("Tập 12" → 12, "ep-7" → 7). The second return is false when the
// value contains no digits.
func ParseEpisodeNumber(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	match := digitRun.FindString(value)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// episodeKey is the merge/grouping key for one episode: "ep-<n>" when a
// number is parseable from name or slug, otherwise slug, otherwise name.
func episodeKey(ep types.Episode) string {
	if n, ok := ParseEpisodeNumber(ep.Name); ok {
		return fmt.Sprintf("ep-%d", n)
	}
	if n, ok := ParseEpisodeNumber(ep.Slug); ok {
		return fmt.Sprintf("ep-%d", n)
	}
	if ep.Slug != "" {
		return ep.Slug
	}
	return ep.Name
}

// episodeNumber parses a number from name then slug; absent digits it
// reports -1 so numberless entries sort after numbered ones.
func episodeNumber(ep types.Episode) int {
	if n, ok := ParseEpisodeNumber(ep.Name); ok {
		return n
	}
	if n, ok := ParseEpisodeNumber(ep.Slug); ok {
		return n
	}
	return -1
}

// stripDiacritics removes combining marks so Vietnamese labels compare by
// their base letters.
func stripDiacritics(text string) string {
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeServerLabel folds the many spellings of the two common audio
// tracks into canonical labels. Unknown labels pass through untouched;
// an empty label defaults to Vietsub.
func NormalizeServerLabel(name string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return ServerVietsub
	}
	plain := strings.ToLower(stripDiacritics(raw))
	if strings.Contains(plain, "thuyet") || strings.Contains(plain, "thuy minh") {
		return ServerThuyetMinh
	}
	if strings.Contains(plain, "viet") {
		return ServerVietsub
	}
	return raw
}

// LatestEpisodeNumber computes the newest known episode number for a title:
// the larger of the number parsed from episode_current and the maximum
// parseable number across the episode list. Absent values count as -1.
func LatestEpisodeNumber(movie *types.Movie, episodes []types.Episode) int {
	current := -1
	if movie != nil {
		if n, ok := ParseEpisodeNumber(movie.EpisodeCurrent); ok {
			current = n
		}
	}

	fromList := -1
	for _, ep := range episodes {
		if n := episodeNumber(ep); n > fromList {
			fromList = n
		}
	}

	if current > fromList {
		return current
	}
	return fromList
}

// EpisodeLabel derives the short status label shown on cards and detail
// views: "Tập {n}" when any episode number is known, else the raw
// episode_current, else the movie status, else "HD".
func EpisodeLabel(movie *types.Movie, episodes []types.Episode) string {
	if n := LatestEpisodeNumber(movie, episodes); n >= 0 {
		return fmt.Sprintf("Tập %d", n)
	}
	if movie != nil {
		if movie.EpisodeCurrent != "" {
			return movie.EpisodeCurrent
		}
		if movie.Status != "" {
			return movie.Status
		}
	}
	return "HD"
}

// SortEpisodes orders a list ascending by parsed episode number; entries
// without a number keep their relative order after the numbered ones.
func SortEpisodes(episodes []types.Episode) []types.Episode {
	out := make([]types.Episode, len(episodes))
	copy(out, episodes)
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := episodeNumber(out[i]), episodeNumber(out[j])
		if ni >= 0 && nj >= 0 {
			return ni < nj
		}
		if ni >= 0 {
			return true
		}
		return false
	})
	return out
}

// GroupByServer buckets episodes by normalized server label, preserving
// within-group order. The returned order slice lists labels by first
// appearance with Vietsub, then Thuyết Minh, pulled to the front when
// present.
func GroupByServer(episodes []types.Episode) (map[string][]types.Episode, []string) {
	groups := make(map[string][]types.Episode)
	order := make([]string, 0, 2)
	for _, ep := range episodes {
		label := NormalizeServerLabel(ep.ServerName)
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], ep)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return serverRank(order[i]) < serverRank(order[j])
	})

	return groups, order
}

func serverRank(label string) int {
	switch label {
	case ServerVietsub:
		return 0
	case ServerThuyetMinh:
		return 1
	default:
		return 2
	}
}
