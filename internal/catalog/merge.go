package catalog

import (
	"strings"

	"github.com/phimhub/phimhub/internal/catalog/types"
)

// MergeDetails combines per-source details for one title into a single
// authoritative detail. Priority names the sources highest first; entries
// missing from the map (failed or empty sources) are skipped.
//
// Episodes are keyed by parsed episode number ("ep-<n>"), falling back to
// slug then name. The first (highest-priority) source to claim a key wins,
// unless its entry has no playable link and a later source offers one:
// playability trumps priority when priority's own entry is unusable. The
// merged list is ordered ascending by episode number, with numberless
// entries after, in claim order.
func MergeDetails(priority []string, bySource map[string]*types.Detail) types.Detail {
	merged := make(map[string]types.Episode)
	claimOrder := make([]string, 0)

	for _, source := range priority {
		detail := bySource[source]
		if detail == nil {
			continue
		}
		for _, ep := range detail.Episodes {
			key := episodeKey(ep)
			existing, ok := merged[key]
			if !ok {
				merged[key] = ep
				claimOrder = append(claimOrder, key)
				continue
			}
			if !existing.Playable() && ep.Playable() {
				merged[key] = ep
			}
		}
	}

	episodes := make([]types.Episode, 0, len(claimOrder))
	for _, key := range claimOrder {
		episodes = append(episodes, merged[key])
	}
	episodes = SortEpisodes(episodes)

	return types.Detail{
		Movie:    selectCanonicalMovie(priority, bySource),
		Episodes: episodes,
	}
}

// selectCanonicalMovie picks the metadata record for a merged title. A
// source's record is preferred in priority order when its first episode has
// a parseable number, which signals live, numbered episode data. When no
// source qualifies, lower-priority non-nil records win over higher ones,
// matching the catalog's tendency to keep stale metadata on the primary
// source after a title completes.
func selectCanonicalMovie(priority []string, bySource map[string]*types.Detail) *types.Movie {
	for _, source := range priority {
		detail := bySource[source]
		if detail == nil || detail.Movie == nil || len(detail.Episodes) == 0 {
			continue
		}
		first := detail.Episodes[0]
		if _, ok := ParseEpisodeNumber(first.Name); ok {
			return detail.Movie
		}
		if _, ok := ParseEpisodeNumber(first.Slug); ok {
			return detail.Movie
		}
	}

	for i := len(priority) - 1; i >= 0; i-- {
		detail := bySource[priority[i]]
		if detail != nil && detail.Movie != nil {
			return detail.Movie
		}
	}

	return nil
}

// DedupeMovies removes duplicate titles from a concatenated list, keeping
// the first occurrence of each slug. Concatenation order is the priority
// signal: callers append higher-priority sources first.
func DedupeMovies(movies []types.Movie) []types.Movie {
	seen := make(map[string]struct{}, len(movies))
	out := make([]types.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Slug == "" {
			continue
		}
		if _, ok := seen[m.Slug]; ok {
			continue
		}
		seen[m.Slug] = struct{}{}
		out = append(out, m)
	}
	return out
}

// FindStreamableMatch locates a catalog title matching a TMDB record by
// name and year. The name must equal the candidate's name or origin name
// (case-insensitive); years must agree when both sides have one.
func FindStreamableMatch(movie *types.Movie, candidates []types.Movie) *types.Movie {
	if movie == nil {
		return nil
	}

	names := make([]string, 0, 2)
	for _, n := range []string{movie.Name, movie.OriginName} {
		if n = normalizeName(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil
	}

	for i := range candidates {
		candidate := &candidates[i]
		name := normalizeName(candidate.Name)
		origin := normalizeName(candidate.OriginName)

		nameHit := false
		for _, n := range names {
			if n == name || (origin != "" && n == origin) {
				nameHit = true
				break
			}
		}
		if !nameHit {
			continue
		}

		if movie.Year != "" && candidate.Year != "" && movie.Year != candidate.Year {
			continue
		}
		return candidate
	}

	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
