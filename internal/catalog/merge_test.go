package catalog

import (
	"testing"

	"github.com/phimhub/phimhub/internal/catalog/types"
)

func detailWith(name string, episodes ...types.Episode) *types.Detail {
	return &types.Detail{
		Movie:    &types.Movie{Slug: "test-movie", Name: name},
		Episodes: episodes,
	}
}

func TestMergeDetails_PriorityWins(t *testing.T) {
	priority := []string{"kkphim", "ophim"}
	bySource := map[string]*types.Detail{
		"kkphim": detailWith("KK",
			types.Episode{Name: "Tập 1", LinkM3U8: "https://kk/1.m3u8", ServerName: "Vietsub"},
		),
		"ophim": detailWith("OP",
			types.Episode{Name: "Tập 1", LinkM3U8: "https://op/1.m3u8", ServerName: "Vietsub"},
			types.Episode{Name: "Tập 2", LinkM3U8: "https://op/2.m3u8", ServerName: "Vietsub"},
		),
	}

	merged := MergeDetails(priority, bySource)

	if len(merged.Episodes) != 2 {
		t.Fatalf("expected 2 merged episodes, got %d", len(merged.Episodes))
	}
	if merged.Episodes[0].LinkM3U8 != "https://kk/1.m3u8" {
		t.Errorf("episode 1 should come from the priority source, got %q", merged.Episodes[0].LinkM3U8)
	}
	if merged.Episodes[1].LinkM3U8 != "https://op/2.m3u8" {
		t.Errorf("episode 2 should fill in from the lower source, got %q", merged.Episodes[1].LinkM3U8)
	}
}

func TestMergeDetails_PlayabilityTrumpsPriority(t *testing.T) {
	priority := []string{"kkphim", "ophim"}
	bySource := map[string]*types.Detail{
		"kkphim": detailWith("KK",
			types.Episode{Name: "Tập 1", ServerName: "Vietsub"}, // no links
		),
		"ophim": detailWith("OP",
			types.Episode{Name: "Tập 1", LinkM3U8: "https://op/1.m3u8", ServerName: "Vietsub"},
		),
	}

	merged := MergeDetails(priority, bySource)

	if len(merged.Episodes) != 1 {
		t.Fatalf("expected 1 merged episode, got %d", len(merged.Episodes))
	}
	if merged.Episodes[0].LinkM3U8 != "https://op/1.m3u8" {
		t.Errorf("playable entry should replace the unplayable priority one, got %q", merged.Episodes[0].LinkM3U8)
	}
}

func TestMergeDetails_PlayablePriorityKept(t *testing.T) {
	priority := []string{"kkphim", "ophim"}
	bySource := map[string]*types.Detail{
		"kkphim": detailWith("KK",
			types.Episode{Name: "Tập 1", Embed: "https://kk/embed/1", ServerName: "Vietsub"},
		),
		"ophim": detailWith("OP",
			types.Episode{Name: "Tập 1", LinkM3U8: "https://op/1.m3u8", ServerName: "Vietsub"},
		),
	}

	merged := MergeDetails(priority, bySource)

	if merged.Episodes[0].Embed != "https://kk/embed/1" {
		t.Errorf("playable priority entry must not be replaced, got %+v", merged.Episodes[0])
	}
}

func TestMergeDetails_KeyFallbacks(t *testing.T) {
	priority := []string{"kkphim", "ophim"}
	bySource := map[string]*types.Detail{
		"kkphim": detailWith("KK",
			types.Episode{Name: "Full", Slug: "full", LinkM3U8: "https://kk/full.m3u8"},
		),
		"ophim": detailWith("OP",
			types.Episode{Name: "Full", Slug: "full", LinkM3U8: "https://op/full.m3u8"},
			types.Episode{Name: "Trailer", Slug: "", LinkM3U8: "https://op/trailer.m3u8"},
		),
	}

	merged := MergeDetails(priority, bySource)

	// "full" dedupes on slug, "Trailer" keys on name
	if len(merged.Episodes) != 2 {
		t.Fatalf("expected 2 merged episodes, got %d", len(merged.Episodes))
	}
	if merged.Episodes[0].LinkM3U8 != "https://kk/full.m3u8" {
		t.Errorf("slug-keyed episode should come from priority source, got %q", merged.Episodes[0].LinkM3U8)
	}
}

func TestMergeDetails_MissingSources(t *testing.T) {
	priority := []string{"kkphim", "ophim"}

	merged := MergeDetails(priority, map[string]*types.Detail{})
	if merged.Movie != nil {
		t.Error("expected nil movie with no sources")
	}
	if len(merged.Episodes) != 0 {
		t.Errorf("expected no episodes, got %d", len(merged.Episodes))
	}

	merged = MergeDetails(priority, map[string]*types.Detail{
		"ophim": detailWith("OP", types.Episode{Name: "Tập 1", LinkM3U8: "https://op/1.m3u8"}),
	})
	if merged.Movie == nil || merged.Movie.Name != "OP" {
		t.Errorf("expected the only available source's movie, got %+v", merged.Movie)
	}
}

func TestSelectCanonicalMovie(t *testing.T) {
	priority := []string{"kkphim", "ophim"}

	// kkphim has numberless first episode, ophim numbered: ophim wins.
	bySource := map[string]*types.Detail{
		"kkphim": detailWith("KK", types.Episode{Name: "Full", Slug: "full"}),
		"ophim":  detailWith("OP", types.Episode{Name: "Tập 1", Slug: "tap-1"}),
	}
	if movie := selectCanonicalMovie(priority, bySource); movie == nil || movie.Name != "OP" {
		t.Errorf("expected source with numbered episodes to win, got %+v", movie)
	}

	// Nobody has numbered episodes: reverse priority fallback picks ophim.
	bySource = map[string]*types.Detail{
		"kkphim": detailWith("KK", types.Episode{Name: "Full", Slug: "full"}),
		"ophim":  detailWith("OP", types.Episode{Name: "Full", Slug: "full"}),
	}
	if movie := selectCanonicalMovie(priority, bySource); movie == nil || movie.Name != "OP" {
		t.Errorf("expected reverse-priority fallback, got %+v", movie)
	}

	// Number parseable from slug only still qualifies.
	bySource = map[string]*types.Detail{
		"kkphim": detailWith("KK", types.Episode{Name: "Full", Slug: "tap-1"}),
	}
	if movie := selectCanonicalMovie(priority, bySource); movie == nil || movie.Name != "KK" {
		t.Errorf("expected slug-numbered source to qualify, got %+v", movie)
	}
}

func TestDedupeMovies(t *testing.T) {
	movies := []types.Movie{
		{Slug: "a", Source: "kkphim"},
		{Slug: "b", Source: "kkphim"},
		{Slug: "a", Source: "ophim"},
		{Slug: "", Source: "ophim"},
		{Slug: "c", Source: "ophim"},
	}

	out := DedupeMovies(movies)

	if len(out) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(out))
	}
	if out[0].Slug != "a" || out[0].Source != "kkphim" {
		t.Errorf("first occurrence must win, got %+v", out[0])
	}
	if out[1].Slug != "b" || out[2].Slug != "c" {
		t.Errorf("unexpected order: %+v", out)
	}
}

func TestFindStreamableMatch(t *testing.T) {
	movie := &types.Movie{Name: "The Matrix", OriginName: "The Matrix", Year: "1999"}
	candidates := []types.Movie{
		{Slug: "matrix-remake", Name: "The Matrix", Year: "2021"},
		{Slug: "ma-tran", Name: "Ma Trận", OriginName: "the matrix", Year: "1999"},
	}

	match := FindStreamableMatch(movie, candidates)
	if match == nil || match.Slug != "ma-tran" {
		t.Fatalf("expected year-agreeing origin-name match, got %+v", match)
	}

	// Year mismatch rejects even exact names.
	movie.Year = "1998"
	candidates = candidates[:1]
	if match := FindStreamableMatch(movie, candidates); match != nil {
		t.Errorf("expected no match on year mismatch, got %+v", match)
	}

	// Missing year on either side is not a mismatch.
	movie.Year = ""
	if match := FindStreamableMatch(movie, candidates); match == nil {
		t.Error("expected match when the TMDB record has no year")
	}

	if match := FindStreamableMatch(nil, candidates); match != nil {
		t.Error("expected nil for nil movie")
	}
}
