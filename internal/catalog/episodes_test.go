package catalog

import (
	"testing"

	"github.com/phimhub/phimhub/internal/catalog/types"
)

func TestParseEpisodeNumber(t *testing.T) {
	tests := []struct {
		value  string
		number int
		ok     bool
	}{
		{"Tập 12", 12, true},
		{"tap-7", 7, true},
		{"Episode 3 (2024)", 3, true},
		{"Full", 0, false},
		{"", 0, false},
		{"Tập đặc biệt", 0, false},
		{"01", 1, true},
	}

	for _, tt := range tests {
		n, ok := ParseEpisodeNumber(tt.value)
		if ok != tt.ok {
			t.Errorf("ParseEpisodeNumber(%q) ok = %v, want %v", tt.value, ok, tt.ok)
		}
		if ok && n != tt.number {
			t.Errorf("ParseEpisodeNumber(%q) = %d, want %d", tt.value, n, tt.number)
		}
	}
}

func TestNormalizeServerLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ServerVietsub},
		{"  ", ServerVietsub},
		{"Vietsub", ServerVietsub},
		{"VIETSUB #1", ServerVietsub},
		{"Thuyết Minh", ServerThuyetMinh},
		{"thuyet minh", ServerThuyetMinh},
		{"Server Thuyết Minh HD", ServerThuyetMinh},
		{"Lồng Tiếng", "Lồng Tiếng"},
	}

	for _, tt := range tests {
		if got := NormalizeServerLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeServerLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLatestEpisodeNumber(t *testing.T) {
	movie := &types.Movie{EpisodeCurrent: "Tập 10"}
	episodes := []types.Episode{
		{Name: "Tập 1"},
		{Name: "Tập 12"},
		{Name: "Tập 5"},
	}

	if got := LatestEpisodeNumber(movie, episodes); got != 12 {
		t.Errorf("expected list max 12, got %d", got)
	}

	movie.EpisodeCurrent = "Tập 20"
	if got := LatestEpisodeNumber(movie, episodes); got != 20 {
		t.Errorf("expected episode_current 20, got %d", got)
	}

	if got := LatestEpisodeNumber(nil, nil); got != -1 {
		t.Errorf("expected -1 with no data, got %d", got)
	}

	if got := LatestEpisodeNumber(&types.Movie{EpisodeCurrent: "Full"}, nil); got != -1 {
		t.Errorf("expected -1 for numberless current, got %d", got)
	}
}

func TestEpisodeLabel(t *testing.T) {
	movie := &types.Movie{EpisodeCurrent: "Tập 8"}
	if got := EpisodeLabel(movie, nil); got != "Tập 8" {
		t.Errorf("expected 'Tập 8', got %q", got)
	}

	movie = &types.Movie{EpisodeCurrent: "Full"}
	if got := EpisodeLabel(movie, nil); got != "Full" {
		t.Errorf("expected raw episode_current 'Full', got %q", got)
	}

	movie = &types.Movie{Status: "completed"}
	if got := EpisodeLabel(movie, nil); got != "completed" {
		t.Errorf("expected status fallback, got %q", got)
	}

	if got := EpisodeLabel(nil, nil); got != "HD" {
		t.Errorf("expected 'HD' fallback, got %q", got)
	}
}

func TestSortEpisodes(t *testing.T) {
	episodes := []types.Episode{
		{Name: "Tập 3"},
		{Name: "Trailer"},
		{Name: "Tập 1"},
		{Name: "Behind the scenes", Slug: "bts"},
		{Name: "Tập 2"},
	}

	sorted := SortEpisodes(episodes)

	wantNames := []string{"Tập 1", "Tập 2", "Tập 3", "Trailer", "Behind the scenes"}
	for i, want := range wantNames {
		if sorted[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, sorted[i].Name, want)
		}
	}

	// Input must not be mutated
	if episodes[0].Name != "Tập 3" {
		t.Error("SortEpisodes mutated its input")
	}
}

func TestGroupByServer(t *testing.T) {
	episodes := []types.Episode{
		{Name: "Tập 1", ServerName: "Thuyết Minh"},
		{Name: "Tập 1", ServerName: "Vietsub #1"},
		{Name: "Tập 2", ServerName: "vietsub"},
		{Name: "Tập 1", ServerName: "Lồng Tiếng"},
	}

	groups, order := GroupByServer(episodes)

	if len(order) != 3 {
		t.Fatalf("expected 3 server groups, got %d", len(order))
	}
	if order[0] != ServerVietsub || order[1] != ServerThuyetMinh {
		t.Errorf("expected Vietsub then Thuyết Minh first, got %v", order)
	}
	if len(groups[ServerVietsub]) != 2 {
		t.Errorf("expected 2 Vietsub episodes, got %d", len(groups[ServerVietsub]))
	}
	if len(groups["Lồng Tiếng"]) != 1 {
		t.Errorf("expected unknown label to pass through, got %v", groups)
	}
}
