package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinAndSplitGenres(t *testing.T) {
	tests := []struct {
		name     string
		genres   []string
		raw      string
		restored []string
	}{
		{
			name:     "multiple genres",
			genres:   []string{"Drama", "Crime"},
			raw:      "Drama|Crime",
			restored: []string{"Drama", "Crime"},
		},
		{
			name:     "single genre",
			genres:   []string{"Comedy"},
			raw:      "Comedy",
			restored: []string{"Comedy"},
		},
		{
			name:     "empty list",
			genres:   nil,
			raw:      "",
			restored: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := JoinGenres(tt.genres)
			require.Equal(t, tt.raw, raw)
			require.Equal(t, tt.restored, SplitGenres(raw))
		})
	}
}

func TestSplitGenresToleratesCommasAndSpaces(t *testing.T) {
	require.Equal(t, []string{"Action", "Adventure", "Sci-Fi"}, SplitGenres("Action, Adventure, Sci-Fi"))
	require.Equal(t, []string{"Drama"}, SplitGenres("  Drama  "))
	require.Empty(t, SplitGenres("||,"))
}

func TestMovieFilterMatches(t *testing.T) {
	movie := Movie{
		Title:    "The Godfather",
		Year:     1972,
		Director: "Francis Ford Coppola",
		Genres:   []string{"Crime", "Drama"},
	}

	tests := []struct {
		name    string
		filter  MovieFilter
		matches bool
	}{
		{"empty filter matches everything", MovieFilter{}, true},
		{"title substring case-insensitive", MovieFilter{Query: "godfather"}, true},
		{"director substring", MovieFilter{Query: "coppola"}, true},
		{"query with no match", MovieFilter{Query: "scorsese"}, false},
		{"genre substring case-insensitive", MovieFilter{Genre: "crim"}, true},
		{"genre with no match", MovieFilter{Genre: "comedy"}, false},
		{"exact year", MovieFilter{Year: 1972}, true},
		{"wrong year", MovieFilter{Year: 1974}, false},
		{"all filters combined", MovieFilter{Query: "god", Genre: "drama", Year: 1972}, true},
		{"combined with one miss", MovieFilter{Query: "god", Genre: "drama", Year: 1999}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.matches, tt.filter.Matches(&movie))
		})
	}
}
