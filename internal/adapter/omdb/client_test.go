package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *OMDbAPIClient {
	return NewOMDbAPIClient(&config.Config{
		OMDbAPIKey:  "test-key",
		OMDbBaseURL: baseURL,
		OMDbTimeout: 2 * time.Second,
	})
}

func TestFetchByTitleSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		require.Equal(t, "The Matrix", r.URL.Query().Get("t"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Title": "The Matrix",
			"Year": "1999",
			"Director": "Lana Wachowski, Lilly Wachowski",
			"Genre": "Action, Sci-Fi",
			"imdbRating": "8.7",
			"Plot": "A computer hacker learns the truth.",
			"Poster": "https://example.com/matrix.jpg",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	movie, err := newTestClient(srv.URL).FetchByTitle(context.Background(), "The Matrix")
	require.NoError(t, err)
	require.Equal(t, "The Matrix", movie.Title)
	require.Equal(t, 1999, movie.Year)
	require.Equal(t, []string{"Action", "Sci-Fi"}, movie.Genres)
	require.Equal(t, 8.7, movie.ExternalRating)
	require.Equal(t, 8.7, movie.DisplayRating)
	require.Equal(t, "https://example.com/matrix.jpg", movie.PosterURL)
}

func TestFetchByTitleNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchByTitle(context.Background(), "No Such Film")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchByTitleUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unexpected status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"Title": `))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchByTitle(context.Background(), "Anything")
			require.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

func TestMapToleratesUnparseableFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"Title": "Some Series",
			"Year": "2008–2013",
			"imdbRating": "N/A",
			"Poster": "N/A",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	movie, err := newTestClient(srv.URL).FetchByTitle(context.Background(), "Some Series")
	require.NoError(t, err)
	require.Equal(t, 2008, movie.Year, "year ranges collapse to the first year")
	require.Zero(t, movie.ExternalRating, "unparseable rating becomes zero")
	require.Empty(t, movie.PosterURL, `poster "N/A" becomes empty`)
}
