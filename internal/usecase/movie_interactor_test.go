package usecase

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeMovieStorage struct {
	byTitle   map[string]*domain.Movie
	recent    []domain.Movie
	listErr   error
	insertErr error
	inserted  []*domain.Movie
	batches   [][]domain.Movie
	nextID    int64
}

func (f *fakeMovieStorage) ListRecent(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Movie, 0, len(f.recent))
	for i := range f.recent {
		if filter.Matches(&f.recent[i]) {
			out = append(out, f.recent[i])
		}
	}
	return out, nil
}

func (f *fakeMovieStorage) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	for _, m := range f.byTitle {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMovieStorage) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	if m, ok := f.byTitle[strings.ToLower(title)]; ok {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMovieStorage) Insert(ctx context.Context, movie *domain.Movie) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	movie.ID = f.nextID
	f.inserted = append(f.inserted, movie)
	return nil
}

func (f *fakeMovieStorage) InsertBatch(ctx context.Context, movies []domain.Movie) ([]domain.Movie, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for i := range movies {
		f.nextID++
		movies[i].ID = f.nextID
	}
	f.batches = append(f.batches, movies)
	return movies, nil
}

type fakeFetcher struct {
	movie *domain.Movie
	err   error
	calls int
}

func (f *fakeFetcher) FetchByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.movie
	return &cp, nil
}

type fakePosterStorage struct {
	uploadedKeys []string
	deletedKeys  []string
	url          string
	err          error
}

func (f *fakePosterStorage) UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploadedKeys = append(f.uploadedKeys, key)
	return f.url, nil
}

func (f *fakePosterStorage) DeleteFile(ctx context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

type broadcastEvent struct {
	eventType string
	data      any
}

type fakeBroadcaster struct {
	events []broadcastEvent
}

func (f *fakeBroadcaster) Broadcast(eventType string, data any) {
	f.events = append(f.events, broadcastEvent{eventType: eventType, data: data})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetOrFetchMovieByTitleCacheHit(t *testing.T) {
	cached := &domain.Movie{ID: 7, Title: "Heat", Year: 1995}
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{"heat": cached}}
	fetcher := &fakeFetcher{}
	broadcaster := &fakeBroadcaster{}

	uc := NewMovieUseCase(storage, fetcher, &fakePosterStorage{}, broadcaster, testLogger())

	got, err := uc.GetOrFetchMovieByTitle(context.Background(), "Heat")
	require.NoError(t, err)
	require.Equal(t, cached, got)
	require.Zero(t, fetcher.calls, "cache hit must not reach the external gateway")
	require.Empty(t, storage.inserted)
	require.Empty(t, broadcaster.events)
}

func TestGetOrFetchMovieByTitleCacheMiss(t *testing.T) {
	fetched := &domain.Movie{Title: "Alien", Year: 1979, ExternalRating: 8.5}
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{}}
	fetcher := &fakeFetcher{movie: fetched}
	broadcaster := &fakeBroadcaster{}

	uc := NewMovieUseCase(storage, fetcher, &fakePosterStorage{}, broadcaster, testLogger())

	got, err := uc.GetOrFetchMovieByTitle(context.Background(), " Alien ")
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)
	require.Len(t, storage.inserted, 1)
	require.NotZero(t, got.ID, "persisted movie must carry its assigned id")

	require.Len(t, broadcaster.events, 1)
	require.Equal(t, EventNewMovie, broadcaster.events[0].eventType)
	require.Equal(t, got, broadcaster.events[0].data)
}

func TestGetOrFetchMovieByTitleUpstreamNotFound(t *testing.T) {
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{}}
	fetcher := &fakeFetcher{err: domain.ErrNotFound}
	broadcaster := &fakeBroadcaster{}

	uc := NewMovieUseCase(storage, fetcher, &fakePosterStorage{}, broadcaster, testLogger())

	_, err := uc.GetOrFetchMovieByTitle(context.Background(), "No Such Film")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Empty(t, storage.inserted, "nothing may be persisted on a failed fetch")
	require.Empty(t, broadcaster.events, "no event may be sent on a failed fetch")
}

func TestGetOrFetchMovieByTitleEmptyTitle(t *testing.T) {
	uc := NewMovieUseCase(&fakeMovieStorage{}, &fakeFetcher{}, &fakePosterStorage{}, &fakeBroadcaster{}, testLogger())

	_, err := uc.GetOrFetchMovieByTitle(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetOrFetchMovieByTitleMirrorsPoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	fetched := &domain.Movie{Title: "Blade Runner", Year: 1982, PosterURL: srv.URL + "/poster.jpg"}
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{}}
	posters := &fakePosterStorage{url: "http://minio.local/posters/blade-runner"}

	uc := NewMovieUseCase(storage, &fakeFetcher{movie: fetched}, posters, &fakeBroadcaster{}, testLogger())

	got, err := uc.GetOrFetchMovieByTitle(context.Background(), "Blade Runner")
	require.NoError(t, err)
	require.Equal(t, "http://minio.local/posters/blade-runner", got.PosterURL)
	require.Equal(t, []string{"posters/blade-runner"}, posters.uploadedKeys)
}

func TestGetOrFetchMovieByTitlePosterUploadFailureKeepsUpstreamURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	posterURL := srv.URL + "/poster.jpg"
	fetched := &domain.Movie{Title: "Stalker", Year: 1979, PosterURL: posterURL}
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{}}
	posters := &fakePosterStorage{err: io.ErrUnexpectedEOF}

	uc := NewMovieUseCase(storage, &fakeFetcher{movie: fetched}, posters, &fakeBroadcaster{}, testLogger())

	got, err := uc.GetOrFetchMovieByTitle(context.Background(), "Stalker")
	require.NoError(t, err, "poster mirroring is best effort")
	require.Equal(t, posterURL, got.PosterURL)
}

func TestGetOrFetchMovieByTitleRemovesMirroredPosterWhenInsertFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	fetched := &domain.Movie{Title: "Solaris", Year: 1972, PosterURL: srv.URL + "/poster.jpg"}
	storage := &fakeMovieStorage{byTitle: map[string]*domain.Movie{}, insertErr: io.ErrUnexpectedEOF}
	posters := &fakePosterStorage{url: "http://minio.local/posters/solaris"}
	broadcaster := &fakeBroadcaster{}

	uc := NewMovieUseCase(storage, &fakeFetcher{movie: fetched}, posters, broadcaster, testLogger())

	_, err := uc.GetOrFetchMovieByTitle(context.Background(), "Solaris")
	require.Error(t, err)
	require.Equal(t, []string{"posters/solaris"}, posters.uploadedKeys)
	require.Equal(t, []string{"posters/solaris"}, posters.deletedKeys, "orphaned poster must be removed when the movie is not persisted")
	require.Empty(t, broadcaster.events)
}

func TestCreateMovieValidation(t *testing.T) {
	tests := []struct {
		name  string
		movie domain.Movie
	}{
		{"missing title", domain.Movie{Year: 2000, Director: "X", Genres: []string{"Drama"}}},
		{"missing year", domain.Movie{Title: "T", Director: "X", Genres: []string{"Drama"}}},
		{"missing director", domain.Movie{Title: "T", Year: 2000, Genres: []string{"Drama"}}},
		{"missing genres", domain.Movie{Title: "T", Year: 2000, Director: "X"}},
		{"genre with delimiter", domain.Movie{Title: "T", Year: 2000, Director: "X", Genres: []string{"Dra|ma"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeMovieStorage{}
			uc := NewMovieUseCase(storage, &fakeFetcher{}, &fakePosterStorage{}, &fakeBroadcaster{}, testLogger())

			err := uc.CreateMovie(context.Background(), &tt.movie)
			require.ErrorIs(t, err, domain.ErrValidation)
			require.Empty(t, storage.inserted)
		})
	}
}

func TestCreateMovieBroadcasts(t *testing.T) {
	storage := &fakeMovieStorage{}
	broadcaster := &fakeBroadcaster{}
	uc := NewMovieUseCase(storage, &fakeFetcher{}, &fakePosterStorage{}, broadcaster, testLogger())

	movie := domain.Movie{Title: "Ran", Year: 1985, Director: "Akira Kurosawa", Genres: []string{"Drama", "War"}}
	require.NoError(t, uc.CreateMovie(context.Background(), &movie))
	require.NotZero(t, movie.ID)
	require.Len(t, broadcaster.events, 1)
	require.Equal(t, EventNewMovie, broadcaster.events[0].eventType)
}

func TestCreateMoviesRejectsInvalidBatchBeforeInsert(t *testing.T) {
	storage := &fakeMovieStorage{}
	uc := NewMovieUseCase(storage, &fakeFetcher{}, &fakePosterStorage{}, &fakeBroadcaster{}, testLogger())

	movies := []domain.Movie{
		{Title: "Good", Year: 2001, Director: "A", Genres: []string{"Drama"}},
		{Title: "", Year: 2002, Director: "B", Genres: []string{"Drama"}},
	}

	_, err := uc.CreateMovies(context.Background(), movies)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Empty(t, storage.batches)
}

func TestListMoviesAppliesFilter(t *testing.T) {
	storage := &fakeMovieStorage{recent: []domain.Movie{
		{ID: 3, Title: "Alien", Year: 1979, Director: "Ridley Scott", Genres: []string{"Horror", "Sci-Fi"}},
		{ID: 2, Title: "Aliens", Year: 1986, Director: "James Cameron", Genres: []string{"Action", "Sci-Fi"}},
		{ID: 1, Title: "Heat", Year: 1995, Director: "Michael Mann", Genres: []string{"Crime"}},
	}}
	uc := NewMovieUseCase(storage, &fakeFetcher{}, &fakePosterStorage{}, &fakeBroadcaster{}, testLogger())

	got, err := uc.ListMovies(context.Background(), domain.MovieFilter{Query: "alien", Year: 1986})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Aliens", got[0].Title)
}
