package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/CatalogApp/internal/core/ports"
	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// EventNewMovie — тип конверта, рассылаемого при появлении фильма
// в каталоге. События об отзывах live-клиентам не рассылаются.
const EventNewMovie = "new-movie"

// movieUseCase implements MovieUseCase
type movieUseCase struct {
	movieStorage  ports.MovieStorage
	movieFetcher  MovieFetcher
	posterStorage PosterStorage
	broadcaster   ports.Broadcaster
	logger        *slog.Logger
}

// NewMovieUseCase создает новый экземпляр MovieUseCase,
// принимает реализации портов хранилища, шлюза и бродкастера.
func NewMovieUseCase(
	movieStorage ports.MovieStorage,
	movieFetcher MovieFetcher,
	posterStorage PosterStorage,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) MovieUseCase {
	return &movieUseCase{
		movieStorage:  movieStorage,
		movieFetcher:  movieFetcher,
		posterStorage: posterStorage,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// GetOrFetchMovieByTitle ищет фильм по названию.
// Сначала смотрит в локальной бд. Если не найден, получает из OMDb API,
// зеркалирует постер в MinIO, сохраняет в бд, рассылает событие и возвращает.
//
// Два конкурентных запроса по ещё не закешированному названию могут оба
// промахнуться и оба вставить: уникальность названий хранилище не
// форсирует, дубликаты возможны.
func (uc *movieUseCase) GetOrFetchMovieByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: название обязательно", domain.ErrValidation)
	}

	// 1. Попытка получить фильм из собственной базы данных.
	movie, err := uc.movieStorage.GetByTitle(ctx, title)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("usecase: ошибка при поиске фильма в БД по названию: %w", err)
	}
	if movie != nil {
		uc.logger.Info("cache hit, serving movie from local store", "title", title, "id", movie.ID)
		return movie, nil
	}

	// 2. Промах кеша: обращаемся к внешнему шлюзу. ErrNotFound и
	// ErrUpstream уходят вызывающему как есть — одна попытка на запрос.
	uc.logger.Info("cache miss, fetching from external gateway", "title", title)

	fetched, err := uc.movieFetcher.FetchByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	// 3. Зеркалируем постер в собственное хранилище. Это best effort:
	// при сбое оставляем исходный URL и продолжаем.
	posterKey := uc.mirrorPoster(ctx, fetched)

	// 4. Сохраняем фильм и рассылаем событие с уже присвоенным id.
	// Несохранённый фильм не должен оставлять за собой объект в хранилище
	// постеров.
	if err := uc.movieStorage.Insert(ctx, fetched); err != nil {
		if posterKey != "" {
			if delErr := uc.posterStorage.DeleteFile(ctx, posterKey); delErr != nil {
				uc.logger.Warn("failed to remove mirrored poster after insert failure", "key", posterKey, "error", delErr)
			}
		}
		return nil, fmt.Errorf("usecase: ошибка при сохранении обогащённого фильма: %w", err)
	}

	uc.broadcaster.Broadcast(EventNewMovie, fetched)

	uc.logger.Info("movie enriched and persisted", "title", fetched.Title, "id", fetched.ID)
	return fetched, nil
}

// mirrorPoster скачивает постер фильма и загружает его в хранилище
// постеров, подменяя PosterURL на собственный. Возвращает ключ
// загруженного объекта (пустая строка значит «не зеркалировали»),
// чтобы вызывающий мог убрать объект, если фильм так и не сохранился.
func (uc *movieUseCase) mirrorPoster(ctx context.Context, movie *domain.Movie) string {
	if movie.PosterURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, movie.PosterURL, nil)
	if err != nil {
		uc.logger.Warn("failed to build poster request, keeping upstream URL", "url", movie.PosterURL, "error", err)
		return ""
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		uc.logger.Warn("failed to download poster, keeping upstream URL", "url", movie.PosterURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		uc.logger.Warn("unexpected status downloading poster, keeping upstream URL", "url", movie.PosterURL, "status", resp.Status)
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("posters/%s", slugify(movie.Title))
	mirroredURL, err := uc.posterStorage.UploadFile(ctx, key, resp.Body, contentType)
	if err != nil {
		uc.logger.Warn("failed to upload poster, keeping upstream URL", "key", key, "error", err)
		return ""
	}

	movie.PosterURL = mirroredURL
	return key
}

// slugify строит ключ объекта из названия фильма.
func slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	return strings.Trim(s, "-")
}

// ListMovies возвращает страницу последних фильмов, суженную фильтром.
func (uc *movieUseCase) ListMovies(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	movies, err := uc.movieStorage.ListRecent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении списка фильмов: %w", err)
	}
	return movies, nil
}

// GetMovieByID возвращает фильм из бд по внутреннему id.
func (uc *movieUseCase) GetMovieByID(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := uc.movieStorage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка при получении фильма по ID: %w", err)
	}
	return movie, nil
}

// CreateMovie валидирует и сохраняет фильм, добавленный вручную.
func (uc *movieUseCase) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	if err := validateMovie(movie); err != nil {
		return err
	}

	if err := uc.movieStorage.Insert(ctx, movie); err != nil {
		return fmt.Errorf("usecase: ошибка при сохранении фильма: %w", err)
	}

	uc.broadcaster.Broadcast(EventNewMovie, movie)
	return nil
}

// CreateMovies вставляет пачку фильмов атомарно.
func (uc *movieUseCase) CreateMovies(ctx context.Context, movies []domain.Movie) ([]domain.Movie, error) {
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: пустой список фильмов", domain.ErrValidation)
	}
	for i := range movies {
		if err := validateMovie(&movies[i]); err != nil {
			return nil, err
		}
	}

	inserted, err := uc.movieStorage.InsertBatch(ctx, movies)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при пакетной вставке фильмов: %w", err)
	}
	return inserted, nil
}

// validateMovie проверяет обязательные поля и запрет разделителя в жанрах.
func validateMovie(movie *domain.Movie) error {
	movie.Title = strings.TrimSpace(movie.Title)
	movie.Director = strings.TrimSpace(movie.Director)

	if movie.Title == "" || movie.Director == "" || movie.Year == 0 || len(movie.Genres) == 0 {
		return fmt.Errorf("%w: обязательные поля: title, year, director, genres", domain.ErrValidation)
	}
	for _, g := range movie.Genres {
		if strings.Contains(g, domain.GenreDelimiter) {
			return fmt.Errorf("%w: жанр не может содержать символ %q", domain.ErrValidation, domain.GenreDelimiter)
		}
	}
	return nil
}
