package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/jmoiron/sqlx"
)

// recentPageSize — фиксированный размер страницы последних фильмов.
// Фильтры применяются уже после выборки этой страницы: они сужают окно,
// а не расширяют его (осознанный компромисс, унаследованный от исходной
// схемы; подходящий фильм за пределами окна в выдачу не попадает).
const recentPageSize = 21

type MoviePostgresStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewMoviePostgresStorage(db *sqlx.DB, logger *slog.Logger) *MoviePostgresStorage {
	return &MoviePostgresStorage{db: db, logger: logger}
}

const movieColumns = `id, title, year, director, genres, display_rating, external_rating, synopsis, poster_url`

// ListRecent возвращает последние фильмы (новые первыми по id) и сужает
// страницу фильтром в памяти.
func (s *MoviePostgresStorage) ListRecent(ctx context.Context, filter domain.MovieFilter) ([]domain.Movie, error) {
	start := time.Now()

	q := `SELECT ` + movieColumns + ` FROM movies ORDER BY id DESC LIMIT $1`

	var page []domain.Movie
	if err := s.db.SelectContext(ctx, &page, q, recentPageSize); err != nil {
		s.logger.Error("failed to list recent movies", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка фильмов: %w", err)
	}

	movies := make([]domain.Movie, 0, len(page))
	for i := range page {
		page[i].MaterializeGenres()
		if filter.Matches(&page[i]) {
			movies = append(movies, page[i])
		}
	}

	s.logger.Info("listed recent movies",
		"fetched", len(page),
		"matched", len(movies),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return movies, nil
}

// GetByID получает фильм по внутреннему id.
func (s *MoviePostgresStorage) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var movie domain.Movie
	q := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &movie, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("movie not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get movie by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении фильма по ID: %w", err)
	}

	movie.MaterializeGenres()
	return &movie, nil
}

// GetByTitle получает фильм по точному названию без учёта регистра.
func (s *MoviePostgresStorage) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	var movie domain.Movie
	q := `SELECT ` + movieColumns + ` FROM movies WHERE LOWER(title) = LOWER($1) LIMIT 1`

	err := s.db.GetContext(ctx, &movie, q, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get movie by title", "title", title, "error", err)
		return nil, fmt.Errorf("ошибка при получении фильма по названию: %w", err)
	}

	movie.MaterializeGenres()
	return &movie, nil
}

// Insert сохраняет новый фильм. Жанры сериализуются одной строкой,
// display_rating сажается равным external_rating (отзывов ещё нет).
func (s *MoviePostgresStorage) Insert(ctx context.Context, movie *domain.Movie) error {
	start := time.Now()

	movie.GenresRaw = domain.JoinGenres(movie.Genres)
	movie.DisplayRating = movie.ExternalRating

	q := `
	INSERT INTO movies (title, year, director, genres, display_rating, external_rating, synopsis, poster_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	err := s.db.QueryRowxContext(ctx, q,
		movie.Title, movie.Year, movie.Director, movie.GenresRaw,
		movie.DisplayRating, movie.ExternalRating, movie.Synopsis, movie.PosterURL,
	).Scan(&movie.ID)
	if err != nil {
		s.logger.Error("failed to insert movie", "title", movie.Title, "error", err)
		return fmt.Errorf("ошибка при сохранении фильма: %w", err)
	}

	movie.MaterializeGenres()

	s.logger.Info("movie inserted successfully",
		"id", movie.ID,
		"title", movie.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// InsertBatch вставляет пачку фильмов в одной транзакции: при любой
// ошибке вся пачка откатывается.
func (s *MoviePostgresStorage) InsertBatch(ctx context.Context, movies []domain.Movie) ([]domain.Movie, error) {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	q := `
	INSERT INTO movies (title, year, director, genres, display_rating, external_rating, synopsis, poster_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	inserted := make([]domain.Movie, 0, len(movies))
	for _, movie := range movies {
		movie.GenresRaw = domain.JoinGenres(movie.Genres)
		movie.DisplayRating = movie.ExternalRating

		err := tx.QueryRowxContext(ctx, q,
			movie.Title, movie.Year, movie.Director, movie.GenresRaw,
			movie.DisplayRating, movie.ExternalRating, movie.Synopsis, movie.PosterURL,
		).Scan(&movie.ID)
		if err != nil {
			s.logger.Error("batch insert failed, rolling back", "title", movie.Title, "error", err)
			return nil, fmt.Errorf("ошибка при пакетной вставке фильма %q: %w", movie.Title, err)
		}

		movie.MaterializeGenres()
		inserted = append(inserted, movie)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	s.logger.Info("movie batch inserted successfully",
		"count", len(inserted),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return inserted, nil
}
