package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/jmoiron/sqlx"
)

type ReviewPostgresStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewReviewPostgresStorage(db *sqlx.DB, logger *slog.Logger) *ReviewPostgresStorage {
	return &ReviewPostgresStorage{db: db, logger: logger}
}

// CreateReview вставляет отзыв и пересчитывает оценку фильма в одной
// транзакции. Строка фильма блокируется через SELECT ... FOR UPDATE:
// конкурентные отзывы на один фильм сериализуются, и пересчёт всегда
// видит полный набор отзывов (иначе возможна потеря обновления).
func (s *ReviewPostgresStorage) CreateReview(ctx context.Context, review *domain.Review) error {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	var externalRating float64
	err = tx.GetContext(ctx, &externalRating,
		`SELECT external_rating FROM movies WHERE id = $1 FOR UPDATE`, review.MovieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("review rejected, movie not found", "movie_id", review.MovieID)
			return domain.ErrNotFound
		}
		return fmt.Errorf("ошибка блокировки строки фильма: %w", err)
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO reviews (movie_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, review.MovieID, review.UserID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		s.logger.Error("failed to insert review", "movie_id", review.MovieID, "user_id", review.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении отзыва: %w", err)
	}

	if err := recomputeDisplayRating(ctx, tx, review.MovieID, externalRating); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	s.logger.Info("review created and rating recomputed",
		"review_id", review.ID,
		"movie_id", review.MovieID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteReview удаляет отзыв автора и пересчитывает оценку фильма.
// Возвращает число затронутых строк: «не найден» и «не автор» намеренно
// схлопнуты в 0, чтобы не раскрывать существование чужих отзывов.
func (s *ReviewPostgresStorage) DeleteReview(ctx context.Context, reviewID, requestingUserID int64) (int64, error) {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback()

	var movieID int64
	err = tx.GetContext(ctx, &movieID,
		`SELECT movie_id FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, requestingUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка поиска отзыва: %w", err)
	}

	var externalRating float64
	err = tx.GetContext(ctx, &externalRating,
		`SELECT external_rating FROM movies WHERE id = $1 FOR UPDATE`, movieID)
	if err != nil {
		return 0, fmt.Errorf("ошибка блокировки строки фильма: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, requestingUserID)
	if err != nil {
		s.logger.Error("failed to delete review", "review_id", reviewID, "error", err)
		return 0, fmt.Errorf("ошибка при удалении отзыва: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки результата удаления: %w", err)
	}
	if affected == 0 {
		return 0, nil
	}

	if err := recomputeDisplayRating(ctx, tx, movieID, externalRating); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	s.logger.Info("review deleted and rating recomputed",
		"review_id", reviewID,
		"movie_id", movieID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return affected, nil
}

// recomputeDisplayRating читает полный набор оценок фильма внутри
// транзакции (строка фильма уже заблокирована), прогоняет агрегатор
// и сохраняет результат. Единственное место записи display_rating.
func recomputeDisplayRating(ctx context.Context, tx *sqlx.Tx, movieID int64, externalRating float64) error {
	var ratings []float64
	if err := tx.SelectContext(ctx, &ratings,
		`SELECT rating FROM reviews WHERE movie_id = $1`, movieID); err != nil {
		return fmt.Errorf("ошибка чтения оценок фильма: %w", err)
	}

	display := domain.ComputeDisplayRating(externalRating, ratings)

	if _, err := tx.ExecContext(ctx,
		`UPDATE movies SET display_rating = $1 WHERE id = $2`, display, movieID); err != nil {
		return fmt.Errorf("ошибка сохранения пересчитанной оценки: %w", err)
	}
	return nil
}

// ListForMovie возвращает отзывы фильма вместе с именем автора,
// новые первыми.
func (s *ReviewPostgresStorage) ListForMovie(ctx context.Context, movieID int64) ([]domain.Review, error) {
	q := `
	SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.created_at, u.name AS user_name
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	WHERE r.movie_id = $1
	ORDER BY r.created_at DESC
	`

	reviews := []domain.Review{}
	if err := s.db.SelectContext(ctx, &reviews, q, movieID); err != nil {
		s.logger.Error("failed to list reviews for movie", "movie_id", movieID, "error", err)
		return nil, fmt.Errorf("ошибка при получении отзывов фильма: %w", err)
	}
	return reviews, nil
}

// ListForUser возвращает историю отзывов пользователя с названиями фильмов.
func (s *ReviewPostgresStorage) ListForUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	q := `
	SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.created_at, m.title AS movie_title
	FROM reviews r
	JOIN movies m ON m.id = r.movie_id
	WHERE r.user_id = $1
	ORDER BY r.created_at DESC
	`

	reviews := []domain.Review{}
	if err := s.db.SelectContext(ctx, &reviews, q, userID); err != nil {
		s.logger.Error("failed to list reviews for user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении отзывов пользователя: %w", err)
	}
	return reviews, nil
}
