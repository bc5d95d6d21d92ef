package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/CatalogApp/internal/core/ports"
	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// reviewUseCase implements ReviewUseCase
type reviewUseCase struct {
	reviewStorage ports.ReviewStorage
	logger        *slog.Logger
}

// NewReviewUseCase создает новый экземпляр ReviewUseCase.
func NewReviewUseCase(reviewStorage ports.ReviewStorage, logger *slog.Logger) ReviewUseCase {
	return &reviewUseCase{reviewStorage: reviewStorage, logger: logger}
}

// CreateReview валидирует отзыв до любой записи и сохраняет его.
// Пересчёт оценки фильма выполняет хранилище атомарно со вставкой:
// промежуточное состояние «отзыв есть, оценка не сдвинулась» снаружи
// не наблюдаемо.
func (uc *reviewUseCase) CreateReview(ctx context.Context, review *domain.Review) error {
	if review.MovieID == 0 {
		return fmt.Errorf("%w: movie_id обязателен", domain.ErrValidation)
	}
	if review.Rating < 0 || review.Rating > 10 {
		return fmt.Errorf("%w: оценка должна быть от 0 до 10", domain.ErrValidation)
	}
	review.Comment = strings.TrimSpace(review.Comment)

	if err := uc.reviewStorage.CreateReview(ctx, review); err != nil {
		return err
	}

	uc.logger.Info("review created",
		"review_id", review.ID,
		"movie_id", review.MovieID,
		"user_id", review.UserID,
	)
	return nil
}

// DeleteReview удаляет отзыв от имени запрашивающего пользователя.
// Ноль затронутых строк (нет такого отзыва либо он чужой) схлопывается
// в один исход ErrNotFound, чтобы не раскрывать существование отзыва.
func (uc *reviewUseCase) DeleteReview(ctx context.Context, reviewID, requestingUserID int64) error {
	affected, err := uc.reviewStorage.DeleteReview(ctx, reviewID, requestingUserID)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при удалении отзыва: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	uc.logger.Info("review deleted", "review_id", reviewID, "user_id", requestingUserID)
	return nil
}

func (uc *reviewUseCase) ListMovieReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	reviews, err := uc.reviewStorage.ListForMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении отзывов фильма: %w", err)
	}
	return reviews, nil
}

func (uc *reviewUseCase) ListUserReviews(ctx context.Context, userID int64) ([]domain.Review, error) {
	reviews, err := uc.reviewStorage.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении отзывов пользователя: %w", err)
	}
	return reviews, nil
}
