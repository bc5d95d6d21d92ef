package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/GoArmGo/CatalogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ReviewHandler — обработчик рецензий к фильмам.
type ReviewHandler struct {
	reviewUseCase usecase.ReviewUseCase
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewReviewHandler создаёт новый экземпляр ReviewHandler.
func NewReviewHandler(uc usecase.ReviewUseCase, v *validator.Validate, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewUseCase: uc, validator: v, logger: logger}
}

type createReviewRequest struct {
	MovieID int64   `json:"movie_id" validate:"required"`
	Rating  float64 `json:"rating" validate:"gte=0,lte=10"`
	Comment string  `json:"comment"`
}

// CreateReview — добавляет рецензию и пересчитывает оценку фильма.
// Несуществующий фильм — 404.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Нужны movie_id и оценка в диапазоне от 0 до 10", h.logger)
		return
	}

	review := domain.Review{
		MovieID: req.MovieID,
		UserID:  claims.UserID(),
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := h.reviewUseCase.CreateReview(r.Context(), &review); err != nil {
		h.logger.Error("failed to create review", "movie_id", req.MovieID, "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при сохранении рецензии", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, review, h.logger)
}

// ListMovieReviews — рецензии фильма, новые первыми.
func (h *ReviewHandler) ListMovieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный ID фильма", h.logger)
		return
	}

	reviews, err := h.reviewUseCase.ListMovieReviews(r.Context(), movieID)
	if err != nil {
		h.logger.Error("failed to list reviews", "movie_id", movieID, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при получении рецензий", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews, h.logger)
}

// DeleteReview — удаляет рецензию текущего пользователя. Чужая или
// несуществующая рецензия неразличимы: в обоих случаях 404.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный ID рецензии", h.logger)
		return
	}

	if err := h.reviewUseCase.DeleteReview(r.Context(), reviewID, claims.UserID()); err != nil {
		if statusFromError(err) == http.StatusNotFound {
			respondWithError(w, http.StatusNotFound, "Рецензия не найдена", h.logger)
			return
		}
		h.logger.Error("failed to delete review", "review_id", reviewID, "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при удалении рецензии", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, h.logger)
}
