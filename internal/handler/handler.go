package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/CatalogApp/internal/core/ports"
	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/GoArmGo/CatalogApp/internal/messaging/payloads"
	"github.com/GoArmGo/CatalogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// statusFromError переводит типизированную ошибку ядра в HTTP-статус.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MovieHandler — обработчик HTTP-запросов для работы с каталогом фильмов.
type MovieHandler struct {
	movieUseCase    usecase.MovieUseCase
	enrichPublisher ports.EnrichPublisher
	validator       *validator.Validate
	logger          *slog.Logger
}

// NewMovieHandler создаёт новый экземпляр MovieHandler.
func NewMovieHandler(
	uc usecase.MovieUseCase,
	publisher ports.EnrichPublisher,
	v *validator.Validate,
	logger *slog.Logger,
) *MovieHandler {
	return &MovieHandler{
		movieUseCase:    uc,
		enrichPublisher: publisher,
		validator:       v,
		logger:          logger,
	}
}

// ListMovies — возвращает последние фильмы, суженные фильтрами q, genre, year.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	filter := domain.MovieFilter{
		Query: r.URL.Query().Get("q"),
		Genre: r.URL.Query().Get("genre"),
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Некорректный год", h.logger)
			return
		}
		filter.Year = year
	}

	movies, err := h.movieUseCase.ListMovies(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list movies", "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при получении списка фильмов", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, movies, h.logger)
}

// GetMovieByID — возвращает фильм по внутреннему id.
func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный ID", h.logger)
		return
	}

	movie, err := h.movieUseCase.GetMovieByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Фильм не найден", h.logger)
			return
		}
		h.logger.Error("failed to get movie", "id", id, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при получении фильма", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, movie, h.logger)
}

type createMovieRequest struct {
	Title    string   `json:"title" validate:"required"`
	Year     int      `json:"year" validate:"required"`
	Director string   `json:"director" validate:"required"`
	Genres   []string `json:"genres" validate:"required,min=1,dive,excludes=|"`
	Rating   float64  `json:"rating" validate:"gte=0,lte=10"`
	Synopsis string   `json:"synopsis"`
	Poster   string   `json:"poster_url"`
}

// CreateMovie — добавляет фильм вручную и рассылает событие new-movie.
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req createMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Обязательные поля: title, year, director, genres", h.logger)
		return
	}

	movie := domain.Movie{
		Title:          req.Title,
		Year:           req.Year,
		Director:       req.Director,
		Genres:         req.Genres,
		ExternalRating: req.Rating,
		Synopsis:       req.Synopsis,
		PosterURL:      req.Poster,
	}

	if err := h.movieUseCase.CreateMovie(r.Context(), &movie); err != nil {
		h.logger.Error("failed to create movie", "title", req.Title, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при сохранении фильма", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, movie, h.logger)
}

type createMoviesBatchRequest struct {
	Movies []createMovieRequest `json:"movies" validate:"required,min=1,dive"`
}

// CreateMoviesBatch — атомарная пакетная вставка: при любой ошибке
// откатывается вся пачка.
func (h *MovieHandler) CreateMoviesBatch(w http.ResponseWriter, r *http.Request) {
	var req createMoviesBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Каждый фильм обязан иметь title, year, director, genres", h.logger)
		return
	}

	movies := make([]domain.Movie, 0, len(req.Movies))
	for _, m := range req.Movies {
		movies = append(movies, domain.Movie{
			Title:          m.Title,
			Year:           m.Year,
			Director:       m.Director,
			Genres:         m.Genres,
			ExternalRating: m.Rating,
			Synopsis:       m.Synopsis,
			PosterURL:      m.Poster,
		})
	}

	inserted, err := h.movieUseCase.CreateMovies(r.Context(), movies)
	if err != nil {
		h.logger.Error("failed to insert movie batch", "count", len(movies), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при пакетной вставке фильмов", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, inserted, h.logger)
}

// SearchExternal — cache-or-fetch: отдаёт фильм из локального хранилища
// либо обогащает каталог из внешнего API.
func (h *MovieHandler) SearchExternal(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respondWithError(w, http.StatusBadRequest, "Не указано название", h.logger)
		return
	}

	movie, err := h.movieUseCase.GetOrFetchMovieByTitle(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Фильм не найден", h.logger)
		case errors.Is(err, domain.ErrValidation):
			respondWithError(w, http.StatusBadRequest, "Не указано название", h.logger)
		default:
			h.logger.Error("enrichment failed", "title", title, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Ошибка при обращении к внешнему сервису", h.logger)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, movie, h.logger)
}

type enrichRequest struct {
	Titles []string `json:"titles" validate:"required,min=1,dive,required"`
}

// EnrichAsync — публикует заявки на обогащение в очередь; обработает их
// воркер. Ответ 202: заявки приняты, результата ещё нет.
func (h *MovieHandler) EnrichAsync(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Нужен непустой список названий", h.logger)
		return
	}

	for _, title := range req.Titles {
		if err := h.enrichPublisher.PublishEnrichRequest(r.Context(), payloads.EnrichPayload{Title: title}); err != nil {
			h.logger.Error("failed to publish enrich request", "title", title, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Ошибка постановки заявки в очередь", h.logger)
			return
		}
	}

	respondWithJSON(w, http.StatusAccepted, map[string]int{"accepted": len(req.Titles)}, h.logger)
}
