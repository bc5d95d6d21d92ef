package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/CatalogApp/internal/auth"
	"github.com/GoArmGo/CatalogApp/internal/usecase"
	"github.com/go-playground/validator/v10"
)

// UserHandler — обработчик регистрации, входа и личного кабинета.
type UserHandler struct {
	userUseCase   usecase.UserUseCase
	reviewUseCase usecase.ReviewUseCase
	tokenManager  auth.TokenManager
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(
	userUC usecase.UserUseCase,
	reviewUC usecase.ReviewUseCase,
	tokenManager auth.TokenManager,
	v *validator.Validate,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase:   userUC,
		reviewUseCase: reviewUC,
		tokenManager:  tokenManager,
		validator:     v,
		logger:        logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register — регистрирует нового пользователя. Дубликат email — 409.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Обязательные поля: name, email, password (минимум 6 символов)", h.logger)
		return
	}

	user, err := h.userUseCase.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Error("registration failed", "email", req.Email, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при регистрации", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, userResponse{ID: user.ID, Name: user.Name, Email: user.Email}, h.logger)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login — проверяет учётные данные и выдаёт JWT.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Обязательные поля: email, password", h.logger)
		return
	}

	user, err := h.userUseCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, statusFromError(err), "Неверный email или пароль", h.logger)
		return
	}

	token, err := h.tokenManager.Generate(user.ID, user.Name, user.Email)
	if err != nil {
		h.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка при выдаче токена", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	}, h.logger)
}

// Logout — токены не хранятся на сервере, клиент просто забывает свой.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Me — возвращает профиль текущего пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	user, err := h.userUseCase.GetProfile(r.Context(), claims.UserID())
	if err != nil {
		h.logger.Error("failed to load profile", "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при получении профиля", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email}, h.logger)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6"`
}

// UpdateProfile — частичное обновление профиля. Смена пароля требует
// подтверждения старым паролем.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректные данные профиля", h.logger)
		return
	}

	user, err := h.userUseCase.UpdateProfile(r.Context(), claims.UserID(), usecase.ProfileUpdate{
		Name:        req.Name,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.logger.Error("profile update failed", "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при обновлении профиля", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email}, h.logger)
}

// DeleteAccount — удаляет аккаунт вместе с его рецензиями.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	if err := h.userUseCase.DeleteAccount(r.Context(), claims.UserID()); err != nil {
		h.logger.Error("account deletion failed", "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при удалении аккаунта", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, h.logger)
}

// MyReviews — история рецензий текущего пользователя с названиями фильмов.
func (h *UserHandler) MyReviews(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Требуется аутентификация", h.logger)
		return
	}

	reviews, err := h.reviewUseCase.ListUserReviews(r.Context(), claims.UserID())
	if err != nil {
		h.logger.Error("failed to list user reviews", "user_id", claims.UserID(), "error", err)
		respondWithError(w, statusFromError(err), "Ошибка при получении рецензий", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews, h.logger)
}
