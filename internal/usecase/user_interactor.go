package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/CatalogApp/internal/auth"
	"github.com/GoArmGo/CatalogApp/internal/core/ports"
	"github.com/GoArmGo/CatalogApp/internal/domain"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	logger      *slog.Logger
}

// NewUserUseCase создает новый экземпляр UserUseCase.
func NewUserUseCase(userStorage ports.UserStorage, logger *slog.Logger) UserUseCase {
	return &userUseCase{userStorage: userStorage, logger: logger}
}

// Register создаёт пользователя. Уникальность email форсирует бд:
// нарушение приходит как domain.ErrConflict, новая строка не создаётся.
func (uc *userUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: заполните все поля", domain.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка хеширования пароля: %w", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login проверяет учётные данные. Неизвестный email и неверный пароль
// дают одинаковый ErrUnauthorized.
func (uc *userUseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email и пароль обязательны", domain.ErrValidation)
	}

	user, err := uc.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

func (uc *userUseCase) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile меняет имя и email; смена пароля требует верный старый
// пароль. Пустые поля остаются без изменений.
func (uc *userUseCase) UpdateProfile(ctx context.Context, userID int64, input ProfileUpdate) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" || !auth.CheckPasswordHash(input.OldPassword, user.PasswordHash) {
			return nil, fmt.Errorf("%w: старый пароль не подходит", domain.ErrUnauthorized)
		}
		hash, err := auth.HashPassword(input.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("usecase: ошибка хеширования пароля: %w", err)
		}
		user.PasswordHash = hash
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(strings.ToLower(input.Email)); email != "" {
		user.Email = email
	}

	if err := uc.userStorage.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// DeleteAccount удаляет учётную запись. Отзывы пользователя удаляются
// каскадом на уровне схемы.
func (uc *userUseCase) DeleteAccount(ctx context.Context, userID int64) error {
	if err := uc.userStorage.DeleteUser(ctx, userID); err != nil {
		return err
	}
	uc.logger.Info("account deleted", "user_id", userID)
	return nil
}
