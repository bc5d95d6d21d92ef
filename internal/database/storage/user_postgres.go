package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"gorm.io/gorm"
)

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM.
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage.
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser создаёт пользователя. Дубликат email — это domain.ErrConflict,
// а не внутренняя ошибка: уникальность форсируется ограничением в бд.
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	result := s.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			s.logger.Warn("duplicate email on user creation", "email", user.Email)
			return domain.ErrConflict
		}
		s.logger.Error("failed to create user", "email", user.Email, "error", result.Error)
		return fmt.Errorf("ошибка при создании пользователя: %w", result.Error)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user by email", "error", result.Error)
		return nil, fmt.Errorf("ошибка при поиске пользователя по email: %w", result.Error)
	}
	return &user, nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	result := s.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", result.Error)
		return nil, fmt.Errorf("ошибка при поиске пользователя по ID: %w", result.Error)
	}
	return &user, nil
}

// UpdateUser сохраняет имя, email и хеш пароля пользователя.
func (s *GormUserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	result := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":          user.Name,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			s.logger.Warn("duplicate email on profile update", "user_id", user.ID)
			return domain.ErrConflict
		}
		s.logger.Error("failed to update user", "user_id", user.ID, "error", result.Error)
		return fmt.Errorf("ошибка при обновлении пользователя: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser удаляет учётную запись; отзывы пользователя удаляются
// каскадом на уровне схемы.
func (s *GormUserStorage) DeleteUser(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", result.Error)
		return fmt.Errorf("ошибка при удалении пользователя: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
