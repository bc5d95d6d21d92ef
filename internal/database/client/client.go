package client

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/database/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client представляет клиент для взаимодействия с PostgreSQL.
type Client struct {
	DB     *sqlx.DB
	logger *slog.Logger
}

// NewClient инициализирует новое подключение к PostgreSQL и применяет миграции.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if err := applyMigrations(cfg.DatabaseURL, logger); err != nil {
		return nil, fmt.Errorf("ошибка при применении миграций: %w", err)
	}

	logger.Info("PostgreSQL connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, logger: logger}, nil
}

// applyMigrations применяет все доступные миграции к бд.
// Миграции встроены в бинарник, путь до файлов не требуется.
func applyMigrations(databaseURL string, logger *slog.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database schema is up to date")
	} else {
		logger.Info("database migrations applied successfully")
	}
	return nil
}

func (c *Client) Close() error {
	start := time.Now()
	if err := c.DB.Close(); err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
