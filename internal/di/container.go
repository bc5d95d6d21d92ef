package di

import (
	"fmt"

	"github.com/GoArmGo/CatalogApp/internal/adapter/omdb"
	"github.com/GoArmGo/CatalogApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/CatalogApp/internal/app"
	"github.com/GoArmGo/CatalogApp/internal/auth"
	"github.com/GoArmGo/CatalogApp/internal/broadcast"
	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/database/client"
	"github.com/GoArmGo/CatalogApp/internal/database/storage"
	"github.com/GoArmGo/CatalogApp/internal/logger"
	"github.com/GoArmGo/CatalogApp/internal/rabbitmq"
	"github.com/GoArmGo/CatalogApp/internal/usecase"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация PostgreSQL клиента (применяет миграции)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// gorm переиспользует уже открытый пул, а не держит второй.
	// TranslateError превращает нарушения уникальности в
	// gorm.ErrDuplicatedKey.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbClient.DB.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации gorm: %w", err)
	}

	// 3. Инициализация хранилищ
	movieStorage := storage.NewMoviePostgresStorage(dbClient.DB, slogger)
	reviewStorage := storage.NewReviewPostgresStorage(dbClient.DB, slogger)
	userStorage := storage.NewGormUserStorage(gormDB, slogger)

	// 4. Инициализация клиентов внешних сервисов
	omdbClient := omdb.NewOMDbAPIClient(cfg)
	posterStorage, err := minio.NewMinioClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 5. Инициализация RabbitMQ клиента (publisher и consumer в одном)
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 6. Хаб рассылки событий по WebSocket
	hub := broadcast.NewHub(slogger)

	// 7. Менеджер JWT-токенов
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	// 8. Инициализация бизнес-логики (usecases)
	movieUseCase := usecase.NewMovieUseCase(movieStorage, omdbClient, posterStorage, hub, slogger)
	reviewUseCase := usecase.NewReviewUseCase(reviewStorage, slogger)
	userUseCase := usecase.NewUserUseCase(userStorage, slogger)

	// 9. Сборка итогового приложения
	application := app.NewApp(
		cfg,
		slogger,
		dbClient,
		movieUseCase,
		reviewUseCase,
		userUseCase,
		rabbitMQClient,
		rabbitMQClient,
		tokenManager,
		hub,
	)

	slogger.Info("all dependencies initialized")
	return application, nil
}
