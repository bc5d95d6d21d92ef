package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/CatalogApp/internal/auth"
	"github.com/GoArmGo/CatalogApp/internal/broadcast"
	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/core/ports"
	"github.com/GoArmGo/CatalogApp/internal/database/client"
	"github.com/GoArmGo/CatalogApp/internal/usecase"
)

// App — собранное приложение: конфигурация, подключения и юзкейсы.
// Запускается в одном из двух режимов: server или worker.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	dbClient        *client.Client
	movieUseCase    usecase.MovieUseCase
	reviewUseCase   usecase.ReviewUseCase
	userUseCase     usecase.UserUseCase
	enrichPublisher ports.EnrichPublisher
	enrichConsumer  ports.EnrichConsumer
	tokenManager    auth.TokenManager
	hub             *broadcast.Hub
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	dbClient *client.Client,
	movieUseCase usecase.MovieUseCase,
	reviewUseCase usecase.ReviewUseCase,
	userUseCase usecase.UserUseCase,
	enrichPublisher ports.EnrichPublisher,
	enrichConsumer ports.EnrichConsumer,
	tokenManager auth.TokenManager,
	hub *broadcast.Hub,
) *App {
	return &App{
		Config:          cfg,
		Logger:          logger,
		dbClient:        dbClient,
		movieUseCase:    movieUseCase,
		reviewUseCase:   reviewUseCase,
		userUseCase:     userUseCase,
		enrichPublisher: enrichPublisher,
		enrichConsumer:  enrichConsumer,
		tokenManager:    tokenManager,
		hub:             hub,
	}
}

// Run запускает приложение в указанном режиме и блокируется до сигнала
// завершения.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("starting application", "mode", mode)

	var runErr error
	switch mode {
	case "server":
		runErr = a.runServer(ctx)
	case "worker":
		runErr = a.runWorker(ctx)
	default:
		runErr = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// ресурсы закрываются и при штатном завершении, и при ошибке запуска
	a.Logger.Info("shutting down")
	if closeErr := a.Shutdown(); closeErr != nil {
		a.Logger.Error("shutdown error", "error", closeErr)
	}

	if runErr != nil {
		return runErr
	}

	a.Logger.Info("shutdown complete")
	return nil
}

// Shutdown закрывает все ресурсы приложения. Publisher и consumer обычно
// делят одно соединение RabbitMQ, поэтому одинаковые closers схлопываются
// и каждое соединение закрывается ровно один раз.
func (a *App) Shutdown() error {
	if a.dbClient != nil {
		if err := a.dbClient.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}

	var closers []interface{ Close() error }
	if closer, ok := a.enrichPublisher.(interface{ Close() error }); ok {
		closers = append(closers, closer)
	}
	if closer, ok := a.enrichConsumer.(interface{ Close() error }); ok {
		seen := false
		for _, c := range closers {
			if c == closer {
				seen = true
				break
			}
		}
		if !seen {
			closers = append(closers, closer)
		}
	}
	for _, closer := range closers {
		_ = closer.Close()
	}

	return nil
}
