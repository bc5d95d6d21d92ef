package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoArmGo/CatalogApp/internal/domain"
	"github.com/GoArmGo/CatalogApp/internal/messaging/payloads"
)

// runWorker запускает потребителя очереди обогащения и блокируется до
// отмены контекста. Каждая заявка проходит через тот же cache-or-fetch
// путь, что и синхронный поиск.
func (a *App) runWorker(ctx context.Context) error {
	a.Logger.Info("worker started, waiting for enrich requests")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	messageHandler := func(ctx context.Context, payload payloads.EnrichPayload) error {
		a.Logger.Info("processing enrich request", "title", payload.Title)

		if _, err := a.movieUseCase.GetOrFetchMovieByTitle(ctx, payload.Title); err != nil {
			// неизвестное название или пустая заявка не станут лучше от
			// повторной доставки
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
				a.Logger.Warn("dropping enrich request", "title", payload.Title, "error", err)
				return nil
			}
			a.Logger.Error("enrich request failed", "title", payload.Title, "error", err)
			return err
		}

		a.Logger.Info("enrich request done", "title", payload.Title)
		return nil
	}

	if err := a.enrichConsumer.StartConsumingEnrichRequests(workerCtx, messageHandler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()

	a.Logger.Info("worker stopping")
	cancelWorker()
	return nil
}
