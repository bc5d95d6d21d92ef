package ports

import (
	"context"

	"github.com/GoArmGo/CatalogApp/internal/messaging/payloads"
)

// EnrichPublisher определяет методы для публикации заявок на обогащение.
// Этот интерфейс используется обработчиком HTTP-запросов.
type EnrichPublisher interface {
	PublishEnrichRequest(ctx context.Context, payload payloads.EnrichPayload) error
}

// EnrichConsumer определяет методы для потребления заявок на обогащение,
// используется воркером для получения задач из очереди.
type EnrichConsumer interface {
	// StartConsumingEnrichRequests начинает прослушивание очереди;
	// принимает функцию-обработчик, вызываемую для каждого сообщения.
	StartConsumingEnrichRequests(ctx context.Context, handler func(context.Context, payloads.EnrichPayload) error) error
}
