package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/CatalogApp/internal/config"
	"github.com/GoArmGo/CatalogApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client представляет собой клиент RabbitMQ для очереди обогащения.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ.
// Объявление очереди идемпотентно.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("RabbitMQ queue declared", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает соединение и канал RabbitMQ.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
			return err
		}
	}
	return nil
}

// PublishEnrichRequest публикует заявку на обогащение в очередь.
// Реализует интерфейс ports.EnrichPublisher.
func (c *Client) PublishEnrichRequest(ctx context.Context, payload payloads.EnrichPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Info("enrich request published", "queue", c.queue.Name, "title", payload.Title)
	return nil
}

// StartConsumingEnrichRequests начинает потребление заявок из очереди.
// Подтверждение ручное: сбой обработки возвращает сообщение в очередь,
// битый JSON отбрасывается без повторной постановки, чтобы не зациклиться.
// Реализует интерфейс ports.EnrichConsumer.
func (c *Client) StartConsumingEnrichRequests(ctx context.Context, handler func(context.Context, payloads.EnrichPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}

				var payload payloads.EnrichPayload
				if err := json.Unmarshal(msg.Body, &payload); err != nil {
					c.logger.Error("error unmarshalling message", "error", err, "body", string(msg.Body))
					if err := msg.Nack(false, false); err != nil {
						c.logger.Error("error NACKing malformed message", "error", err)
					}
					continue
				}

				if err := handler(ctx, payload); err != nil {
					c.logger.Error("error processing enrich request", "title", payload.Title, "error", err)
					if err := msg.Nack(false, true); err != nil {
						c.logger.Error("error NACKing message after processing failure", "error", err)
					}
				} else {
					if err := msg.Ack(false); err != nil {
						c.logger.Error("error ACKing message", "error", err)
					}
				}
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}
