package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"devconnect/internal/middleware"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange every event is published to.
const Exchange = "devconnect.events"

// AMQPPublisher publishes events as persistent JSON messages routed by type.
type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher dials uri and declares the exchange. An empty uri disables
// publishing and returns Noop.
func NewAMQPPublisher(uri string) (Publisher, error) {
	if uri == "" {
		middleware.Logger.Warn("RABBITMQ_URI is empty, event publishing is disabled")
		return Noop{}, nil
	}

	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	middleware.Logger.Info("Event publisher initialized", slog.String("exchange", Exchange))
	return &AMQPPublisher{conn: conn, channel: channel}, nil
}

// Publish sends the event with its type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		Exchange,   // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": event.Type,
				"actor_id":   event.ActorID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			middleware.Logger.Warn("error closing RabbitMQ channel", slog.String("error", err.Error()))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
