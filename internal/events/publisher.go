// Package events publishes attempt outcomes to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mind-engage/mocktest/internal/exam"
)

const (
	Exchange = "attempt.events"

	RoutingCompleted = "attempt.completed"
	RoutingAbandoned = "attempt.abandoned"
)

// Envelope is the message body.
type Envelope struct {
	EventType  string          `json:"event_type"`
	AttemptID  string          `json:"attempt_id"`
	LearnerID  string          `json:"learner_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Publisher sends envelopes to the exchange. With an empty URI it is
// disabled and every publish is a logged no-op.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	log      *slog.Logger
}

func NewPublisher(rabbitURI string, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}
	if rabbitURI == "" {
		log.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return &Publisher{exchange: Exchange, log: log}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
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
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("event publisher initialized", "exchange", Exchange)
	return &Publisher{conn: conn, channel: channel, exchange: Exchange, enabled: true, log: log}, nil
}

func (p *Publisher) Enabled() bool { return p.enabled }

func (p *Publisher) PublishCompleted(ctx context.Context, res exam.AttemptResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return p.publish(ctx, RoutingCompleted, Envelope{
		EventType:  RoutingCompleted,
		AttemptID:  res.AttemptID,
		LearnerID:  res.LearnerID,
		OccurredAt: res.CompletedAt,
		Data:       data,
	})
}

func (p *Publisher) PublishAbandoned(ctx context.Context, a exam.AbandonedAttempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	return p.publish(ctx, RoutingAbandoned, Envelope{
		EventType:  RoutingAbandoned,
		AttemptID:  a.AttemptID,
		LearnerID:  a.LearnerID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, env Envelope) error {
	if !p.enabled {
		p.log.Debug("event publishing disabled, skipping event", "event_type", env.EventType, "attempt_id", env.AttemptID)
		return nil
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": env.EventType,
				"attempt_id": env.AttemptID,
				"learner_id": env.LearnerID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.log.Debug("published event", "event_type", env.EventType, "attempt_id", env.AttemptID)
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}
