package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"botpanel/internal/broadcast"
)

// Publisher posts per-tick delivery reports to a durable queue for the
// dashboard's activity feed. It implements broadcast.Events.
type Publisher struct {
	conn      *Connection
	queueName string
	log       zerolog.Logger
}

// NewPublisher declares the queue and returns a publisher
func NewPublisher(conn *Connection, queueName string, log zerolog.Logger) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{conn: conn, queueName: queueName, log: log}, nil
}

// TickCompleted publishes a tick report. Failures are logged and swallowed:
// the delivery engine's checkpoint is already committed and must not be
// affected by broker trouble.
func (p *Publisher) TickCompleted(ctx context.Context, event broadcast.TickEvent) {
	if err := p.publish(ctx, event); err != nil {
		p.log.Warn().
			Int64("campaign_id", event.CampaignID).
			Err(err).
			Msg("failed to publish tick event")
	}
}

func (p *Publisher) publish(ctx context.Context, event broadcast.TickEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tick event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish tick event: %w", err)
	}

	return nil
}
