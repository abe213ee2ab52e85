package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"iuris/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout = 5 * time.Second

	EventTypeCompleted = "transcription.completed"
	EventTypeFailed    = "transcription.failed"
)

// amqpChannel is the part of *amqp.Channel the publisher uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes transcription events to a direct exchange
type RabbitMQ struct {
	conn       io.Closer
	channel    amqpChannel
	exchange   string
	routingKey string
}

// NewRabbitMQ connects and declares the durable direct exchange events go to
func NewRabbitMQ(url, exchange, routingKey string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.Info("RabbitMQ connected successfully",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey))

	return newRabbitMQ(conn, ch, exchange, routingKey), nil
}

func newRabbitMQ(conn io.Closer, ch amqpChannel, exchange, routingKey string) *RabbitMQ {
	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// PublishTranscription sends the event as a persistent JSON message. The
// event ID doubles as the AMQP message ID so consumers can deduplicate.
func (r *RabbitMQ) PublishTranscription(ctx context.Context, event *TranscriptionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	eventType := EventTypeCompleted
	if !event.Success {
		eventType = EventTypeFailed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.EventID,
		CorrelationId: event.RequestID,
		Type:          eventType,
		Timestamp:     event.CreatedAt,
		Body:          body,
	}
	if err := r.channel.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s event %s: %w", eventType, event.EventID, err)
	}

	logger.Debug("Transcription event published",
		zap.String("event_id", event.EventID),
		zap.String("type", eventType),
		zap.Int("size", len(body)))

	return nil
}

// Close closes the channel, then the connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			logger.Debug("Failed to close RabbitMQ channel", zap.Error(err))
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
