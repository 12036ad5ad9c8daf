package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"reddit_archiver/internal/domain"
)

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// NewRabbitMQ connects and declares a durable direct exchange with one bound queue.
func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger.With("component", "rabbitmq"),
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// SyncErrorMessage is the payload published for every failed item.
type SyncErrorMessage struct {
	ID            string          `json:"id"`
	RunID         string          `json:"run_id"`
	Group         string          `json:"group,omitempty"`
	ExternalID    string          `json:"external_id"`
	Stage         string          `json:"stage"`
	ErrorType     string          `json:"error_type"`
	Error         string          `json:"error"`
	RawPayload    json.RawMessage `json:"raw_payload,omitempty"`
	ParentPayload json.RawMessage `json:"parent_payload,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewSyncErrorMessage(syncErr domain.SyncError) SyncErrorMessage {
	msg := SyncErrorMessage{
		ID:            syncErr.ID,
		RunID:         syncErr.RunID,
		Group:         string(syncErr.Group),
		ExternalID:    syncErr.ExternalID,
		Stage:         syncErr.Stage,
		ErrorType:     classify(syncErr.Err),
		RawPayload:    validJSON(syncErr.RawPayload),
		ParentPayload: validJSON(syncErr.ParentPayload),
		OccurredAt:    syncErr.OccurredAt,
		Timestamp:     time.Now().UTC(),
	}
	if syncErr.Err != nil {
		msg.Error = syncErr.Err.Error()
	}
	return msg
}

// Report publishes syncErr. Publishing failures are logged and never returned.
func (r *RabbitMQ) Report(ctx context.Context, syncErr domain.SyncError) {
	if err := r.Publish(ctx, syncErr); err != nil {
		r.logger.Error("failed to publish sync error",
			"sync_error_id", syncErr.ID,
			"external_id", syncErr.ExternalID,
			"error", err,
		)
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, syncErr domain.SyncError) error {
	body, err := json.Marshal(NewSyncErrorMessage(syncErr))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    syncErr.ID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published sync error",
		"external_id", syncErr.ExternalID,
		"stage", syncErr.Stage,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
