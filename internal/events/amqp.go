package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"belleza-be/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type channelSource interface {
	acquire() (publishChannel, func(), error)
}

// AMQPPublisher sends persistent JSON messages to the default exchange,
// routed by queue name.
type AMQPPublisher struct {
	source channelSource
}

func NewAMQPPublisher(pool *ChannelPool) *AMQPPublisher {
	return &AMQPPublisher{source: pool}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, release, err := p.source.acquire()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	}
	if reqID := logger.RequestIDFrom(ctx); reqID != "" {
		msg.CorrelationId = reqID
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	logger.FromCtx(ctx).Debug("message published", zap.String("queue", queue))
	return nil
}
