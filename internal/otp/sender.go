package otp

import (
	"context"
	"time"

	"belleza-be/internal/events"
	"belleza-be/internal/logger"

	"go.uber.org/zap"
)

// Sender delivers a code to the phone owner out of band.
type Sender interface {
	Send(ctx context.Context, phone, code string, expiresAt time.Time) error
}

// LogSender writes the code to the log. Development only.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, phone, code string, expiresAt time.Time) error {
	logger.FromCtx(ctx).Info("otp issued",
		zap.String("phone", phone),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// Dispatch is the message consumed by the SMS/WhatsApp gateway worker.
type Dispatch struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// QueueSender hands codes to the dispatch queue.
type QueueSender struct {
	publisher events.Publisher
}

func NewQueueSender(p events.Publisher) *QueueSender {
	return &QueueSender{publisher: p}
}

func (s *QueueSender) Send(ctx context.Context, phone, code string, expiresAt time.Time) error {
	return s.publisher.Publish(ctx, events.QueueOTPDispatch, Dispatch{
		Phone:     phone,
		Code:      code,
		ExpiresAt: expiresAt,
	})
}
