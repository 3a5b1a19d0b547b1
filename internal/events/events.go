package events

import (
	"context"
	"sync"
)

const (
	QueueOrderPlaced = "order.placed"
	QueueOTPDispatch = "otp.dispatch"
)

// Queues lists every queue the service publishes to.
var Queues = []string{QueueOrderPlaced, QueueOTPDispatch}

// Publisher delivers a JSON-encodable payload to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// NoopPublisher drops every message. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Message is a payload captured by MemoryPublisher.
type Message struct {
	Queue   string
	Payload any
}

// MemoryPublisher keeps published messages in memory.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
}

func (p *MemoryPublisher) Publish(_ context.Context, queue string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, Message{Queue: queue, Payload: payload})
	return nil
}

func (p *MemoryPublisher) Messages(queue string) []Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Message
	for _, m := range p.messages {
		if m.Queue == queue {
			out = append(out, m)
		}
	}
	return out
}
