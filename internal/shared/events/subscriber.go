package events

import (
	"context"
	"fmt"
	"log"
)

// Handler processes one delivered event body.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Subscriber consumes events from a durable queue bound to the bank.events
// exchange by routing key.
type Subscriber struct {
	bus     *Bus
	queue   string
	key     string
	handler Handler
}

func NewSubscriber(bus *Bus, queue, routingKey string, handler Handler) *Subscriber {
	return &Subscriber{
		bus:     bus,
		queue:   queue,
		key:     routingKey,
		handler: handler,
	}
}

// Start declares and binds the queue, then consumes until ctx is cancelled.
// Handler failures are logged; delivery is auto-acknowledged, matching the
// best-effort notification role of the event stream.
func (s *Subscriber) Start(ctx context.Context) error {
	channel, err := s.bus.consumerChannel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer channel.Close()

	if _, err := channel.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := channel.QueueBind(s.queue, s.key, Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := channel.Consume(s.queue, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	log.Printf("Subscriber started: queue=%s, key=%s", s.queue, s.key)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Subscriber stopping: %s", s.queue)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := s.handler(ctx, d.RoutingKey, d.Body); err != nil {
				log.Printf("Failed to process message: %v", err)
			}
		}
	}
}
