package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes domain events onto the bank.events exchange.
type Publisher struct {
	channel *amqp.Channel
}

func NewPublisher(bus *Bus) *Publisher {
	return &Publisher{channel: bus.channel}
}

// Publish sends payload as UTF-8 JSON with a routing key equal to the event
// type. Callers must invoke this only after the mutation the event
// describes has committed; the store stays authoritative when the publish
// fails.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, Exchange, eventType, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
