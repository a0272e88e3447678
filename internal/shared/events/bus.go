package events

import (
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	connectBudget   = 60 * time.Second
	attemptStep     = 2 * time.Second
	maxAttemptDelay = 5 * time.Second
	heartbeat       = 30 * time.Second
)

// Bus holds the AMQP connection and the publish channel shared by all
// request workers within a service instance.
type Bus struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Connect dials the broker and declares the bank.events topic exchange.
// Failed attempts are retried with a growing delay (2s per attempt, capped
// at 5s) until the 60-second wall-clock budget is exhausted. Exhaustion is
// fatal for the caller: a service must not start serving traffic without a
// working event channel.
func Connect(url string) (*Bus, error) {
	deadline := time.Now().Add(connectBudget)
	attempt := 0
	var lastErr error
	for time.Now().Before(deadline) {
		bus, err := dial(url)
		if err == nil {
			return bus, nil
		}
		lastErr = err
		attempt++
		log.Printf("Event bus not ready (attempt %d): %v", attempt, err)
		time.Sleep(attemptDelay(attempt))
	}
	return nil, fmt.Errorf("event bus connection failed after retries: %w", lastErr)
}

// attemptDelay returns min(2s * attempt, 5s).
func attemptDelay(attempt int) time.Duration {
	delay := time.Duration(attempt) * attemptStep
	if delay > maxAttemptDelay {
		delay = maxAttemptDelay
	}
	return delay
}

func dial(url string) (*Bus, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Heartbeat: heartbeat})
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &Bus{conn: conn, channel: channel}, nil
}

// consumerChannel opens a dedicated channel so consuming does not contend
// with publishes on the shared one.
func (b *Bus) consumerChannel() (*amqp.Channel, error) {
	return b.conn.Channel()
}

func (b *Bus) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	return b.conn.Close()
}
