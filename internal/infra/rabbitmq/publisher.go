package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"vocab-sprint/internal/domain"
)

// DefaultQueue receives one message per finished or aborted session.
const DefaultQueue = "vocab.session.outcomes"

// Publisher hands session outcomes to a durable RabbitMQ queue.
type Publisher struct {
	conn  *amqp.Connection
	queue string

	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
	channel *amqp.Channel
}

func NewPublisher(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &Publisher{conn: conn, channel: channel, queue: queue}, nil
}

func (p *Publisher) PublishOutcome(ctx context.Context, outcome domain.SessionOutcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	msgType := "session.completed"
	if outcome.Aborted {
		msgType = "session.aborted"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    outcome.SessionID,
			Type:         msgType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

// Queue returns the queue outcomes are published to.
func (p *Publisher) Queue() string {
	return p.queue
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
