package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"github.com/yeremiapane/cafe-queue/utils"
)

// Envelope is the body of every published message.
type Envelope struct {
	Event      string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher sends order and catalog events to a topic exchange, using the
// event name as routing key.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish implements services.Notifier.
func (p *Publisher) Publish(ctx context.Context, event string, data any) error {
	body, err := json.Marshal(Envelope{Event: event, Data: data, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		p.exchange,
		event,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	utils.InfoLogger.WithField("event", event).Debugf("published to exchange %s", p.exchange)
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
