package queue

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher forwards event payloads to RabbitMQ. Queues are durable and
// declared once per topic; messages are persistent so delivery survives a
// broker restart.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		declared: make(map[string]bool),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.ensureQueue(topic); err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx,
		"",    // default exchange
		topic, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         payload,
		},
	)
}

func (p *Publisher) ensureQueue(topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declared[topic] {
		return nil
	}

	if _, err := p.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return err
	}

	p.declared[topic] = true
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
