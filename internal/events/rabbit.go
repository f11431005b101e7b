package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes order events to a RabbitMQ topic exchange so
// out-of-process consumers (warehouse tooling, mail) can subscribe.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewRabbitPublisher connects to the broker and declares the exchange
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Close closes the channel and connection
func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishOrderCreated publishes an OrderCreated event
func (p *RabbitPublisher) PublishOrderCreated(event OrderCreated) {
	logIfErr(RKOrderCreated, p.publishJSON(RKOrderCreated, event))
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (p *RabbitPublisher) PublishOrderStatusChanged(event OrderStatusChanged) {
	logIfErr(RKOrderStatusChanged, p.publishJSON(RKOrderStatusChanged, event))
}

func (p *RabbitPublisher) publishJSON(routingKey string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(context.Background(), p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
