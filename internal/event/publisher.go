package event

import (
	"context"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable broker queue all domain events land on.
const QueueName = "restaurant.events"

// Publisher pushes events to RabbitMQ.  Each publish dials a fresh
// connection; event traffic is low enough that simplicity and automatic
// recovery after a broker restart beat connection pooling here.  Errors are
// logged and returned so callers can ignore them without interrupting the
// request flow.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher targeting the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// Publish sends one pre-marshaled event body to the events queue.  Messages
// are marked persistent so they survive a broker restart.
func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
