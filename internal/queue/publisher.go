package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const mediaReplacedQueueName = "media.replaced"

// NewMediaReplacedPublisher returns a publisher bound to the given broker
// URL.  Each call dials, declares the media.replaced queue (idempotent,
// durable) and publishes one persistent message.  Errors are logged and
// returned so the caller can choose to ignore them, since losing a
// cleanup event only leaks one orphaned object.
func NewMediaReplacedPublisher(url string) func(context.Context, MediaReplacedEvent) error {
	return func(ctx context.Context, event MediaReplacedEvent) error {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("rabbitmq: dial failed: %v", err)
			return err
		}
		defer func() { _ = conn.Close() }()

		ch, err := conn.Channel()
		if err != nil {
			log.Printf("rabbitmq: channel open failed: %v", err)
			return err
		}
		defer func() { _ = ch.Close() }()

		if _, err := ch.QueueDeclare(
			mediaReplacedQueueName, // name
			true,                   // durable
			false,                  // autoDelete
			false,                  // exclusive
			false,                  // noWait
			nil,                    // args
		); err != nil {
			log.Printf("rabbitmq: queue declare failed: %v", err)
			return err
		}

		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("rabbitmq: marshal event failed: %v", err)
			return err
		}

		if err := ch.PublishWithContext(ctx,
			"",                     // default exchange
			mediaReplacedQueueName, // routing key = queue name
			false,                  // mandatory
			false,                  // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		); err != nil {
			log.Printf("rabbitmq: publish failed: %v", err)
			return err
		}
		return nil
	}
}
