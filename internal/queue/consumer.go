package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/devanshk/tubestream/internal/uploader"
)

// StartMediaCleanupConsumer connects to the broker at url, declares the
// media.replaced queue (durable), and starts consuming messages.  Each
// event names a media URL that a user just replaced; the consumer strips
// the public base URL to recover the object key and deletes the object
// from the media store.  The function runs a reconnect loop and keeps
// running across broker restarts; processing errors are logged and the
// offending message rejected without requeue so the loop never spins.
func StartMediaCleanupConsumer(url string, store uploader.Uploader, publicBaseURL string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("media-cleanup: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, store, publicBaseURL); err != nil {
			log.Printf("media-cleanup: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, store uploader.Uploader, publicBaseURL string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("media-cleanup: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(mediaReplacedQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(mediaReplacedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, store, publicBaseURL); err != nil {
			log.Printf("media-cleanup: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, store uploader.Uploader, publicBaseURL string) error {
	var ev MediaReplacedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.OldURL == "" {
		return nil // nothing to clean up (first upload of an optional field)
	}
	prefix := strings.TrimRight(publicBaseURL, "/") + "/"
	key := strings.TrimPrefix(ev.OldURL, prefix)
	if key == ev.OldURL {
		// URL not under our base; seeded or external media, leave it alone.
		log.Printf("media-cleanup: skipping foreign url %q (user=%s field=%s)", ev.OldURL, ev.UserID, ev.Field)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	log.Printf("media-cleanup: removed %s (user=%s field=%s)", key, ev.UserID, ev.Field)
	return nil
}
