package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking confirmations somewhere.  Callers treat
// failures as non-fatal: the booking is already stored.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
}

// NopPublisher drops every event.  Used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmedEvent) error {
	return nil
}

// AMQPPublisher publishes persistent JSON messages to BookingQueue on the
// default exchange.  It dials per message, which suits the low volume of
// a booking demo.
type AMQPPublisher struct {
	URL string
	Log *slog.Logger
}

func (p AMQPPublisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return p.fail("dial", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return p.fail("channel open", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return p.fail("queue declare", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingQueue, false, false, pub); err != nil {
		return p.fail("publish", err)
	}
	return nil
}

func (p AMQPPublisher) fail(step string, err error) error {
	if p.Log != nil {
		p.Log.Warn("rabbitmq publish failed", "step", step, "err", err)
	}
	return fmt.Errorf("rabbitmq %s: %w", step, err)
}
